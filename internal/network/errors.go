package network

import "errors"

var (
	// ErrInvalidState is returned when an operation is not legal in the
	// current lifecycle state.
	ErrInvalidState = errors.New("operation not legal in current lifecycle state")

	// ErrInvalidArgument is returned for out-of-range configuration values.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotImplemented is returned by stubbed operations.
	ErrNotImplemented = errors.New("not implemented")

	// ErrCodec is returned when serializer construction or frame encoding
	// fails.
	ErrCodec = errors.New("codec failure")

	// ErrTransport is returned when the transport reports a send or startup
	// failure.
	ErrTransport = errors.New("transport failure")
)
