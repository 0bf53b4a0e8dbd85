// Package transport defines the contract between the network manager and the
// radio coprocessor driver, and provides a serial-port implementation.
package transport

import "zigbee-host/internal/zigbee"

// InitResult is the outcome of transport initialization.
type InitResult int

const (
	// InitJoined: the radio initialized and is currently joined to a network.
	InitJoined InitResult = iota
	// InitNotJoined: the radio initialized but is not joined to a network.
	InitNotJoined
	// InitFailed: the radio failed to initialize.
	InitFailed
)

func (r InitResult) String() string {
	switch r {
	case InitJoined:
		return "joined"
	case InitNotJoined:
		return "not joined"
	default:
		return "failed"
	}
}

// State is the transport-reported network state.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateOnline
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateOnline:
		return "online"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Receiver is implemented by the network manager: the transport calls it for
// every inbound frame and transport event.
type Receiver interface {
	ReceiveCommand(frame *zigbee.ApsFrame)
	SetNetworkState(state State)
	AnnounceDevice(nwkAddr uint16)
}

// Transport is the radio coprocessor driver handle required by the network
// manager.
type Transport interface {
	Initialize() InitResult
	Startup(reinitialize bool) error
	Shutdown()

	Channel() uint8
	SetChannel(channel uint8) error
	PanID() uint16
	SetPanID(panID uint16) error
	ExtendedPanID() uint64
	SetExtendedPanID(panID uint64) error
	SecurityKey() [16]byte
	SetSecurityKey(key [16]byte) error

	SendCommand(frame *zigbee.ApsFrame) error
	SetReceiver(r Receiver)
}
