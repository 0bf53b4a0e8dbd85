package zcl

import (
	"fmt"

	"zigbee-host/internal/serialization"
)

// FrameType distinguishes foundation commands from cluster-specific ones.
type FrameType uint8

const (
	FrameTypeEntireProfile   FrameType = 0x00
	FrameTypeClusterSpecific FrameType = 0x01
)

func (t FrameType) String() string {
	switch t {
	case FrameTypeEntireProfile:
		return "ENTIRE_PROFILE"
	case FrameTypeClusterSpecific:
		return "CLUSTER_SPECIFIC"
	default:
		return fmt.Sprintf("0x%02X", uint8(t))
	}
}

// Direction indicates whether a command travels client→server or
// server→client.
type Direction uint8

const (
	DirectionClientToServer Direction = iota
	DirectionServerToClient
)

func (d Direction) String() string {
	if d == DirectionServerToClient {
		return "toClient"
	}
	return "toServer"
}

// Frame control field bits.
const (
	frameControlTypeMask       = 0x03
	frameControlManufacturer   = 0x04
	frameControlDirection      = 0x08
	frameControlDisableDefault = 0x10
)

// Header is the ZCL frame header carried at the start of the APS payload for
// profile 0x0104.
type Header struct {
	FrameType              FrameType
	ManufacturerSpecific   bool
	ManufacturerCode       uint16
	Direction              Direction
	DisableDefaultResponse bool
	SequenceNumber         uint8
	CommandID              uint8
}

// Serialize writes the header: frame control, optional manufacturer code,
// sequence number, command id.
func (h *Header) Serialize(s *serialization.FieldSerializer) error {
	control := uint8(h.FrameType) & frameControlTypeMask
	if h.ManufacturerSpecific {
		control |= frameControlManufacturer
	}
	if h.Direction == DirectionServerToClient {
		control |= frameControlDirection
	}
	if h.DisableDefaultResponse {
		control |= frameControlDisableDefault
	}
	s.WriteUint8(control)
	if h.ManufacturerSpecific {
		s.WriteUint16(h.ManufacturerCode)
	}
	s.WriteUint8(h.SequenceNumber)
	s.WriteUint8(h.CommandID)
	return s.Err()
}

// ParseHeader reads a header from the start of an APS payload.
func ParseHeader(d *serialization.FieldDeserializer) (Header, error) {
	var h Header
	control := d.ReadUint8()
	h.FrameType = FrameType(control & frameControlTypeMask)
	if h.Direction = DirectionClientToServer; control&frameControlDirection != 0 {
		h.Direction = DirectionServerToClient
	}
	h.ManufacturerSpecific = control&frameControlManufacturer != 0
	h.DisableDefaultResponse = control&frameControlDisableDefault != 0
	if h.ManufacturerSpecific {
		h.ManufacturerCode = d.ReadUint16()
	}
	h.SequenceNumber = d.ReadUint8()
	h.CommandID = d.ReadUint8()
	if err := d.Err(); err != nil {
		return Header{}, fmt.Errorf("zcl header: %w", err)
	}
	return h, nil
}
