// Package zcl implements the ZigBee Cluster Library application framing:
// the frame header, attribute data types, and the command catalogue for
// profile 0x0104 traffic.
package zcl

import (
	"zigbee-host/internal/serialization"
	"zigbee-host/internal/zigbee"
)

// Command is a ZCL command. Generic (foundation) commands apply to any
// cluster; cluster-specific commands are bound to one cluster id.
type Command interface {
	zigbee.Command

	SetClusterID(id uint16)
	CommandID() uint8
	Direction() Direction
	// Generic reports whether this is a foundation command carried with
	// frame type ENTIRE_PROFILE.
	Generic() bool
}

// Base carries the fields common to every ZCL command. Concrete commands
// embed it and provide the command id, direction and payload codec.
type Base struct {
	clusterID     uint16
	transactionID uint8
	src, dst      zigbee.Address
}

func (b *Base) ClusterID() uint16                      { return b.clusterID }
func (b *Base) SetClusterID(id uint16)                 { b.clusterID = id }
func (b *Base) TransactionID() uint8                   { return b.transactionID }
func (b *Base) SetTransactionID(id uint8)              { b.transactionID = id }
func (b *Base) SourceAddress() zigbee.Address          { return b.src }
func (b *Base) SetSourceAddress(a zigbee.Address)      { b.src = a }
func (b *Base) DestinationAddress() zigbee.Address     { return b.dst }
func (b *Base) SetDestinationAddress(a zigbee.Address) { b.dst = a }

// noPayload is embedded by commands whose body is empty.
type noPayload struct{}

func (noPayload) Serialize(*serialization.FieldSerializer) error     { return nil }
func (noPayload) Deserialize(*serialization.FieldDeserializer) error { return nil }
