package zigbee

import "zigbee-host/internal/serialization"

// Command is a single ZDO or ZCL application command, either built locally
// for transmission or parsed from an inbound APS frame.
type Command interface {
	ClusterID() uint16

	TransactionID() uint8
	SetTransactionID(id uint8)

	SourceAddress() Address
	SetSourceAddress(addr Address)
	DestinationAddress() Address
	SetDestinationAddress(addr Address)

	Serialize(s *serialization.FieldSerializer) error
	Deserialize(d *serialization.FieldDeserializer) error
}
