// Package zdo implements the ZigBee Device Object management command set
// carried over APS profile 0x0000. The APS cluster field is the ZDO command
// type for this profile.
package zdo

import "zigbee-host/internal/zigbee"

// Response cluster ids set this bit over the request cluster id.
const ResponseFlag uint16 = 0x8000

// ZDO cluster ids.
const (
	ClusterNetworkAddressRequest     uint16 = 0x0000
	ClusterIEEEAddressRequest        uint16 = 0x0001
	ClusterSimpleDescriptorRequest   uint16 = 0x0004
	ClusterActiveEndpointsRequest    uint16 = 0x0005
	ClusterDeviceAnnounce            uint16 = 0x0013
	ClusterBindRequest               uint16 = 0x0021
	ClusterUnbindRequest             uint16 = 0x0022
	ClusterMgmtLqiRequest            uint16 = 0x0031
	ClusterMgmtLeaveRequest          uint16 = 0x0034
	ClusterMgmtPermitJoiningRequest  uint16 = 0x0036
	ClusterNetworkAddressResponse    uint16 = ClusterNetworkAddressRequest | ResponseFlag
	ClusterIEEEAddressResponse       uint16 = ClusterIEEEAddressRequest | ResponseFlag
	ClusterSimpleDescriptorResponse  uint16 = ClusterSimpleDescriptorRequest | ResponseFlag
	ClusterActiveEndpointsResponse   uint16 = ClusterActiveEndpointsRequest | ResponseFlag
	ClusterBindResponse              uint16 = ClusterBindRequest | ResponseFlag
	ClusterMgmtLqiResponse           uint16 = ClusterMgmtLqiRequest | ResponseFlag
	ClusterMgmtLeaveResponse         uint16 = ClusterMgmtLeaveRequest | ResponseFlag
)

// ZDP status codes.
const (
	StatusSuccess        uint8 = 0x00
	StatusInvalidReqID   uint8 = 0x80
	StatusDeviceNotFound uint8 = 0x81
	StatusNotSupported   uint8 = 0x84
	StatusTimeout        uint8 = 0x85
)

// Command is a ZDO command.
type Command interface {
	zigbee.Command

	// zdoCommand marks the ZDO command set so ZCL commands can never
	// satisfy this interface.
	zdoCommand()
}

// Base carries the fields common to every ZDO command. The cluster id is
// fixed at construction by the concrete command.
type Base struct {
	clusterID     uint16
	transactionID uint8
	src, dst      zigbee.Address
}

func (b *Base) ClusterID() uint16                      { return b.clusterID }
func (b *Base) TransactionID() uint8                   { return b.transactionID }
func (b *Base) SetTransactionID(id uint8)              { b.transactionID = id }
func (b *Base) SourceAddress() zigbee.Address          { return b.src }
func (b *Base) SetSourceAddress(a zigbee.Address)      { b.src = a }
func (b *Base) DestinationAddress() zigbee.Address     { return b.dst }
func (b *Base) SetDestinationAddress(a zigbee.Address) { b.dst = a }

func (b *Base) zdoCommand() {}

func newBase(clusterID uint16) Base {
	return Base{clusterID: clusterID}
}
