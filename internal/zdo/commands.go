package zdo

import (
	"zigbee-host/internal/serialization"
	"zigbee-host/internal/zigbee"
)

// NetworkAddressRequest asks for the 16-bit address of a device by IEEE
// address (0x0000).
type NetworkAddressRequest struct {
	Base
	IEEE        zigbee.IEEEAddress
	RequestType uint8
	StartIndex  uint8
}

// NewNetworkAddressRequest constructs the request.
func NewNetworkAddressRequest() *NetworkAddressRequest {
	return &NetworkAddressRequest{Base: newBase(ClusterNetworkAddressRequest)}
}

func (c *NetworkAddressRequest) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint64(uint64(c.IEEE))
	s.WriteUint8(c.RequestType)
	s.WriteUint8(c.StartIndex)
	return s.Err()
}

func (c *NetworkAddressRequest) Deserialize(d *serialization.FieldDeserializer) error {
	c.IEEE = zigbee.IEEEAddress(d.ReadUint64())
	c.RequestType = d.ReadUint8()
	c.StartIndex = d.ReadUint8()
	return d.Err()
}

// NetworkAddressResponse answers a NetworkAddressRequest (0x8000).
type NetworkAddressResponse struct {
	Base
	Status         uint8
	IEEE           zigbee.IEEEAddress
	NetworkAddress uint16
}

// NewNetworkAddressResponse constructs the response.
func NewNetworkAddressResponse() *NetworkAddressResponse {
	return &NetworkAddressResponse{Base: newBase(ClusterNetworkAddressResponse)}
}

func (c *NetworkAddressResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Status)
	s.WriteUint64(uint64(c.IEEE))
	s.WriteUint16(c.NetworkAddress)
	return s.Err()
}

func (c *NetworkAddressResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.Status = d.ReadUint8()
	c.IEEE = zigbee.IEEEAddress(d.ReadUint64())
	c.NetworkAddress = d.ReadUint16()
	return d.Err()
}

// IEEEAddressRequest asks for the 64-bit address of a device by network
// address (0x0001).
type IEEEAddressRequest struct {
	Base
	NetworkAddress uint16
	RequestType    uint8
	StartIndex     uint8
}

// NewIEEEAddressRequest constructs the request.
func NewIEEEAddressRequest() *IEEEAddressRequest {
	return &IEEEAddressRequest{Base: newBase(ClusterIEEEAddressRequest)}
}

func (c *IEEEAddressRequest) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint16(c.NetworkAddress)
	s.WriteUint8(c.RequestType)
	s.WriteUint8(c.StartIndex)
	return s.Err()
}

func (c *IEEEAddressRequest) Deserialize(d *serialization.FieldDeserializer) error {
	c.NetworkAddress = d.ReadUint16()
	c.RequestType = d.ReadUint8()
	c.StartIndex = d.ReadUint8()
	return d.Err()
}

// IEEEAddressResponse answers an IEEEAddressRequest (0x8001).
type IEEEAddressResponse struct {
	Base
	Status         uint8
	IEEE           zigbee.IEEEAddress
	NetworkAddress uint16
}

// NewIEEEAddressResponse constructs the response.
func NewIEEEAddressResponse() *IEEEAddressResponse {
	return &IEEEAddressResponse{Base: newBase(ClusterIEEEAddressResponse)}
}

func (c *IEEEAddressResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Status)
	s.WriteUint64(uint64(c.IEEE))
	s.WriteUint16(c.NetworkAddress)
	return s.Err()
}

func (c *IEEEAddressResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.Status = d.ReadUint8()
	c.IEEE = zigbee.IEEEAddress(d.ReadUint64())
	c.NetworkAddress = d.ReadUint16()
	return d.Err()
}

// SimpleDescriptorRequest asks for one endpoint's descriptor (0x0004).
type SimpleDescriptorRequest struct {
	Base
	NetworkAddress uint16
	Endpoint       uint8
}

// NewSimpleDescriptorRequest constructs the request.
func NewSimpleDescriptorRequest() *SimpleDescriptorRequest {
	return &SimpleDescriptorRequest{Base: newBase(ClusterSimpleDescriptorRequest)}
}

func (c *SimpleDescriptorRequest) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint16(c.NetworkAddress)
	s.WriteUint8(c.Endpoint)
	return s.Err()
}

func (c *SimpleDescriptorRequest) Deserialize(d *serialization.FieldDeserializer) error {
	c.NetworkAddress = d.ReadUint16()
	c.Endpoint = d.ReadUint8()
	return d.Err()
}

// SimpleDescriptor describes one application endpoint.
type SimpleDescriptor struct {
	Endpoint       uint8
	ProfileID      uint16
	DeviceID       uint16
	DeviceVersion  uint8
	InputClusters  []uint16
	OutputClusters []uint16
}

// SimpleDescriptorResponse answers a SimpleDescriptorRequest (0x8004).
type SimpleDescriptorResponse struct {
	Base
	Status         uint8
	NetworkAddress uint16
	Descriptor     SimpleDescriptor
}

// NewSimpleDescriptorResponse constructs the response.
func NewSimpleDescriptorResponse() *SimpleDescriptorResponse {
	return &SimpleDescriptorResponse{Base: newBase(ClusterSimpleDescriptorResponse)}
}

func (c *SimpleDescriptorResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Status)
	s.WriteUint16(c.NetworkAddress)
	if c.Status != StatusSuccess {
		s.WriteUint8(0)
		return s.Err()
	}
	length := 8 + 2*(len(c.Descriptor.InputClusters)+len(c.Descriptor.OutputClusters))
	s.WriteUint8(uint8(length))
	s.WriteUint8(c.Descriptor.Endpoint)
	s.WriteUint16(c.Descriptor.ProfileID)
	s.WriteUint16(c.Descriptor.DeviceID)
	s.WriteUint8(c.Descriptor.DeviceVersion)
	s.WriteUint8(uint8(len(c.Descriptor.InputClusters)))
	for _, id := range c.Descriptor.InputClusters {
		s.WriteUint16(id)
	}
	s.WriteUint8(uint8(len(c.Descriptor.OutputClusters)))
	for _, id := range c.Descriptor.OutputClusters {
		s.WriteUint16(id)
	}
	return s.Err()
}

func (c *SimpleDescriptorResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.Status = d.ReadUint8()
	c.NetworkAddress = d.ReadUint16()
	length := d.ReadUint8()
	if c.Status != StatusSuccess || length == 0 {
		return d.Err()
	}
	c.Descriptor.Endpoint = d.ReadUint8()
	c.Descriptor.ProfileID = d.ReadUint16()
	c.Descriptor.DeviceID = d.ReadUint16()
	c.Descriptor.DeviceVersion = d.ReadUint8()
	inCount := d.ReadUint8()
	for i := 0; i < int(inCount) && d.Err() == nil; i++ {
		c.Descriptor.InputClusters = append(c.Descriptor.InputClusters, d.ReadUint16())
	}
	outCount := d.ReadUint8()
	for i := 0; i < int(outCount) && d.Err() == nil; i++ {
		c.Descriptor.OutputClusters = append(c.Descriptor.OutputClusters, d.ReadUint16())
	}
	return d.Err()
}

// ActiveEndpointsRequest asks for the list of active endpoints (0x0005).
type ActiveEndpointsRequest struct {
	Base
	NetworkAddress uint16
}

// NewActiveEndpointsRequest constructs the request.
func NewActiveEndpointsRequest() *ActiveEndpointsRequest {
	return &ActiveEndpointsRequest{Base: newBase(ClusterActiveEndpointsRequest)}
}

func (c *ActiveEndpointsRequest) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint16(c.NetworkAddress)
	return s.Err()
}

func (c *ActiveEndpointsRequest) Deserialize(d *serialization.FieldDeserializer) error {
	c.NetworkAddress = d.ReadUint16()
	return d.Err()
}

// ActiveEndpointsResponse answers an ActiveEndpointsRequest (0x8005).
type ActiveEndpointsResponse struct {
	Base
	Status         uint8
	NetworkAddress uint16
	Endpoints      []uint8
}

// NewActiveEndpointsResponse constructs the response.
func NewActiveEndpointsResponse() *ActiveEndpointsResponse {
	return &ActiveEndpointsResponse{Base: newBase(ClusterActiveEndpointsResponse)}
}

func (c *ActiveEndpointsResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Status)
	s.WriteUint16(c.NetworkAddress)
	s.WriteUint8(uint8(len(c.Endpoints)))
	s.WriteBytes(c.Endpoints)
	return s.Err()
}

func (c *ActiveEndpointsResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.Status = d.ReadUint8()
	c.NetworkAddress = d.ReadUint16()
	count := d.ReadUint8()
	c.Endpoints = d.ReadBytes(int(count))
	return d.Err()
}

// DeviceAnnounce is broadcast by a device after it joins or rejoins (0x0013).
type DeviceAnnounce struct {
	Base
	NetworkAddress uint16
	IEEE           zigbee.IEEEAddress
	Capability     uint8
}

// NewDeviceAnnounce constructs the announce.
func NewDeviceAnnounce() *DeviceAnnounce {
	return &DeviceAnnounce{Base: newBase(ClusterDeviceAnnounce)}
}

func (c *DeviceAnnounce) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint16(c.NetworkAddress)
	s.WriteUint64(uint64(c.IEEE))
	s.WriteUint8(c.Capability)
	return s.Err()
}

func (c *DeviceAnnounce) Deserialize(d *serialization.FieldDeserializer) error {
	c.NetworkAddress = d.ReadUint16()
	c.IEEE = zigbee.IEEEAddress(d.ReadUint64())
	c.Capability = d.ReadUint8()
	return d.Err()
}

// Destination address modes for bind requests.
const (
	BindAddrModeGroup  uint8 = 0x01
	BindAddrModeDevice uint8 = 0x03 // 64-bit address + endpoint
)

// BindRequest creates a binding on a remote device (0x0021).
type BindRequest struct {
	Base
	SrcIEEE         zigbee.IEEEAddress
	SrcEndpoint     uint8
	BindClusterID   uint16
	DstAddrMode     uint8
	DstIEEE         zigbee.IEEEAddress
	DstEndpoint     uint8
	DstGroupAddress uint16
}

// NewBindRequest constructs the request.
func NewBindRequest() *BindRequest {
	return &BindRequest{Base: newBase(ClusterBindRequest), DstAddrMode: BindAddrModeDevice}
}

func (c *BindRequest) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint64(uint64(c.SrcIEEE))
	s.WriteUint8(c.SrcEndpoint)
	s.WriteUint16(c.BindClusterID)
	s.WriteUint8(c.DstAddrMode)
	if c.DstAddrMode == BindAddrModeGroup {
		s.WriteUint16(c.DstGroupAddress)
	} else {
		s.WriteUint64(uint64(c.DstIEEE))
		s.WriteUint8(c.DstEndpoint)
	}
	return s.Err()
}

func (c *BindRequest) Deserialize(d *serialization.FieldDeserializer) error {
	c.SrcIEEE = zigbee.IEEEAddress(d.ReadUint64())
	c.SrcEndpoint = d.ReadUint8()
	c.BindClusterID = d.ReadUint16()
	c.DstAddrMode = d.ReadUint8()
	if c.DstAddrMode == BindAddrModeGroup {
		c.DstGroupAddress = d.ReadUint16()
	} else {
		c.DstIEEE = zigbee.IEEEAddress(d.ReadUint64())
		c.DstEndpoint = d.ReadUint8()
	}
	return d.Err()
}

// BindResponse answers a BindRequest (0x8021).
type BindResponse struct {
	Base
	Status uint8
}

// NewBindResponse constructs the response.
func NewBindResponse() *BindResponse {
	return &BindResponse{Base: newBase(ClusterBindResponse)}
}

func (c *BindResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Status)
	return s.Err()
}

func (c *BindResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.Status = d.ReadUint8()
	return d.Err()
}

// UnbindRequest removes a binding on a remote device (0x0022). The payload
// layout matches BindRequest.
type UnbindRequest struct {
	BindRequest
}

// NewUnbindRequest constructs the request.
func NewUnbindRequest() *UnbindRequest {
	c := &UnbindRequest{}
	c.Base = newBase(ClusterUnbindRequest)
	c.DstAddrMode = BindAddrModeDevice
	return c
}

// MgmtLqiRequest asks a node for its neighbor table (0x0031).
type MgmtLqiRequest struct {
	Base
	StartIndex uint8
}

// NewMgmtLqiRequest constructs the request.
func NewMgmtLqiRequest() *MgmtLqiRequest {
	return &MgmtLqiRequest{Base: newBase(ClusterMgmtLqiRequest)}
}

func (c *MgmtLqiRequest) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.StartIndex)
	return s.Err()
}

func (c *MgmtLqiRequest) Deserialize(d *serialization.FieldDeserializer) error {
	c.StartIndex = d.ReadUint8()
	return d.Err()
}

// NeighborTableEntry is one row of a Management LQI response.
type NeighborTableEntry struct {
	ExtendedPanID  uint64
	IEEE           zigbee.IEEEAddress
	NetworkAddress uint16
	DeviceType     uint8
	RxOnWhenIdle   uint8
	Relationship   uint8
	PermitJoining  uint8
	Depth          uint8
	LQI            uint8
}

// MgmtLqiResponse carries a slice of a node's neighbor table (0x8031).
type MgmtLqiResponse struct {
	Base
	Status               uint8
	NeighborTableEntries uint8
	StartIndex           uint8
	Neighbors            []NeighborTableEntry
}

// NewMgmtLqiResponse constructs the response.
func NewMgmtLqiResponse() *MgmtLqiResponse {
	return &MgmtLqiResponse{Base: newBase(ClusterMgmtLqiResponse)}
}

func (c *MgmtLqiResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Status)
	s.WriteUint8(c.NeighborTableEntries)
	s.WriteUint8(c.StartIndex)
	s.WriteUint8(uint8(len(c.Neighbors)))
	for _, n := range c.Neighbors {
		s.WriteUint64(n.ExtendedPanID)
		s.WriteUint64(uint64(n.IEEE))
		s.WriteUint16(n.NetworkAddress)
		s.WriteUint8(n.DeviceType&0x03 | (n.RxOnWhenIdle&0x03)<<2 | (n.Relationship&0x07)<<4)
		s.WriteUint8(n.PermitJoining)
		s.WriteUint8(n.Depth)
		s.WriteUint8(n.LQI)
	}
	return s.Err()
}

func (c *MgmtLqiResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.Status = d.ReadUint8()
	c.NeighborTableEntries = d.ReadUint8()
	c.StartIndex = d.ReadUint8()
	count := d.ReadUint8()
	for i := 0; i < int(count) && d.Err() == nil; i++ {
		var n NeighborTableEntry
		n.ExtendedPanID = d.ReadUint64()
		n.IEEE = zigbee.IEEEAddress(d.ReadUint64())
		n.NetworkAddress = d.ReadUint16()
		packed := d.ReadUint8()
		n.DeviceType = packed & 0x03
		n.RxOnWhenIdle = (packed >> 2) & 0x03
		n.Relationship = (packed >> 4) & 0x07
		n.PermitJoining = d.ReadUint8()
		n.Depth = d.ReadUint8()
		n.LQI = d.ReadUint8()
		c.Neighbors = append(c.Neighbors, n)
	}
	return d.Err()
}

// MgmtLeaveRequest asks a parent to remove an end device (0x0034).
type MgmtLeaveRequest struct {
	Base
	DeviceAddress        zigbee.IEEEAddress
	RemoveChildrenRejoin uint8
}

// NewMgmtLeaveRequest constructs the request.
func NewMgmtLeaveRequest() *MgmtLeaveRequest {
	return &MgmtLeaveRequest{Base: newBase(ClusterMgmtLeaveRequest)}
}

func (c *MgmtLeaveRequest) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint64(uint64(c.DeviceAddress))
	s.WriteUint8(c.RemoveChildrenRejoin)
	return s.Err()
}

func (c *MgmtLeaveRequest) Deserialize(d *serialization.FieldDeserializer) error {
	c.DeviceAddress = zigbee.IEEEAddress(d.ReadUint64())
	c.RemoveChildrenRejoin = d.ReadUint8()
	return d.Err()
}

// MgmtLeaveResponse answers a MgmtLeaveRequest (0x8034).
type MgmtLeaveResponse struct {
	Base
	Status uint8
}

// NewMgmtLeaveResponse constructs the response.
func NewMgmtLeaveResponse() *MgmtLeaveResponse {
	return &MgmtLeaveResponse{Base: newBase(ClusterMgmtLeaveResponse)}
}

func (c *MgmtLeaveResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Status)
	return s.Err()
}

func (c *MgmtLeaveResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.Status = d.ReadUint8()
	return d.Err()
}

// MgmtPermitJoiningRequest opens or closes the network for joining (0x0036).
type MgmtPermitJoiningRequest struct {
	Base
	PermitDuration uint8
	TCSignificance bool
}

// NewMgmtPermitJoiningRequest constructs the request.
func NewMgmtPermitJoiningRequest() *MgmtPermitJoiningRequest {
	return &MgmtPermitJoiningRequest{Base: newBase(ClusterMgmtPermitJoiningRequest)}
}

func (c *MgmtPermitJoiningRequest) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.PermitDuration)
	s.WriteBool(c.TCSignificance)
	return s.Err()
}

func (c *MgmtPermitJoiningRequest) Deserialize(d *serialization.FieldDeserializer) error {
	c.PermitDuration = d.ReadUint8()
	c.TCSignificance = d.ReadBool()
	return d.Err()
}
