package zcl

import "zigbee-host/internal/serialization"

// On/Off cluster commands.

// OffCommand turns the device off (cluster 0x0006, command 0x00).
type OffCommand struct {
	Base
	noPayload
}

// NewOffCommand returns an OffCommand bound to the On/Off cluster.
func NewOffCommand() *OffCommand {
	c := &OffCommand{}
	c.SetClusterID(ClusterOnOff)
	return c
}

func (*OffCommand) CommandID() uint8     { return 0x00 }
func (*OffCommand) Direction() Direction { return DirectionClientToServer }
func (*OffCommand) Generic() bool        { return false }

// OnCommand turns the device on (cluster 0x0006, command 0x01).
type OnCommand struct {
	Base
	noPayload
}

// NewOnCommand returns an OnCommand bound to the On/Off cluster.
func NewOnCommand() *OnCommand {
	c := &OnCommand{}
	c.SetClusterID(ClusterOnOff)
	return c
}

func (*OnCommand) CommandID() uint8     { return 0x01 }
func (*OnCommand) Direction() Direction { return DirectionClientToServer }
func (*OnCommand) Generic() bool        { return false }

// ToggleCommand toggles the device state (cluster 0x0006, command 0x02).
type ToggleCommand struct {
	Base
	noPayload
}

// NewToggleCommand returns a ToggleCommand bound to the On/Off cluster.
func NewToggleCommand() *ToggleCommand {
	c := &ToggleCommand{}
	c.SetClusterID(ClusterOnOff)
	return c
}

func (*ToggleCommand) CommandID() uint8     { return 0x02 }
func (*ToggleCommand) Direction() Direction { return DirectionClientToServer }
func (*ToggleCommand) Generic() bool        { return false }

// Identify cluster commands.

// IdentifyCommand starts device identification (cluster 0x0003, command 0x00).
type IdentifyCommand struct {
	Base
	IdentifyTime uint16
}

// NewIdentifyCommand returns an IdentifyCommand bound to the Identify cluster.
func NewIdentifyCommand() *IdentifyCommand {
	c := &IdentifyCommand{}
	c.SetClusterID(ClusterIdentify)
	return c
}

func (*IdentifyCommand) CommandID() uint8     { return 0x00 }
func (*IdentifyCommand) Direction() Direction { return DirectionClientToServer }
func (*IdentifyCommand) Generic() bool        { return false }

func (c *IdentifyCommand) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint16(c.IdentifyTime)
	return s.Err()
}

func (c *IdentifyCommand) Deserialize(d *serialization.FieldDeserializer) error {
	c.IdentifyTime = d.ReadUint16()
	return d.Err()
}

// IdentifyQueryCommand asks whether the device is identifying (0x0003/0x01).
type IdentifyQueryCommand struct {
	Base
	noPayload
}

// NewIdentifyQueryCommand returns an IdentifyQueryCommand bound to the
// Identify cluster.
func NewIdentifyQueryCommand() *IdentifyQueryCommand {
	c := &IdentifyQueryCommand{}
	c.SetClusterID(ClusterIdentify)
	return c
}

func (*IdentifyQueryCommand) CommandID() uint8     { return 0x01 }
func (*IdentifyQueryCommand) Direction() Direction { return DirectionClientToServer }
func (*IdentifyQueryCommand) Generic() bool        { return false }

// IdentifyQueryResponse carries the remaining identify time (0x0003/0x00,
// server to client).
type IdentifyQueryResponse struct {
	Base
	Timeout uint16
}

// NewIdentifyQueryResponse returns an IdentifyQueryResponse bound to the
// Identify cluster.
func NewIdentifyQueryResponse() *IdentifyQueryResponse {
	c := &IdentifyQueryResponse{}
	c.SetClusterID(ClusterIdentify)
	return c
}

func (*IdentifyQueryResponse) CommandID() uint8     { return 0x00 }
func (*IdentifyQueryResponse) Direction() Direction { return DirectionServerToClient }
func (*IdentifyQueryResponse) Generic() bool        { return false }

func (c *IdentifyQueryResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint16(c.Timeout)
	return s.Err()
}

func (c *IdentifyQueryResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.Timeout = d.ReadUint16()
	return d.Err()
}

// Level Control cluster commands.

// MoveToLevelCommand moves to a level over a transition time (0x0008/0x00).
type MoveToLevelCommand struct {
	Base
	Level          uint8
	TransitionTime uint16
}

// NewMoveToLevelCommand returns a MoveToLevelCommand bound to the Level
// Control cluster.
func NewMoveToLevelCommand() *MoveToLevelCommand {
	c := &MoveToLevelCommand{}
	c.SetClusterID(ClusterLevelControl)
	return c
}

func (*MoveToLevelCommand) CommandID() uint8     { return 0x00 }
func (*MoveToLevelCommand) Direction() Direction { return DirectionClientToServer }
func (*MoveToLevelCommand) Generic() bool        { return false }

func (c *MoveToLevelCommand) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Level)
	s.WriteUint16(c.TransitionTime)
	return s.Err()
}

func (c *MoveToLevelCommand) Deserialize(d *serialization.FieldDeserializer) error {
	c.Level = d.ReadUint8()
	c.TransitionTime = d.ReadUint16()
	return d.Err()
}

// MoveToLevelWithOnOffCommand is MoveToLevel that also switches the device
// (0x0008/0x04).
type MoveToLevelWithOnOffCommand struct {
	Base
	Level          uint8
	TransitionTime uint16
}

// NewMoveToLevelWithOnOffCommand returns the command bound to the Level
// Control cluster.
func NewMoveToLevelWithOnOffCommand() *MoveToLevelWithOnOffCommand {
	c := &MoveToLevelWithOnOffCommand{}
	c.SetClusterID(ClusterLevelControl)
	return c
}

func (*MoveToLevelWithOnOffCommand) CommandID() uint8     { return 0x04 }
func (*MoveToLevelWithOnOffCommand) Direction() Direction { return DirectionClientToServer }
func (*MoveToLevelWithOnOffCommand) Generic() bool        { return false }

func (c *MoveToLevelWithOnOffCommand) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Level)
	s.WriteUint16(c.TransitionTime)
	return s.Err()
}

func (c *MoveToLevelWithOnOffCommand) Deserialize(d *serialization.FieldDeserializer) error {
	c.Level = d.ReadUint8()
	c.TransitionTime = d.ReadUint16()
	return d.Err()
}

// Groups cluster commands.

// AddGroupCommand adds the device to a group (0x0004/0x00).
type AddGroupCommand struct {
	Base
	GroupID   uint16
	GroupName string
}

// NewAddGroupCommand returns an AddGroupCommand bound to the Groups cluster.
func NewAddGroupCommand() *AddGroupCommand {
	c := &AddGroupCommand{}
	c.SetClusterID(ClusterGroups)
	return c
}

func (*AddGroupCommand) CommandID() uint8     { return 0x00 }
func (*AddGroupCommand) Direction() Direction { return DirectionClientToServer }
func (*AddGroupCommand) Generic() bool        { return false }

func (c *AddGroupCommand) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint16(c.GroupID)
	s.WriteString(c.GroupName)
	return s.Err()
}

func (c *AddGroupCommand) Deserialize(d *serialization.FieldDeserializer) error {
	c.GroupID = d.ReadUint16()
	c.GroupName = d.ReadString()
	return d.Err()
}

// AddGroupResponse carries the add-group result (0x0004/0x00, server to
// client).
type AddGroupResponse struct {
	Base
	Status  uint8
	GroupID uint16
}

// NewAddGroupResponse returns an AddGroupResponse bound to the Groups
// cluster.
func NewAddGroupResponse() *AddGroupResponse {
	c := &AddGroupResponse{}
	c.SetClusterID(ClusterGroups)
	return c
}

func (*AddGroupResponse) CommandID() uint8     { return 0x00 }
func (*AddGroupResponse) Direction() Direction { return DirectionServerToClient }
func (*AddGroupResponse) Generic() bool        { return false }

func (c *AddGroupResponse) Serialize(s *serialization.FieldSerializer) error {
	s.WriteUint8(c.Status)
	s.WriteUint16(c.GroupID)
	return s.Err()
}

func (c *AddGroupResponse) Deserialize(d *serialization.FieldDeserializer) error {
	c.Status = d.ReadUint8()
	c.GroupID = d.ReadUint16()
	return d.Err()
}
