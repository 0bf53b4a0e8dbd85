package network

import (
	"zigbee-host/internal/zcl"
	"zigbee-host/internal/zdo"
	"zigbee-host/internal/zigbee"
)

// PermitJoin opens or closes the whole network for joining. Duration is in
// seconds; 0 disables joining and values above 255 are clamped to 255
// (permanent in the protocol encoding).
func (m *Manager) PermitJoin(duration int) error {
	return m.PermitJoinTo(zigbee.DeviceAddress{Addr: zigbee.BroadcastRoutersAndCoord}, duration)
}

// PermitJoinTo sends a Management Permit Joining Request to one destination.
func (m *Manager) PermitJoinTo(destination zigbee.DeviceAddress, duration int) error {
	if duration < 0 {
		duration = 0
	}
	if duration > 255 {
		duration = 255
	}

	cmd := zdo.NewMgmtPermitJoiningRequest()
	cmd.PermitDuration = uint8(duration)
	cmd.TCSignificance = true
	cmd.SetDestinationAddress(destination)
	cmd.SetSourceAddress(zigbee.DeviceAddress{})

	_, err := m.SendCommand(cmd)
	return err
}

// Leave sends a Management Leave Request to a parent asking it to remove an
// end device from the network.
func (m *Manager) Leave(parentAddress uint16, device zigbee.IEEEAddress) error {
	cmd := zdo.NewMgmtLeaveRequest()
	cmd.DeviceAddress = device
	cmd.SetDestinationAddress(zigbee.DeviceAddress{Addr: parentAddress})
	cmd.SetSourceAddress(zigbee.DeviceAddress{})

	_, err := m.SendCommand(cmd)
	return err
}

// Read builds a generic Read Attributes command against a cluster on a
// device and unicasts it with a permissive response matcher.
func (m *Manager) Read(destination zigbee.DeviceAddress, clusterID, attributeID uint16) *Future {
	cmd := &zcl.ReadAttributesCommand{Identifiers: []uint16{attributeID}}
	cmd.SetClusterID(clusterID)
	cmd.SetDestinationAddress(destination)
	return m.Unicast(cmd, ZclCustomResponseMatcher{})
}

// Write builds a generic Write Attributes command against a cluster on a
// device and unicasts it with a permissive response matcher.
func (m *Manager) Write(destination zigbee.DeviceAddress, clusterID, attributeID uint16, dataType zcl.DataType, value any) *Future {
	cmd := &zcl.WriteAttributesCommand{
		Records: []zcl.WriteAttributeRecord{{
			AttributeID: attributeID,
			DataType:    dataType,
			Value:       value,
		}},
	}
	cmd.SetClusterID(clusterID)
	cmd.SetDestinationAddress(destination)
	return m.Unicast(cmd, ZclCustomResponseMatcher{})
}

// Bind creates a binding between two devices for a cluster.
//
// Not yet implemented: the ZDO Bind Request payload is in the catalogue, but
// the binding-table semantics on the source device are not wired through the
// send path.
func (m *Manager) Bind(source, destination zigbee.DeviceAddress, clusterID uint16) (*Future, error) {
	return nil, ErrNotImplemented
}

// Unbind removes a binding between two devices for a cluster.
//
// Not yet implemented; see Bind.
func (m *Manager) Unbind(source, destination zigbee.DeviceAddress, clusterID uint16) (*Future, error) {
	return nil, ErrNotImplemented
}
