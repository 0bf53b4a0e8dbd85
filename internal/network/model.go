package network

import "zigbee-host/internal/zigbee"

// Mesh model: authoritative maps of nodes, devices and groups. Add is a
// no-op when the key is already present so listeners never see duplicate
// additions; update replaces unconditionally; remove fires only when the
// key was present. Every mutation triggers a persistence save.

// AddNode adds a node to the network model.
func (m *Manager) AddNode(node *zigbee.Node) {
	if node == nil {
		return
	}
	m.nodesMu.Lock()
	if _, exists := m.nodes[node.NetworkAddress]; exists {
		m.nodesMu.Unlock()
		return
	}
	m.nodes[node.NetworkAddress] = node
	m.nodesMu.Unlock()

	m.saveState()
	for _, l := range m.nodeListenerSnapshot() {
		listener := l
		m.notifier.submit(func() { listener.NodeAdded(node) })
	}
}

// UpdateNode replaces a node in the network model.
func (m *Manager) UpdateNode(node *zigbee.Node) {
	if node == nil {
		return
	}
	m.nodesMu.Lock()
	m.nodes[node.NetworkAddress] = node
	m.nodesMu.Unlock()

	m.saveState()
	for _, l := range m.nodeListenerSnapshot() {
		listener := l
		m.notifier.submit(func() { listener.NodeUpdated(node) })
	}
}

// RemoveNode removes a node from the network model.
func (m *Manager) RemoveNode(node *zigbee.Node) {
	if node == nil {
		return
	}
	m.nodesMu.Lock()
	if _, exists := m.nodes[node.NetworkAddress]; !exists {
		m.nodesMu.Unlock()
		return
	}
	delete(m.nodes, node.NetworkAddress)
	m.nodesMu.Unlock()

	m.saveState()
	for _, l := range m.nodeListenerSnapshot() {
		listener := l
		m.notifier.submit(func() { listener.NodeRemoved(node) })
	}
}

// Node returns the node with the given network address, or nil.
func (m *Manager) Node(networkAddress uint16) *zigbee.Node {
	m.nodesMu.Lock()
	defer m.nodesMu.Unlock()
	return m.nodes[networkAddress]
}

// NodeByIEEE returns the node with the given IEEE address, or nil.
func (m *Manager) NodeByIEEE(ieee zigbee.IEEEAddress) *zigbee.Node {
	m.nodesMu.Lock()
	defer m.nodesMu.Unlock()
	for _, node := range m.nodes {
		if node.IEEE == ieee {
			return node
		}
	}
	return nil
}

// Nodes returns a point-in-time snapshot of all nodes.
func (m *Manager) Nodes() []*zigbee.Node {
	m.nodesMu.Lock()
	defer m.nodesMu.Unlock()
	nodes := make([]*zigbee.Node, 0, len(m.nodes))
	for _, node := range m.nodes {
		nodes = append(nodes, node)
	}
	return nodes
}

// AddDevice adds a device to the network model.
func (m *Manager) AddDevice(device *zigbee.Device) {
	if device == nil {
		return
	}
	m.devicesMu.Lock()
	if _, exists := m.devices[device.Address]; exists {
		m.devicesMu.Unlock()
		return
	}
	m.devices[device.Address] = device
	m.devicesMu.Unlock()

	m.saveState()
	for _, l := range m.deviceListenerSnapshot() {
		listener := l
		m.notifier.submit(func() { listener.DeviceAdded(device) })
	}
}

// UpdateDevice replaces a device in the network model.
func (m *Manager) UpdateDevice(device *zigbee.Device) {
	if device == nil {
		return
	}
	m.devicesMu.Lock()
	m.devices[device.Address] = device
	m.devicesMu.Unlock()

	m.saveState()
	for _, l := range m.deviceListenerSnapshot() {
		listener := l
		m.notifier.submit(func() { listener.DeviceUpdated(device) })
	}
}

// RemoveDevice removes the device with the given address.
func (m *Manager) RemoveDevice(address zigbee.DeviceAddress) {
	m.devicesMu.Lock()
	device, exists := m.devices[address]
	if !exists {
		m.devicesMu.Unlock()
		return
	}
	delete(m.devices, address)
	m.devicesMu.Unlock()

	m.saveState()
	for _, l := range m.deviceListenerSnapshot() {
		listener := l
		m.notifier.submit(func() { listener.DeviceRemoved(device) })
	}
}

// Device returns the device with the given address, or nil.
func (m *Manager) Device(address zigbee.DeviceAddress) *zigbee.Device {
	m.devicesMu.Lock()
	defer m.devicesMu.Unlock()
	return m.devices[address]
}

// Devices returns a point-in-time snapshot of all devices.
func (m *Manager) Devices() []*zigbee.Device {
	m.devicesMu.Lock()
	defer m.devicesMu.Unlock()
	devices := make([]*zigbee.Device, 0, len(m.devices))
	for _, device := range m.devices {
		devices = append(devices, device)
	}
	return devices
}

// NodeDevices returns the devices whose address prefix is the given network
// address.
func (m *Manager) NodeDevices(networkAddress uint16) []*zigbee.Device {
	m.devicesMu.Lock()
	defer m.devicesMu.Unlock()
	var devices []*zigbee.Device
	for _, device := range m.devices {
		if device.Address.Addr == networkAddress {
			devices = append(devices, device)
		}
	}
	return devices
}

// DevicesByIEEE returns the devices with the given IEEE address.
func (m *Manager) DevicesByIEEE(ieee zigbee.IEEEAddress) []*zigbee.Device {
	m.devicesMu.Lock()
	defer m.devicesMu.Unlock()
	var devices []*zigbee.Device
	for _, device := range m.devices {
		if device.IEEE == ieee {
			devices = append(devices, device)
		}
	}
	return devices
}

// AddGroup adds a group to the network model.
func (m *Manager) AddGroup(group *zigbee.Group) {
	if group == nil {
		return
	}
	m.groupsMu.Lock()
	if _, exists := m.groups[group.ID]; exists {
		m.groupsMu.Unlock()
		return
	}
	m.groups[group.ID] = group
	m.groupsMu.Unlock()
	m.saveState()
}

// UpdateGroup replaces a group in the network model.
func (m *Manager) UpdateGroup(group *zigbee.Group) {
	if group == nil {
		return
	}
	m.groupsMu.Lock()
	m.groups[group.ID] = group
	m.groupsMu.Unlock()
	m.saveState()
}

// RemoveGroup removes the group with the given id.
func (m *Manager) RemoveGroup(groupID uint16) {
	m.groupsMu.Lock()
	if _, exists := m.groups[groupID]; !exists {
		m.groupsMu.Unlock()
		return
	}
	delete(m.groups, groupID)
	m.groupsMu.Unlock()
	m.saveState()
}

// Group returns the group with the given id, or nil.
func (m *Manager) Group(groupID uint16) *zigbee.Group {
	m.groupsMu.Lock()
	defer m.groupsMu.Unlock()
	return m.groups[groupID]
}

// Groups returns a point-in-time snapshot of all groups.
func (m *Manager) Groups() []*zigbee.Group {
	m.groupsMu.Lock()
	defer m.groupsMu.Unlock()
	groups := make([]*zigbee.Group, 0, len(m.groups))
	for _, group := range m.groups {
		groups = append(groups, group)
	}
	return groups
}

// AddMembership creates a group or relabels an existing one.
func (m *Manager) AddMembership(groupID uint16, label string) {
	if existing := m.Group(groupID); existing != nil {
		m.UpdateGroup(&zigbee.Group{ID: groupID, Label: label})
		return
	}
	m.AddGroup(&zigbee.Group{ID: groupID, Label: label})
}

// RemoveMembership removes a group.
func (m *Manager) RemoveMembership(groupID uint16) {
	m.RemoveGroup(groupID)
}
