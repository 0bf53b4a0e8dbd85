package network

import (
	"zigbee-host/internal/transport"
	"zigbee-host/internal/zigbee"
)

// NodeListener is notified of node additions, updates and removals.
// Implementations must be comparable (use pointer receivers) so they can be
// removed again.
type NodeListener interface {
	NodeAdded(node *zigbee.Node)
	NodeUpdated(node *zigbee.Node)
	NodeRemoved(node *zigbee.Node)
}

// DeviceListener is notified of device additions, updates and removals.
type DeviceListener interface {
	DeviceAdded(device *zigbee.Device)
	DeviceUpdated(device *zigbee.Device)
	DeviceRemoved(device *zigbee.Device)
}

// AnnounceListener is notified whenever a device announces itself on the
// network.
type AnnounceListener interface {
	DeviceAnnounced(nwkAddr uint16)
}

// StateListener is notified of transport network state changes.
type StateListener interface {
	NetworkStateUpdated(state transport.State)
}

// CommandListener is notified of every inbound command.
type CommandListener interface {
	CommandReceived(cmd zigbee.Command)
}

// Listener registration. Each list is replaced wholesale under the mutation
// lock; notification code reads the current snapshot and iterates it without
// holding any lock, so a listener removed during dispatch may still see the
// in-flight event but never a later one.

func (m *Manager) AddNodeListener(l NodeListener) {
	if l == nil {
		return
	}
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.nodeListeners = appendListener(m.nodeListeners, l)
}

func (m *Manager) RemoveNodeListener(l NodeListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.nodeListeners = removeListener(m.nodeListeners, l)
}

func (m *Manager) AddDeviceListener(l DeviceListener) {
	if l == nil {
		return
	}
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.deviceListeners = appendListener(m.deviceListeners, l)
}

func (m *Manager) RemoveDeviceListener(l DeviceListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.deviceListeners = removeListener(m.deviceListeners, l)
}

func (m *Manager) AddAnnounceListener(l AnnounceListener) {
	if l == nil {
		return
	}
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.announceListeners = appendListener(m.announceListeners, l)
}

func (m *Manager) RemoveAnnounceListener(l AnnounceListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.announceListeners = removeListener(m.announceListeners, l)
}

func (m *Manager) AddStateListener(l StateListener) {
	if l == nil {
		return
	}
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.stateListeners = appendListener(m.stateListeners, l)
}

func (m *Manager) RemoveStateListener(l StateListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.stateListeners = removeListener(m.stateListeners, l)
}

func (m *Manager) AddCommandListener(l CommandListener) {
	if l == nil {
		return
	}
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.commandListeners = appendListener(m.commandListeners, l)
}

func (m *Manager) RemoveCommandListener(l CommandListener) {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	m.commandListeners = removeListener(m.commandListeners, l)
}

func (m *Manager) nodeListenerSnapshot() []NodeListener {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()
	return m.nodeListeners
}

func (m *Manager) deviceListenerSnapshot() []DeviceListener {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()
	return m.deviceListeners
}

func (m *Manager) announceListenerSnapshot() []AnnounceListener {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()
	return m.announceListeners
}

func (m *Manager) stateListenerSnapshot() []StateListener {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()
	return m.stateListeners
}

func (m *Manager) commandListenerSnapshot() []CommandListener {
	m.listenerMu.RLock()
	defer m.listenerMu.RUnlock()
	return m.commandListeners
}

// appendListener returns a new slice so in-flight iterations keep their
// snapshot.
func appendListener[T any](list []T, l T) []T {
	next := make([]T, 0, len(list)+1)
	next = append(next, list...)
	return append(next, l)
}

// removeListener returns a new slice without the first occurrence of l.
// Listeners are compared by identity, so implementations use pointer
// receivers.
func removeListener[T any](list []T, l T) []T {
	next := make([]T, 0, len(list))
	removed := false
	for _, existing := range list {
		if !removed && any(existing) == any(l) {
			removed = true
			continue
		}
		next = append(next, existing)
	}
	return next
}
