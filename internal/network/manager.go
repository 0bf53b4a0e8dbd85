// Package network implements the ZigBee network manager: the hub that
// brokers command flow between client code and the radio transport, frames
// and unframes APS/ZCL/ZDO payloads, maintains the logical model of the
// mesh, correlates responses with in-flight requests, and multiplexes event
// delivery to listeners.
package network

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"zigbee-host/internal/serialization"
	"zigbee-host/internal/transport"
	"zigbee-host/internal/zcl"
	"zigbee-host/internal/zdo"
	"zigbee-host/internal/zigbee"
)

// LifecycleState tracks the manager's boot sequence. The sequence is
// traversed once; Stopped is terminal.
type LifecycleState int

const (
	Uninitialized LifecycleState = iota
	Initialized
	Starting
	Running
	ShuttingDown
	Stopped
)

func (s LifecycleState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting down"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StateSerializer persists and restores the mesh model. Deserialize is
// invoked during Initialize; Serialize is invoked on shutdown and after each
// mesh model mutation. The on-disk format is the adapter's concern.
type StateSerializer interface {
	Serialize(m *Manager) error
	Deserialize(m *Manager) error
}

const (
	defaultRequestTimeout = 8 * time.Second
	meshMonitorPeriod     = 60 * time.Second
)

// Manager is the ZigBee network manager.
type Manager struct {
	logger    *slog.Logger
	transport transport.Transport

	zclRegistry *zcl.Registry
	zdoRegistry *zdo.Registry
	newWriter   serialization.WriterFactory
	newReader   serialization.ReaderFactory

	stateMu         sync.Mutex
	lifecycle       LifecycleState
	stateSerializer StateSerializer

	sequence   atomic.Uint32
	apsCounter atomic.Uint32

	nodesMu   sync.Mutex
	nodes     map[uint16]*zigbee.Node
	devicesMu sync.Mutex
	devices   map[zigbee.DeviceAddress]*zigbee.Device
	groupsMu  sync.Mutex
	groups    map[uint16]*zigbee.Group

	listenerMu        sync.RWMutex
	nodeListeners     []NodeListener
	deviceListeners   []DeviceListener
	announceListeners []AnnounceListener
	stateListeners    []StateListener
	commandListeners  []CommandListener

	pendingMu      sync.Mutex
	pending        map[*pendingRequest]struct{}
	requestTimeout time.Duration
	sweepDone      chan struct{}
	sweepWg        sync.WaitGroup

	notifier    *notifier
	discoverer  *discoverer
	meshMonitor *meshMonitor
}

// NewManager creates a manager bound to a transport and registers itself as
// the transport's inbound receiver.
func NewManager(t transport.Transport, logger *slog.Logger) *Manager {
	m := &Manager{
		logger:         logger,
		transport:      t,
		zclRegistry:    zcl.DefaultRegistry(),
		zdoRegistry:    zdo.DefaultRegistry(),
		newWriter:      serialization.NewDefaultWriter,
		newReader:      serialization.NewDefaultReader,
		nodes:          make(map[uint16]*zigbee.Node),
		devices:        make(map[zigbee.DeviceAddress]*zigbee.Device),
		groups:         make(map[uint16]*zigbee.Group),
		pending:        make(map[*pendingRequest]struct{}),
		requestTimeout: defaultRequestTimeout,
		notifier:       newNotifier(logger),
	}
	m.discoverer = newDiscoverer(m)
	m.meshMonitor = newMeshMonitor(m)
	t.SetReceiver(m)
	return m
}

// SetSerializer replaces the byte-level codec factories. A fresh
// writer/reader is constructed per frame.
func (m *Manager) SetSerializer(w serialization.WriterFactory, r serialization.ReaderFactory) {
	m.newWriter = w
	m.newReader = r
}

// SetStateSerializer installs the persistence adapter. The manager calls
// Deserialize during Initialize and Serialize on shutdown and after each
// mesh model mutation.
func (m *Manager) SetStateSerializer(s StateSerializer) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.stateSerializer = s
}

// Lifecycle returns the current lifecycle state.
func (m *Manager) Lifecycle() LifecycleState {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.lifecycle
}

func (m *Manager) setLifecycle(s LifecycleState) {
	m.stateMu.Lock()
	m.lifecycle = s
	m.stateMu.Unlock()
}

func (m *Manager) requireLifecycle(want LifecycleState) error {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	if m.lifecycle != want {
		return fmt.Errorf("%w: %s (need %s)", ErrInvalidState, m.lifecycle, want)
	}
	return nil
}

// Initialize restores persisted network state and initializes the transport.
// Configuration setters may be used after a successful call, and Startup
// completes the boot sequence. Legal only from Uninitialized.
func (m *Manager) Initialize() (transport.InitResult, error) {
	if err := m.requireLifecycle(Uninitialized); err != nil {
		return transport.InitFailed, err
	}

	m.stateMu.Lock()
	serializer := m.stateSerializer
	m.stateMu.Unlock()
	if serializer != nil {
		if err := serializer.Deserialize(m); err != nil {
			m.logger.Error("restore network state", "err", err)
		}
	}

	result := m.transport.Initialize()
	if result == transport.InitFailed {
		return result, nil
	}
	m.setLifecycle(Initialized)
	m.logger.Info("transport initialized", "result", result.String())
	return result, nil
}

// Channel returns the current RF channel from the transport.
func (m *Manager) Channel() uint8 {
	return m.transport.Channel()
}

// SetChannel sets the RF channel. The allowable range is 11 to 26. Legal
// only between Initialize and Startup.
func (m *Manager) SetChannel(channel uint8) error {
	if err := m.requireLifecycle(Initialized); err != nil {
		return err
	}
	if channel < 11 || channel > 26 {
		return fmt.Errorf("%w: channel %d outside 11..26", ErrInvalidArgument, channel)
	}
	return m.transport.SetChannel(channel)
}

// PanID returns the PAN id currently in use by the transport.
func (m *Manager) PanID() uint16 {
	return m.transport.PanID()
}

// SetPanID sets the PAN id. The range is 0 to 0x3FFF; 0xFFFF asks the
// transport to choose. Legal only between Initialize and Startup.
func (m *Manager) SetPanID(panID uint16) error {
	if err := m.requireLifecycle(Initialized); err != nil {
		return err
	}
	if panID > 0x3FFF && panID != 0xFFFF {
		return fmt.Errorf("%w: pan id 0x%04X outside 0..0x3FFF", ErrInvalidArgument, panID)
	}
	return m.transport.SetPanID(panID)
}

// ExtendedPanID returns the extended PAN id currently in use by the
// transport.
func (m *Manager) ExtendedPanID() uint64 {
	return m.transport.ExtendedPanID()
}

// SetExtendedPanID sets the 64-bit extended PAN id. Legal only between
// Initialize and Startup.
func (m *Manager) SetExtendedPanID(panID uint64) error {
	if err := m.requireLifecycle(Initialized); err != nil {
		return err
	}
	return m.transport.SetExtendedPanID(panID)
}

// SetSecurityKey sets the 16-octet network security key. Legal only between
// Initialize and Startup.
func (m *Manager) SetSecurityKey(key []byte) error {
	if err := m.requireLifecycle(Initialized); err != nil {
		return err
	}
	if len(key) != 16 {
		return fmt.Errorf("%w: security key must be 16 octets, got %d", ErrInvalidArgument, len(key))
	}
	var k [16]byte
	copy(k[:], key)
	return m.transport.SetSecurityKey(k)
}

// Startup starts the transport and the background tasks. Legal only from
// Initialized.
func (m *Manager) Startup(reinitialize bool) error {
	if err := m.requireLifecycle(Initialized); err != nil {
		return err
	}
	m.setLifecycle(Starting)

	if err := m.transport.Startup(reinitialize); err != nil {
		m.setLifecycle(Initialized)
		return fmt.Errorf("%w: startup: %v", ErrTransport, err)
	}

	m.discoverer.start()
	m.meshMonitor.start(meshMonitorPeriod)
	m.startSweeper()

	m.setLifecycle(Running)
	m.logger.Info("network manager running")
	return nil
}

// Shutdown persists state, stops background tasks and shuts the transport
// down. Legal from Running or Initialized; idempotent thereafter.
func (m *Manager) Shutdown() error {
	m.stateMu.Lock()
	switch m.lifecycle {
	case ShuttingDown, Stopped:
		m.stateMu.Unlock()
		return nil
	case Running, Initialized:
	default:
		state := m.lifecycle
		m.stateMu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidState, state)
	}
	m.lifecycle = ShuttingDown
	serializer := m.stateSerializer
	m.stateMu.Unlock()

	if serializer != nil {
		if err := serializer.Serialize(m); err != nil {
			m.logger.Error("persist network state", "err", err)
		}
	}

	m.discoverer.stop()
	m.meshMonitor.stop()
	m.stopSweeper()
	m.transport.Shutdown()
	m.notifier.stop()

	m.setLifecycle(Stopped)
	m.logger.Info("network manager stopped")
	return nil
}

// saveState runs the persistence adapter after a mesh model mutation.
func (m *Manager) saveState() {
	m.stateMu.Lock()
	serializer := m.stateSerializer
	m.stateMu.Unlock()
	if serializer == nil {
		return
	}
	if err := serializer.Serialize(m); err != nil {
		m.logger.Error("persist network state", "err", err)
	}
}

func (m *Manager) nextSequence() uint8 {
	return uint8(m.sequence.Add(1) - 1)
}

func (m *Manager) nextApsCounter() uint8 {
	return uint8(m.apsCounter.Add(1) - 1)
}
