package network

import (
	"fmt"

	"zigbee-host/internal/serialization"
	"zigbee-host/internal/transport"
	"zigbee-host/internal/zcl"
	"zigbee-host/internal/zdo"
	"zigbee-host/internal/zigbee"
)

const defaultRadius = 31

// SendCommand frames and transmits one command and returns the transaction
// id bound to it. The command must carry a destination address.
func (m *Manager) SendCommand(cmd zigbee.Command) (uint8, error) {
	sequence := m.nextSequence()
	cmd.SetTransactionID(sequence)

	frame := &zigbee.ApsFrame{
		Cluster:       cmd.ClusterID(),
		ApsCounter:    m.nextApsCounter(),
		SourceAddress: 0, // host
		Sequence:      sequence,
		Radius:        defaultRadius,
	}

	switch dst := cmd.DestinationAddress().(type) {
	case zigbee.DeviceAddress:
		frame.AddressMode = zigbee.AddressModeDevice
		frame.DestinationAddress = dst.Addr
		frame.DestinationEndpoint = dst.Endpoint
	case zigbee.GroupAddress:
		frame.AddressMode = zigbee.AddressModeGroup
		frame.DestinationAddress = dst.ID
		// TODO: carry the group destination endpoint once the transport
		// contract grows a multicast endpoint field.
	default:
		return 0, fmt.Errorf("%w: command has no destination address", ErrInvalidArgument)
	}

	writer, err := m.newWriter()
	if err != nil {
		return 0, fmt.Errorf("%w: create serializer: %v", ErrCodec, err)
	}
	fs := serialization.NewFieldSerializer(writer)

	switch c := cmd.(type) {
	case zcl.Command:
		frame.Profile = zigbee.ProfileHomeAutomation
		frameType := zcl.FrameTypeClusterSpecific
		if c.Generic() {
			frameType = zcl.FrameTypeEntireProfile
		}
		header := zcl.Header{
			FrameType:      frameType,
			CommandID:      c.CommandID(),
			SequenceNumber: sequence,
			Direction:      c.Direction(),
		}
		if err := header.Serialize(fs); err != nil {
			return 0, fmt.Errorf("%w: zcl header: %v", ErrCodec, err)
		}
		if err := c.Serialize(fs); err != nil {
			return 0, fmt.Errorf("%w: zcl payload: %v", ErrCodec, err)
		}
	case zdo.Command:
		frame.Profile = zigbee.ProfileZDO
		if err := c.Serialize(fs); err != nil {
			return 0, fmt.Errorf("%w: zdo payload: %v", ErrCodec, err)
		}
	default:
		return 0, fmt.Errorf("%w: unsupported command type %T", ErrInvalidArgument, cmd)
	}
	frame.Payload = fs.Payload()

	m.logger.Debug("TX command",
		"cluster", fmt.Sprintf("0x%04X", frame.Cluster),
		"profile", fmt.Sprintf("0x%04X", frame.Profile),
		"dst", cmd.DestinationAddress().String(),
		"seq", sequence,
	)

	if err := m.transport.SendCommand(frame); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return sequence, nil
}

// ReceiveCommand parses one inbound APS frame into a typed command and fans
// it out to the command listeners. Malformed or unknown frames are dropped
// with a diagnostic; they never disturb the lifecycle or other listeners.
func (m *Manager) ReceiveCommand(frame *zigbee.ApsFrame) {
	reader, err := m.newReader(frame.Payload)
	if err != nil {
		m.logger.Debug("create deserializer", "err", err)
		return
	}
	fd := serialization.NewFieldDeserializer(reader)

	var cmd zigbee.Command
	switch frame.Profile {
	case zigbee.ProfileZDO:
		cmd = m.receiveZdoCommand(fd, frame)
	case zigbee.ProfileHomeAutomation:
		cmd = m.receiveZclCommand(fd, frame)
	default:
		m.logger.Debug("unknown profile", "profile", fmt.Sprintf("0x%04X", frame.Profile))
		return
	}
	if cmd == nil {
		return
	}

	cmd.SetSourceAddress(zigbee.DeviceAddress{Addr: frame.SourceAddress, Endpoint: frame.SourceEndpoint})
	cmd.SetDestinationAddress(zigbee.DeviceAddress{Addr: frame.DestinationAddress, Endpoint: frame.DestinationEndpoint})

	m.logger.Debug("RX command",
		"cluster", fmt.Sprintf("0x%04X", cmd.ClusterID()),
		"src", cmd.SourceAddress().String(),
		"seq", cmd.TransactionID(),
	)

	m.notifyCommandListeners(cmd)
}

// receiveZdoCommand resolves a ZDO command by the APS cluster id.
func (m *Manager) receiveZdoCommand(fd *serialization.FieldDeserializer, frame *zigbee.ApsFrame) zigbee.Command {
	factory := m.zdoRegistry.Get(frame.Cluster)
	if factory == nil {
		m.logger.Debug("unknown zdo cluster", "cluster", fmt.Sprintf("0x%04X", frame.Cluster))
		return nil
	}
	cmd := factory()
	if err := cmd.Deserialize(fd); err != nil {
		m.logger.Debug("zdo deserialize", "cluster", fmt.Sprintf("0x%04X", frame.Cluster), "err", err)
		return nil
	}
	return cmd
}

// receiveZclCommand parses the ZCL header and resolves the command by
// (frame type, cluster, command id, direction).
func (m *Manager) receiveZclCommand(fd *serialization.FieldDeserializer, frame *zigbee.ApsFrame) zigbee.Command {
	header, err := zcl.ParseHeader(fd)
	if err != nil {
		m.logger.Debug("zcl header parse", "err", err)
		return nil
	}

	factory := m.zclRegistry.Get(header.FrameType, frame.Cluster, header.CommandID, header.Direction)
	if factory == nil {
		m.logger.Debug("unknown zcl command",
			"frameType", header.FrameType.String(),
			"cluster", fmt.Sprintf("0x%04X", frame.Cluster),
			"command", fmt.Sprintf("0x%02X", header.CommandID),
			"direction", header.Direction.String(),
		)
		return nil
	}

	cmd := factory()
	if err := cmd.Deserialize(fd); err != nil {
		m.logger.Debug("zcl deserialize", "cluster", fmt.Sprintf("0x%04X", frame.Cluster), "err", err)
		return nil
	}
	cmd.SetClusterID(frame.Cluster)
	cmd.SetTransactionID(header.SequenceNumber)
	return cmd
}

func (m *Manager) notifyCommandListeners(cmd zigbee.Command) {
	for _, l := range m.commandListenerSnapshot() {
		listener := l
		m.notifier.submit(func() { listener.CommandReceived(cmd) })
	}
}

// SetNetworkState is called by the transport on state changes and fans out
// to the state listeners.
func (m *Manager) SetNetworkState(state transport.State) {
	m.logger.Info("network state", "state", state.String())
	for _, l := range m.stateListenerSnapshot() {
		listener := l
		m.notifier.submit(func() { listener.NetworkStateUpdated(state) })
	}
}

// AnnounceDevice is called by the transport when a device announces itself
// and fans out to the announce listeners.
func (m *Manager) AnnounceDevice(nwkAddr uint16) {
	m.logger.Debug("device announce", "addr", fmt.Sprintf("0x%04X", nwkAddr))
	for _, l := range m.announceListenerSnapshot() {
		listener := l
		m.notifier.submit(func() { listener.DeviceAnnounced(nwkAddr) })
	}
}

var _ transport.Receiver = (*Manager)(nil)
