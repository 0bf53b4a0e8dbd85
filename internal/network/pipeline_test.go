package network

import (
	"bytes"
	"sync"
	"testing"

	"zigbee-host/internal/transport"
	"zigbee-host/internal/zcl"
	"zigbee-host/internal/zdo"
	"zigbee-host/internal/zigbee"
)

// recordingListener collects inbound commands.
type recordingListener struct {
	mu       sync.Mutex
	commands []zigbee.Command
}

func (l *recordingListener) CommandReceived(cmd zigbee.Command) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.commands = append(l.commands, cmd)
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.commands)
}

func (l *recordingListener) at(i int) zigbee.Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commands[i]
}

func TestSendCommandSequenceProperty(t *testing.T) {
	m, _ := newTestManager(t)

	var ids []uint8
	for i := 0; i < 300; i++ {
		cmd := zcl.NewOnCommand()
		cmd.SetDestinationAddress(zigbee.DeviceAddress{Addr: 0x1234, Endpoint: 1})
		id, err := m.SendCommand(cmd)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	start := ids[0]
	for i, id := range ids {
		want := uint8(int(start) + i)
		if id != want {
			t.Fatalf("ids[%d] = %d, want %d (mod 256)", i, id, want)
		}
	}
}

func TestSendZclReadAttributesFrame(t *testing.T) {
	m, ft := newTestManager(t)

	cmd := &zcl.ReadAttributesCommand{Identifiers: []uint16{0x0000}}
	cmd.SetClusterID(0x0006)
	cmd.SetDestinationAddress(zigbee.DeviceAddress{Addr: 0x4F21, Endpoint: 3})

	seq, err := m.SendCommand(cmd)
	if err != nil {
		t.Fatal(err)
	}

	frame := ft.lastFrame()
	if frame == nil {
		t.Fatal("no frame sent")
	}
	if frame.Profile != zigbee.ProfileHomeAutomation {
		t.Errorf("profile = 0x%04X, want 0x0104", frame.Profile)
	}
	if frame.Cluster != 0x0006 {
		t.Errorf("cluster = 0x%04X, want 0x0006", frame.Cluster)
	}
	if frame.DestinationAddress != 0x4F21 || frame.DestinationEndpoint != 3 {
		t.Errorf("dst = 0x%04X/%d", frame.DestinationAddress, frame.DestinationEndpoint)
	}
	if frame.AddressMode != zigbee.AddressModeDevice {
		t.Errorf("address mode = %d, want device", frame.AddressMode)
	}
	if frame.SourceAddress != 0 {
		t.Errorf("src = 0x%04X, want 0", frame.SourceAddress)
	}
	if frame.Radius != 31 {
		t.Errorf("radius = %d, want 31", frame.Radius)
	}
	if frame.Sequence != seq {
		t.Errorf("sequence = %d, want %d", frame.Sequence, seq)
	}

	// ZCL header: ENTIRE_PROFILE frame type, Read Attributes, then the
	// attribute identifier.
	want := []byte{0x00, seq, 0x00, 0x00, 0x00}
	if !bytes.Equal(frame.Payload, want) {
		t.Errorf("payload = %X, want %X", frame.Payload, want)
	}
}

func TestSendClusterSpecificFrameType(t *testing.T) {
	m, ft := newTestManager(t)

	cmd := zcl.NewOnCommand()
	cmd.SetDestinationAddress(zigbee.DeviceAddress{Addr: 0x0001, Endpoint: 1})
	seq, err := m.SendCommand(cmd)
	if err != nil {
		t.Fatal(err)
	}

	frame := ft.lastFrame()
	want := []byte{0x01, seq, 0x01} // CLUSTER_SPECIFIC, seq, On
	if !bytes.Equal(frame.Payload, want) {
		t.Errorf("payload = %X, want %X", frame.Payload, want)
	}
}

func TestPermitJoinBroadcastScenario(t *testing.T) {
	m, ft := newTestManager(t)

	if err := m.PermitJoin(60); err != nil {
		t.Fatal(err)
	}

	frame := ft.lastFrame()
	if frame == nil {
		t.Fatal("no frame sent")
	}
	if frame.Profile != zigbee.ProfileZDO {
		t.Errorf("profile = 0x%04X, want 0x0000", frame.Profile)
	}
	if frame.Cluster != 0x0036 {
		t.Errorf("cluster = 0x%04X, want 0x0036", frame.Cluster)
	}
	if frame.DestinationAddress != 0xFFFC {
		t.Errorf("dst = 0x%04X, want 0xFFFC", frame.DestinationAddress)
	}
	if !bytes.Equal(frame.Payload, []byte{60, 1}) {
		t.Errorf("payload = %X, want 3C01 (duration=60, tc-significance)", frame.Payload)
	}
}

func TestPermitJoinClamping(t *testing.T) {
	m, ft := newTestManager(t)

	if err := m.PermitJoin(1000); err != nil {
		t.Fatal(err)
	}
	if got := ft.lastFrame().Payload[0]; got != 255 {
		t.Errorf("duration = %d, want clamped 255", got)
	}

	if err := m.PermitJoin(0); err != nil {
		t.Fatal(err)
	}
	if got := ft.lastFrame().Payload[0]; got != 0 {
		t.Errorf("duration = %d, want 0", got)
	}
}

func TestLeaveScenario(t *testing.T) {
	m, ft := newTestManager(t)

	if err := m.Leave(0x1234, 0x00158D0001234567); err != nil {
		t.Fatal(err)
	}

	frame := ft.lastFrame()
	if frame.Cluster != 0x0034 {
		t.Errorf("cluster = 0x%04X, want 0x0034", frame.Cluster)
	}
	if frame.DestinationAddress != 0x1234 {
		t.Errorf("dst = 0x%04X, want 0x1234", frame.DestinationAddress)
	}
	want := []byte{0x67, 0x45, 0x23, 0x01, 0x00, 0x8D, 0x15, 0x00, 0x00}
	if !bytes.Equal(frame.Payload, want) {
		t.Errorf("payload = %X, want %X", frame.Payload, want)
	}
}

func TestSendWithoutDestinationFails(t *testing.T) {
	m, _ := newTestManager(t)
	cmd := zcl.NewOnCommand()
	if _, err := m.SendCommand(cmd); err == nil {
		t.Error("expected error for missing destination")
	}
}

func TestSendToGroupUsesGroupMode(t *testing.T) {
	m, ft := newTestManager(t)

	cmd := zcl.NewToggleCommand()
	cmd.SetDestinationAddress(zigbee.GroupAddress{ID: 0x0007})
	if _, err := m.SendCommand(cmd); err != nil {
		t.Fatal(err)
	}

	frame := ft.lastFrame()
	if frame.AddressMode != zigbee.AddressModeGroup {
		t.Errorf("address mode = %d, want group", frame.AddressMode)
	}
	if frame.DestinationAddress != 0x0007 {
		t.Errorf("dst = 0x%04X, want 0x0007", frame.DestinationAddress)
	}
}

func TestReceiveZdoCommand(t *testing.T) {
	m, _ := newTestManager(t)
	listener := &recordingListener{}
	m.AddCommandListener(listener)

	m.ReceiveCommand(&zigbee.ApsFrame{
		Profile:        zigbee.ProfileZDO,
		Cluster:        zdo.ClusterDeviceAnnounce,
		SourceAddress:  0x4F21,
		SourceEndpoint: 0,
		Payload:        []byte{0x21, 0x4F, 0x67, 0x45, 0x23, 0x01, 0x00, 0x8D, 0x15, 0x00, 0x8E},
	})
	flushNotifier(m)

	if listener.count() != 1 {
		t.Fatalf("commands = %d, want 1", listener.count())
	}
	announce, ok := listener.at(0).(*zdo.DeviceAnnounce)
	if !ok {
		t.Fatalf("command = %T, want *zdo.DeviceAnnounce", listener.at(0))
	}
	if announce.NetworkAddress != 0x4F21 || announce.IEEE != 0x00158D0001234567 {
		t.Errorf("announce = %+v", announce)
	}
	src, ok := announce.SourceAddress().(zigbee.DeviceAddress)
	if !ok || src.Addr != 0x4F21 {
		t.Errorf("source = %v", announce.SourceAddress())
	}
}

func TestReceiveZclResponse(t *testing.T) {
	m, _ := newTestManager(t)
	listener := &recordingListener{}
	m.AddCommandListener(listener)

	// Read Attributes Response: server→client, seq 0x42, attr 0x0000
	// success bool true.
	m.ReceiveCommand(&zigbee.ApsFrame{
		Profile:        zigbee.ProfileHomeAutomation,
		Cluster:        0x0006,
		SourceAddress:  0x4F21,
		SourceEndpoint: 1,
		Payload:        []byte{0x08, 0x42, 0x01, 0x00, 0x00, 0x00, 0x10, 0x01},
	})
	flushNotifier(m)

	if listener.count() != 1 {
		t.Fatalf("commands = %d, want 1", listener.count())
	}
	rsp, ok := listener.at(0).(*zcl.ReadAttributesResponse)
	if !ok {
		t.Fatalf("command = %T, want *zcl.ReadAttributesResponse", listener.at(0))
	}
	if rsp.ClusterID() != 0x0006 {
		t.Errorf("cluster = 0x%04X", rsp.ClusterID())
	}
	if rsp.TransactionID() != 0x42 {
		t.Errorf("transaction id = %d, want 0x42", rsp.TransactionID())
	}
	if len(rsp.Records) != 1 || rsp.Records[0].Value != true {
		t.Errorf("records = %+v", rsp.Records)
	}
}

func TestReceiveDropsMalformedAndUnknown(t *testing.T) {
	m, _ := newTestManager(t)
	listener := &recordingListener{}
	m.AddCommandListener(listener)

	frames := []*zigbee.ApsFrame{
		// Unknown profile.
		{Profile: 0x0109, Cluster: 0x0006, Payload: []byte{0x00}},
		// Unknown ZDO cluster.
		{Profile: zigbee.ProfileZDO, Cluster: 0x7777, Payload: []byte{0x00}},
		// ZCL header too short.
		{Profile: zigbee.ProfileHomeAutomation, Cluster: 0x0006, Payload: []byte{0x00}},
		// Unknown ZCL command id.
		{Profile: zigbee.ProfileHomeAutomation, Cluster: 0x0006, Payload: []byte{0x01, 0x01, 0x7F}},
		// ZDO payload truncated.
		{Profile: zigbee.ProfileZDO, Cluster: zdo.ClusterDeviceAnnounce, Payload: []byte{0x21}},
		// Empty payload.
		{Profile: zigbee.ProfileHomeAutomation, Cluster: 0x0006, Payload: nil},
	}
	for _, frame := range frames {
		m.ReceiveCommand(frame)
	}
	flushNotifier(m)

	if listener.count() != 0 {
		t.Errorf("commands = %d, want 0 (all dropped)", listener.count())
	}

	// The pipeline still works after the bad frames.
	m.ReceiveCommand(&zigbee.ApsFrame{
		Profile: zigbee.ProfileHomeAutomation,
		Cluster: 0x0006,
		Payload: []byte{0x08, 0x01, 0x0B, 0x01, 0x00},
	})
	flushNotifier(m)
	if listener.count() != 1 {
		t.Errorf("commands = %d, want 1 after recovery", listener.count())
	}
}

func TestInboundOrderPreserved(t *testing.T) {
	m, _ := newTestManager(t)
	listener := &recordingListener{}
	m.AddCommandListener(listener)

	for i := 0; i < 50; i++ {
		m.ReceiveCommand(&zigbee.ApsFrame{
			Profile: zigbee.ProfileHomeAutomation,
			Cluster: 0x0006,
			Payload: []byte{0x08, uint8(i), 0x0B, 0x01, 0x00},
		})
	}
	flushNotifier(m)

	if listener.count() != 50 {
		t.Fatalf("commands = %d, want 50", listener.count())
	}
	for i := 0; i < 50; i++ {
		if listener.at(i).TransactionID() != uint8(i) {
			t.Fatalf("command %d has transaction id %d", i, listener.at(i).TransactionID())
		}
	}
}

func TestAnnounceAndStateListeners(t *testing.T) {
	m, _ := newTestManager(t)

	announced := &recordingAnnounceListener{}
	states := &recordingStateListener{}
	m.AddAnnounceListener(announced)
	m.AddStateListener(states)

	m.AnnounceDevice(0x1234)
	m.SetNetworkState(transport.StateOnline)
	flushNotifier(m)

	if got := announced.get(); len(got) != 1 || got[0] != 0x1234 {
		t.Errorf("announces = %v", got)
	}
	if got := states.get(); len(got) != 1 || got[0] != transport.StateOnline {
		t.Errorf("states = %v", got)
	}
}

type recordingAnnounceListener struct {
	mu    sync.Mutex
	addrs []uint16
}

func (l *recordingAnnounceListener) DeviceAnnounced(nwkAddr uint16) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addrs = append(l.addrs, nwkAddr)
}

func (l *recordingAnnounceListener) get() []uint16 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uint16(nil), l.addrs...)
}

type recordingStateListener struct {
	mu     sync.Mutex
	states []transport.State
}

func (l *recordingStateListener) NetworkStateUpdated(state transport.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, state)
}

func (l *recordingStateListener) get() []transport.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]transport.State(nil), l.states...)
}
