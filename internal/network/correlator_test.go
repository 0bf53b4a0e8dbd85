package network

import (
	"context"
	"errors"
	"testing"
	"time"

	"zigbee-host/internal/zcl"
	"zigbee-host/internal/zdo"
	"zigbee-host/internal/zigbee"
)

// neverMatcher rejects every inbound command.
type neverMatcher struct{}

func (neverMatcher) IsMatch(request, response zigbee.Command) bool { return false }

func awaitResult(t *testing.T, f *Future, timeout time.Duration) CommandResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	result, err := f.Wait(ctx)
	if err != nil {
		t.Fatalf("future did not complete: %v", err)
	}
	return result
}

func readAttributesTo(dst zigbee.DeviceAddress) *zcl.ReadAttributesCommand {
	cmd := &zcl.ReadAttributesCommand{Identifiers: []uint16{0x0000}}
	cmd.SetClusterID(0x0006)
	cmd.SetDestinationAddress(dst)
	return cmd
}

// respondTo injects a Read Attributes Response matching the captured
// request frame.
func respondTo(m *Manager, frame *zigbee.ApsFrame) {
	m.ReceiveCommand(&zigbee.ApsFrame{
		Profile:        zigbee.ProfileHomeAutomation,
		Cluster:        frame.Cluster,
		SourceAddress:  frame.DestinationAddress,
		SourceEndpoint: frame.DestinationEndpoint,
		Payload:        []byte{0x08, frame.Sequence, 0x01, 0x00, 0x00, 0x00, 0x10, 0x01},
	})
}

func TestUnicastMatchCompletesFuture(t *testing.T) {
	m, ft := newTestManager(t)

	future := m.Unicast(readAttributesTo(zigbee.DeviceAddress{Addr: 0x4F21, Endpoint: 1}), ZclCustomResponseMatcher{})
	respondTo(m, ft.lastFrame())

	result := awaitResult(t, future, time.Second)
	if !result.IsSuccess() {
		t.Fatalf("result not success: %+v", result)
	}
	rsp, ok := result.Response().(*zcl.ReadAttributesResponse)
	if !ok {
		t.Fatalf("response = %T", result.Response())
	}
	if len(rsp.Records) != 1 || rsp.Records[0].Value != true {
		t.Errorf("records = %+v", rsp.Records)
	}

	// The transient listener is removed after the match.
	if n := len(m.commandListenerSnapshot()); n != 0 {
		t.Errorf("command listeners after match = %d, want 0", n)
	}
}

func TestUnicastIgnoresWrongSequence(t *testing.T) {
	m, ft := newTestManager(t)

	future := m.Unicast(readAttributesTo(zigbee.DeviceAddress{Addr: 0x4F21, Endpoint: 1}), ZclCustomResponseMatcher{})
	frame := ft.lastFrame()

	// Response with a different sequence number must not match.
	m.ReceiveCommand(&zigbee.ApsFrame{
		Profile:       zigbee.ProfileHomeAutomation,
		Cluster:       frame.Cluster,
		SourceAddress: frame.DestinationAddress,
		Payload:       []byte{0x08, frame.Sequence + 1, 0x01, 0x00, 0x00, 0x00, 0x10, 0x01},
	})
	flushNotifier(m)

	select {
	case <-future.Done():
		t.Fatal("future completed on mismatched sequence")
	default:
	}
}

func TestUnicastIgnoresWrongSource(t *testing.T) {
	m, ft := newTestManager(t)

	future := m.Unicast(readAttributesTo(zigbee.DeviceAddress{Addr: 0x4F21, Endpoint: 1}), ZclCustomResponseMatcher{})
	frame := ft.lastFrame()

	m.ReceiveCommand(&zigbee.ApsFrame{
		Profile:       zigbee.ProfileHomeAutomation,
		Cluster:       frame.Cluster,
		SourceAddress: 0x9999,
		Payload:       []byte{0x08, frame.Sequence, 0x01, 0x00, 0x00, 0x00, 0x10, 0x01},
	})
	flushNotifier(m)

	select {
	case <-future.Done():
		t.Fatal("future completed on response from wrong node")
	default:
	}
}

func TestUnicastTimeout(t *testing.T) {
	m, _ := newTestManager(t)
	m.requestTimeout = 50 * time.Millisecond
	m.startSweeper()

	start := time.Now()
	future := m.Unicast(readAttributesTo(zigbee.DeviceAddress{Addr: 0x4F21, Endpoint: 1}), neverMatcher{})
	result := awaitResult(t, future, time.Second)

	if !result.IsEmpty() {
		t.Fatalf("result = %+v, want empty", result)
	}
	elapsed := time.Since(start)
	if elapsed < 50*time.Millisecond {
		t.Errorf("completed before the timeout: %v", elapsed)
	}
	if n := len(m.commandListenerSnapshot()); n != 0 {
		t.Errorf("command listeners after expiry = %d, want 0", n)
	}
}

func TestUnicastSendFailure(t *testing.T) {
	m, ft := newTestManager(t)
	ft.sendErr = errors.New("port gone")

	future := m.Unicast(readAttributesTo(zigbee.DeviceAddress{Addr: 0x4F21, Endpoint: 1}), ZclCustomResponseMatcher{})
	result := awaitResult(t, future, time.Second)

	if result.Err() == nil {
		t.Fatal("expected send failure in result")
	}
	if !errors.Is(result.Err(), ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", result.Err())
	}
	if n := len(m.commandListenerSnapshot()); n != 0 {
		t.Errorf("command listeners after failure = %d, want 0", n)
	}
}

func TestBroadcastCompletesImmediately(t *testing.T) {
	m, _ := newTestManager(t)

	cmd := zcl.NewToggleCommand()
	cmd.SetDestinationAddress(zigbee.GroupAddress{ID: 7})
	result := awaitResult(t, m.Broadcast(cmd), time.Second)

	if _, ok := result.Response().(*BroadcastResponse); !ok {
		t.Errorf("response = %T, want *BroadcastResponse", result.Response())
	}
	if n := len(m.commandListenerSnapshot()); n != 0 {
		t.Errorf("broadcast registered a listener: %d", n)
	}
}

func TestSendChoosesByDestination(t *testing.T) {
	m, ft := newTestManager(t)

	// Group destination: fire and forget.
	groupResult := awaitResult(t, m.Send(zigbee.GroupAddress{ID: 3}, zcl.NewOnCommand()), time.Second)
	if _, ok := groupResult.Response().(*BroadcastResponse); !ok {
		t.Errorf("group response = %T", groupResult.Response())
	}

	// Device destination: correlated.
	future := m.Send(zigbee.DeviceAddress{Addr: 0x0001, Endpoint: 1}, zcl.NewOnCommand())
	select {
	case <-future.Done():
		t.Fatal("unicast future completed without a response")
	default:
	}

	// Default Response from the device completes it.
	frame := ft.lastFrame()
	m.ReceiveCommand(&zigbee.ApsFrame{
		Profile:       zigbee.ProfileHomeAutomation,
		Cluster:       frame.Cluster,
		SourceAddress: 0x0001,
		Payload:       []byte{0x08, frame.Sequence, 0x0B, 0x01, 0x00},
	})
	result := awaitResult(t, future, time.Second)
	if _, ok := result.Response().(*zcl.DefaultResponse); !ok {
		t.Errorf("response = %T, want *zcl.DefaultResponse", result.Response())
	}
}

func TestReadScenario(t *testing.T) {
	m, ft := newTestManager(t)

	future := m.Read(zigbee.DeviceAddress{Addr: 0x4F21, Endpoint: 1}, 0x0006, 0x0000)

	frame := ft.lastFrame()
	if frame.Payload[0] != 0x00 {
		t.Errorf("frame control = 0x%02X, want ENTIRE_PROFILE", frame.Payload[0])
	}
	if frame.Payload[2] != 0x00 {
		t.Errorf("command id = 0x%02X, want Read Attributes", frame.Payload[2])
	}

	respondTo(m, frame)
	result := awaitResult(t, future, time.Second)
	if !result.IsSuccess() {
		t.Fatalf("result = %+v", result)
	}
}

func TestWriteScenario(t *testing.T) {
	m, ft := newTestManager(t)

	future := m.Write(zigbee.DeviceAddress{Addr: 0x4F21, Endpoint: 1}, 0x0006, 0x4003, zcl.TypeEnum8, uint8(1))

	frame := ft.lastFrame()
	// ZCL header then attr id, data type, value.
	wantPayload := []byte{0x00, frame.Sequence, 0x02, 0x03, 0x40, 0x30, 0x01}
	if len(frame.Payload) != len(wantPayload) {
		t.Fatalf("payload = %X, want %X", frame.Payload, wantPayload)
	}
	for i := range wantPayload {
		if frame.Payload[i] != wantPayload[i] {
			t.Errorf("payload[%d] = 0x%02X, want 0x%02X", i, frame.Payload[i], wantPayload[i])
		}
	}

	// Write Attributes Response (all success).
	m.ReceiveCommand(&zigbee.ApsFrame{
		Profile:       zigbee.ProfileHomeAutomation,
		Cluster:       0x0006,
		SourceAddress: 0x4F21,
		Payload:       []byte{0x08, frame.Sequence, 0x04, 0x00},
	})
	result := awaitResult(t, future, time.Second)
	if _, ok := result.Response().(*zcl.WriteAttributesResponse); !ok {
		t.Errorf("response = %T", result.Response())
	}
}

func TestBindIsStubbed(t *testing.T) {
	m, _ := newTestManager(t)
	src := zigbee.DeviceAddress{Addr: 1, Endpoint: 1}
	dst := zigbee.DeviceAddress{Addr: 0, Endpoint: 1}

	if _, err := m.Bind(src, dst, 0x0006); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Bind err = %v, want ErrNotImplemented", err)
	}
	if _, err := m.Unbind(src, dst, 0x0006); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Unbind err = %v, want ErrNotImplemented", err)
	}
}

func TestFutureSingleAssignment(t *testing.T) {
	f := newFuture()
	if !f.complete(CommandResult{response: &BroadcastResponse{}}) {
		t.Fatal("first completion rejected")
	}
	if f.complete(CommandResult{err: errors.New("late")}) {
		t.Fatal("second completion accepted")
	}
	if f.Get().Err() != nil {
		t.Error("second completion overwrote result")
	}
}

func TestZdoResponseMatcher(t *testing.T) {
	m, ft := newTestManager(t)

	lqi := zdo.NewMgmtLqiRequest()
	lqi.SetDestinationAddress(zigbee.DeviceAddress{Addr: 0x4F21})
	future := m.Unicast(lqi, ZdoResponseMatcher{})
	frame := ft.lastFrame()
	if frame.Cluster != 0x0031 {
		t.Fatalf("cluster = 0x%04X", frame.Cluster)
	}

	// Response: cluster 0x8031 from the addressed node, empty table.
	m.ReceiveCommand(&zigbee.ApsFrame{
		Profile:       zigbee.ProfileZDO,
		Cluster:       0x8031,
		SourceAddress: 0x4F21,
		Payload:       []byte{0x00, 0x00, 0x00, 0x00},
	})
	result := awaitResult(t, future, time.Second)
	if !result.IsSuccess() {
		t.Fatalf("result = %+v", result)
	}
}
