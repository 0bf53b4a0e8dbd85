package zdo

import (
	"bytes"
	"testing"

	"zigbee-host/internal/serialization"
	"zigbee-host/internal/zigbee"
)

func serializeCommand(t *testing.T, cmd Command) []byte {
	t.Helper()
	w, err := serialization.NewDefaultWriter()
	if err != nil {
		t.Fatal(err)
	}
	s := serialization.NewFieldSerializer(w)
	if err := cmd.Serialize(s); err != nil {
		t.Fatal(err)
	}
	return s.Payload()
}

func deserializeInto(t *testing.T, cmd Command, payload []byte) {
	t.Helper()
	r, err := serialization.NewDefaultReader(payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Deserialize(serialization.NewFieldDeserializer(r)); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceAnnounceRoundTrip(t *testing.T) {
	cmd := NewDeviceAnnounce()
	cmd.NetworkAddress = 0x4F21
	cmd.IEEE = 0x00158D0001234567
	cmd.Capability = 0x8E

	parsed := NewDeviceAnnounce()
	deserializeInto(t, parsed, serializeCommand(t, cmd))

	if parsed.NetworkAddress != 0x4F21 || parsed.IEEE != 0x00158D0001234567 || parsed.Capability != 0x8E {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestMgmtPermitJoiningWire(t *testing.T) {
	cmd := NewMgmtPermitJoiningRequest()
	cmd.PermitDuration = 60
	cmd.TCSignificance = true

	payload := serializeCommand(t, cmd)
	if !bytes.Equal(payload, []byte{60, 1}) {
		t.Errorf("payload = %X, want 3C01", payload)
	}
	if cmd.ClusterID() != 0x0036 {
		t.Errorf("cluster = 0x%04X, want 0x0036", cmd.ClusterID())
	}
}

func TestMgmtLeaveRequestWire(t *testing.T) {
	cmd := NewMgmtLeaveRequest()
	cmd.DeviceAddress = 0x00158D0001234567

	payload := serializeCommand(t, cmd)
	want := []byte{0x67, 0x45, 0x23, 0x01, 0x00, 0x8D, 0x15, 0x00, 0x00}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload = %X, want %X", payload, want)
	}
	if cmd.ClusterID() != 0x0034 {
		t.Errorf("cluster = 0x%04X, want 0x0034", cmd.ClusterID())
	}
}

func TestSimpleDescriptorResponseRoundTrip(t *testing.T) {
	cmd := NewSimpleDescriptorResponse()
	cmd.Status = StatusSuccess
	cmd.NetworkAddress = 0x1234
	cmd.Descriptor = SimpleDescriptor{
		Endpoint:       1,
		ProfileID:      0x0104,
		DeviceID:       0x0100,
		DeviceVersion:  1,
		InputClusters:  []uint16{0x0000, 0x0006},
		OutputClusters: []uint16{0x0019},
	}

	parsed := NewSimpleDescriptorResponse()
	deserializeInto(t, parsed, serializeCommand(t, cmd))

	if parsed.NetworkAddress != 0x1234 {
		t.Errorf("nwk = 0x%04X", parsed.NetworkAddress)
	}
	d := parsed.Descriptor
	if d.Endpoint != 1 || d.ProfileID != 0x0104 || d.DeviceID != 0x0100 {
		t.Errorf("descriptor = %+v", d)
	}
	if len(d.InputClusters) != 2 || d.InputClusters[1] != 0x0006 {
		t.Errorf("in clusters = %v", d.InputClusters)
	}
	if len(d.OutputClusters) != 1 || d.OutputClusters[0] != 0x0019 {
		t.Errorf("out clusters = %v", d.OutputClusters)
	}
}

func TestActiveEndpointsResponseRoundTrip(t *testing.T) {
	cmd := NewActiveEndpointsResponse()
	cmd.Status = StatusSuccess
	cmd.NetworkAddress = 0xBEEF
	cmd.Endpoints = []uint8{1, 2, 242}

	parsed := NewActiveEndpointsResponse()
	deserializeInto(t, parsed, serializeCommand(t, cmd))

	if parsed.NetworkAddress != 0xBEEF || !bytes.Equal(parsed.Endpoints, []uint8{1, 2, 242}) {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestMgmtLqiResponseRoundTrip(t *testing.T) {
	cmd := NewMgmtLqiResponse()
	cmd.Status = StatusSuccess
	cmd.NeighborTableEntries = 2
	cmd.StartIndex = 0
	cmd.Neighbors = []NeighborTableEntry{
		{
			ExtendedPanID:  0xDDDDDDDDDDDDDDDD,
			IEEE:           0x00158D0001234567,
			NetworkAddress: 0x0001,
			DeviceType:     0x01,
			RxOnWhenIdle:   0x01,
			Relationship:   0x02,
			PermitJoining:  0x00,
			Depth:          1,
			LQI:            180,
		},
		{
			IEEE:           0x00158D0009999999,
			NetworkAddress: 0x7F3A,
			DeviceType:     0x02,
			Depth:          2,
			LQI:            90,
		},
	}

	parsed := NewMgmtLqiResponse()
	deserializeInto(t, parsed, serializeCommand(t, cmd))

	if len(parsed.Neighbors) != 2 {
		t.Fatalf("neighbors = %d, want 2", len(parsed.Neighbors))
	}
	n := parsed.Neighbors[0]
	if n.NetworkAddress != 0x0001 || n.DeviceType != 0x01 || n.RxOnWhenIdle != 0x01 || n.Relationship != 0x02 {
		t.Errorf("neighbor 0 = %+v", n)
	}
	if n.LQI != 180 || n.Depth != 1 {
		t.Errorf("neighbor 0 lqi/depth = %d/%d", n.LQI, n.Depth)
	}
	if parsed.Neighbors[1].DeviceType != 0x02 {
		t.Errorf("neighbor 1 = %+v", parsed.Neighbors[1])
	}
}

func TestBindRequestRoundTrip(t *testing.T) {
	cmd := NewBindRequest()
	cmd.SrcIEEE = 0x00158D0001234567
	cmd.SrcEndpoint = 1
	cmd.BindClusterID = 0x0006
	cmd.DstIEEE = 0x00124B0000000001
	cmd.DstEndpoint = 1

	parsed := NewBindRequest()
	deserializeInto(t, parsed, serializeCommand(t, cmd))

	if parsed.SrcIEEE != cmd.SrcIEEE || parsed.BindClusterID != 0x0006 || parsed.DstIEEE != cmd.DstIEEE {
		t.Errorf("parsed = %+v", parsed)
	}
	if parsed.DstAddrMode != BindAddrModeDevice {
		t.Errorf("addr mode = %d", parsed.DstAddrMode)
	}
}

func TestIEEEAddressResponseRoundTrip(t *testing.T) {
	cmd := NewIEEEAddressResponse()
	cmd.Status = StatusSuccess
	cmd.IEEE = 0x00158D0001234567
	cmd.NetworkAddress = 0x4F21

	parsed := NewIEEEAddressResponse()
	deserializeInto(t, parsed, serializeCommand(t, cmd))

	if parsed.IEEE != cmd.IEEE || parsed.NetworkAddress != 0x4F21 {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()

	factory := r.Get(ClusterDeviceAnnounce)
	if factory == nil {
		t.Fatal("device announce not resolved")
	}
	if _, ok := factory().(*DeviceAnnounce); !ok {
		t.Errorf("factory produced %T", factory())
	}

	if r.Get(0x7777) != nil {
		t.Error("unknown cluster resolved")
	}
}

func TestResponseClusterFlag(t *testing.T) {
	if ClusterMgmtLqiResponse != 0x8031 {
		t.Errorf("lqi response cluster = 0x%04X", ClusterMgmtLqiResponse)
	}
	if ClusterIEEEAddressResponse != 0x8001 {
		t.Errorf("ieee response cluster = 0x%04X", ClusterIEEEAddressResponse)
	}
}

var _ zigbee.Command = (*DeviceAnnounce)(nil)
