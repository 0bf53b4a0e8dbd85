package transport

import (
	"bytes"
	"testing"

	"zigbee-host/internal/zigbee"
)

func TestLinkFrameRoundTrip(t *testing.T) {
	body := []byte{msgApsFrame, 0x01, 0x02, 0x03}
	wire := encodeLinkFrame(body)

	got, rest, ok := extractLinkFrame(wire)
	if !ok {
		t.Fatal("frame not extracted")
	}
	if !bytes.Equal(got, body) {
		t.Errorf("body = %X, want %X", got, body)
	}
	if len(rest) != 0 {
		t.Errorf("rest = %X, want empty", rest)
	}
}

func TestExtractSkipsGarbage(t *testing.T) {
	body := []byte{msgNetworkState, 0x02}
	wire := append([]byte{0x00, 0x13, 0x37}, encodeLinkFrame(body)...)

	got, _, ok := extractLinkFrame(wire)
	if !ok {
		t.Fatal("frame not extracted after garbage")
	}
	if !bytes.Equal(got, body) {
		t.Errorf("body = %X, want %X", got, body)
	}
}

func TestExtractIncompleteFrame(t *testing.T) {
	wire := encodeLinkFrame([]byte{msgApsFrame, 0x01, 0x02})
	for cut := 0; cut < len(wire); cut++ {
		if _, _, ok := extractLinkFrame(wire[:cut]); ok {
			t.Fatalf("extracted a frame from %d of %d bytes", cut, len(wire))
		}
	}
}

func TestExtractRejectsBadChecksum(t *testing.T) {
	wire := encodeLinkFrame([]byte{msgApsFrame, 0x01, 0x02})
	wire[len(wire)-1] ^= 0xFF

	if _, _, ok := extractLinkFrame(wire); ok {
		t.Fatal("bad checksum accepted")
	}
}

func TestExtractConsecutiveFrames(t *testing.T) {
	first := []byte{msgNetworkState, 0x02}
	second := []byte{msgDeviceAnnounce, 0x21, 0x4F}
	wire := append(encodeLinkFrame(first), encodeLinkFrame(second)...)

	got1, rest, ok := extractLinkFrame(wire)
	if !ok || !bytes.Equal(got1, first) {
		t.Fatalf("first frame = %X, ok=%v", got1, ok)
	}
	got2, rest, ok := extractLinkFrame(rest)
	if !ok || !bytes.Equal(got2, second) {
		t.Fatalf("second frame = %X, ok=%v", got2, ok)
	}
	if len(rest) != 0 {
		t.Errorf("rest = %X", rest)
	}
}

func TestApsBodyRoundTrip(t *testing.T) {
	frame := &zigbee.ApsFrame{
		Profile:             0x0104,
		Cluster:             0x0006,
		SourceAddress:       0x4F21,
		SourceEndpoint:      1,
		DestinationAddress:  0x0000,
		DestinationEndpoint: 1,
		ApsCounter:          0x42,
		Sequence:            0x43,
		Radius:              31,
		AddressMode:         zigbee.AddressModeDevice,
		Payload:             []byte{0x08, 0x43, 0x0B, 0x01, 0x00},
	}

	parsed, err := decodeApsBody(encodeApsBody(frame))
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Profile != frame.Profile || parsed.Cluster != frame.Cluster {
		t.Errorf("profile/cluster = %04X/%04X", parsed.Profile, parsed.Cluster)
	}
	if parsed.SourceAddress != frame.SourceAddress || parsed.SourceEndpoint != frame.SourceEndpoint {
		t.Errorf("source = %04X/%d", parsed.SourceAddress, parsed.SourceEndpoint)
	}
	if parsed.ApsCounter != 0x42 || parsed.Sequence != 0x43 || parsed.Radius != 31 {
		t.Errorf("counters = %d/%d/%d", parsed.ApsCounter, parsed.Sequence, parsed.Radius)
	}
	if !bytes.Equal(parsed.Payload, frame.Payload) {
		t.Errorf("payload = %X", parsed.Payload)
	}
}

func TestApsBodyEmptyPayload(t *testing.T) {
	frame := &zigbee.ApsFrame{Profile: 0x0000, Cluster: 0x0036}
	parsed, err := decodeApsBody(encodeApsBody(frame))
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Payload) != 0 {
		t.Errorf("payload = %X, want empty", parsed.Payload)
	}
}

func TestDecodeApsBodyTruncated(t *testing.T) {
	if _, err := decodeApsBody([]byte{msgApsFrame, 0x04}); err == nil {
		t.Error("truncated header accepted")
	}

	full := encodeApsBody(&zigbee.ApsFrame{Payload: []byte{1, 2, 3, 4}})
	if _, err := decodeApsBody(full[:len(full)-2]); err == nil {
		t.Error("truncated payload accepted")
	}
}
