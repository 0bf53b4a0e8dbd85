package transport

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"go.bug.st/serial"

	"zigbee-host/internal/zigbee"
)

// Link-layer framing: SOF, 2-byte little-endian body length, body, XOR
// checksum over the body. The first body byte is the message type.
const (
	sofByte = 0x7E

	msgApsFrame       = 0x01
	msgNetworkConfig  = 0x02
	msgNetworkState   = 0x03
	msgDeviceAnnounce = 0x04
)

const maxBodyLen = 2048

// SerialTransport drives a radio coprocessor over a serial port.
type SerialTransport struct {
	portName string
	baud     int
	logger   *slog.Logger

	mu       sync.Mutex
	port     serial.Port
	receiver Receiver
	channel  uint8
	panID    uint16
	extPanID uint64
	key      [16]byte

	done chan struct{}
	wg   sync.WaitGroup
}

// NewSerialTransport creates a transport for the given port. The port is not
// opened until Initialize.
func NewSerialTransport(portName string, baud int, logger *slog.Logger) *SerialTransport {
	return &SerialTransport{
		portName: portName,
		baud:     baud,
		logger:   logger.With("component", "serial"),
		channel:  11,
		panID:    0xFFFF,
	}
}

// SetReceiver registers the inbound frame handler.
func (t *SerialTransport) SetReceiver(r Receiver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.receiver = r
}

// Initialize opens the port and starts the read loop. The joined state is
// reported asynchronously by the radio via a network-state message, so a
// successful open reports not-joined.
func (t *SerialTransport) Initialize() InitResult {
	port, err := serial.Open(t.portName, &serial.Mode{BaudRate: t.baud})
	if err != nil {
		t.logger.Error("open serial port", "port", t.portName, "err", err)
		return InitFailed
	}
	t.mu.Lock()
	t.port = port
	t.done = make(chan struct{})
	t.mu.Unlock()

	t.wg.Add(1)
	go t.readLoop(port)

	t.logger.Info("serial port open", "port", t.portName, "baud", t.baud)
	return InitNotJoined
}

// Startup pushes the network configuration to the radio.
func (t *SerialTransport) Startup(reinitialize bool) error {
	t.mu.Lock()
	body := make([]byte, 0, 32)
	body = append(body, msgNetworkConfig)
	if reinitialize {
		body = append(body, 1)
	} else {
		body = append(body, 0)
	}
	body = append(body, t.channel)
	body = binary.LittleEndian.AppendUint16(body, t.panID)
	body = binary.LittleEndian.AppendUint64(body, t.extPanID)
	body = append(body, t.key[:]...)
	t.mu.Unlock()

	if err := t.write(body); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	return nil
}

// Shutdown stops the read loop and closes the port.
func (t *SerialTransport) Shutdown() {
	t.mu.Lock()
	port := t.port
	done := t.done
	t.port = nil
	t.mu.Unlock()
	if done != nil {
		close(done)
	}
	if port != nil {
		port.Close()
	}
	t.wg.Wait()
}

func (t *SerialTransport) Channel() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channel
}

func (t *SerialTransport) SetChannel(channel uint8) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channel = channel
	return nil
}

func (t *SerialTransport) PanID() uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.panID
}

func (t *SerialTransport) SetPanID(panID uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panID = panID
	return nil
}

func (t *SerialTransport) ExtendedPanID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.extPanID
}

func (t *SerialTransport) SetExtendedPanID(panID uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.extPanID = panID
	return nil
}

func (t *SerialTransport) SecurityKey() [16]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.key
}

func (t *SerialTransport) SetSecurityKey(key [16]byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.key = key
	return nil
}

// SendCommand frames and writes one APS frame.
func (t *SerialTransport) SendCommand(frame *zigbee.ApsFrame) error {
	if err := t.write(encodeApsBody(frame)); err != nil {
		return fmt.Errorf("send aps frame: %w", err)
	}
	return nil
}

func (t *SerialTransport) write(body []byte) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return fmt.Errorf("serial port not open")
	}
	_, err := port.Write(encodeLinkFrame(body))
	return err
}

func (t *SerialTransport) readLoop(port serial.Port) {
	defer t.wg.Done()
	var buf []byte
	chunk := make([]byte, 256)
	for {
		n, err := port.Read(chunk)
		if err != nil {
			select {
			case <-t.done:
			default:
				t.logger.Error("serial read", "err", err)
			}
			return
		}
		buf = append(buf, chunk[:n]...)
		for {
			body, rest, ok := extractLinkFrame(buf)
			buf = rest
			if !ok {
				break
			}
			t.dispatch(body)
		}
	}
}

func (t *SerialTransport) dispatch(body []byte) {
	t.mu.Lock()
	receiver := t.receiver
	t.mu.Unlock()
	if receiver == nil || len(body) == 0 {
		return
	}

	switch body[0] {
	case msgApsFrame:
		frame, err := decodeApsBody(body)
		if err != nil {
			t.logger.Debug("bad aps frame", "err", err)
			return
		}
		receiver.ReceiveCommand(frame)
	case msgNetworkState:
		if len(body) < 2 {
			return
		}
		receiver.SetNetworkState(State(body[1]))
	case msgDeviceAnnounce:
		if len(body) < 3 {
			return
		}
		receiver.AnnounceDevice(binary.LittleEndian.Uint16(body[1:3]))
	default:
		t.logger.Debug("unknown link message", "type", fmt.Sprintf("0x%02X", body[0]))
	}
}

// encodeLinkFrame wraps a body with SOF, length and checksum.
func encodeLinkFrame(body []byte) []byte {
	out := make([]byte, 0, len(body)+4)
	out = append(out, sofByte)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(body)))
	out = append(out, body...)
	out = append(out, checksum(body))
	return out
}

// extractLinkFrame scans for a complete frame at the head of buf. It returns
// the frame body, the remaining buffer, and whether a frame was produced.
// Garbage before the SOF and frames with a bad checksum are discarded.
func extractLinkFrame(buf []byte) (body, rest []byte, ok bool) {
	// Drop everything before the SOF.
	start := 0
	for start < len(buf) && buf[start] != sofByte {
		start++
	}
	buf = buf[start:]

	if len(buf) < 3 {
		return nil, buf, false
	}
	length := int(binary.LittleEndian.Uint16(buf[1:3]))
	if length > maxBodyLen {
		// Corrupt length: resynchronize past this SOF.
		return nil, buf[1:], false
	}
	if len(buf) < 3+length+1 {
		return nil, buf, false
	}
	body = buf[3 : 3+length]
	sum := buf[3+length]
	rest = buf[3+length+1:]
	if checksum(body) != sum {
		return nil, rest, false
	}
	return body, rest, true
}

func checksum(body []byte) byte {
	var sum byte
	for _, b := range body {
		sum ^= b
	}
	return sum
}

// encodeApsBody serializes an APS frame into a link message body.
func encodeApsBody(frame *zigbee.ApsFrame) []byte {
	body := make([]byte, 0, 16+len(frame.Payload))
	body = append(body, msgApsFrame)
	body = binary.LittleEndian.AppendUint16(body, frame.Profile)
	body = binary.LittleEndian.AppendUint16(body, frame.Cluster)
	body = binary.LittleEndian.AppendUint16(body, frame.SourceAddress)
	body = append(body, frame.SourceEndpoint)
	body = binary.LittleEndian.AppendUint16(body, frame.DestinationAddress)
	body = append(body, frame.DestinationEndpoint)
	body = append(body, frame.ApsCounter, frame.Sequence, frame.Radius, byte(frame.AddressMode))
	body = binary.LittleEndian.AppendUint16(body, uint16(len(frame.Payload)))
	body = append(body, frame.Payload...)
	return body
}

// decodeApsBody parses a link message body into an APS frame.
func decodeApsBody(body []byte) (*zigbee.ApsFrame, error) {
	const headerLen = 17 // type + fixed fields + payload length
	if len(body) < headerLen {
		return nil, fmt.Errorf("aps body too short: %d", len(body))
	}
	frame := &zigbee.ApsFrame{
		Profile:             binary.LittleEndian.Uint16(body[1:3]),
		Cluster:             binary.LittleEndian.Uint16(body[3:5]),
		SourceAddress:       binary.LittleEndian.Uint16(body[5:7]),
		SourceEndpoint:      body[7],
		DestinationAddress:  binary.LittleEndian.Uint16(body[8:10]),
		DestinationEndpoint: body[10],
		ApsCounter:          body[11],
		Sequence:            body[12],
		Radius:              body[13],
		AddressMode:         zigbee.NwkAddressMode(body[14]),
	}
	payloadLen := int(binary.LittleEndian.Uint16(body[15:17]))
	if len(body) < headerLen+payloadLen {
		return nil, fmt.Errorf("aps payload truncated: want %d, have %d", payloadLen, len(body)-headerLen)
	}
	frame.Payload = append([]byte(nil), body[headerLen:headerLen+payloadLen]...)
	return frame, nil
}
