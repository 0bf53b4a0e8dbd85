package serialization

import "fmt"

// FieldSerializer layers typed field encoding on a ByteWriter. Multi-byte
// integers are little-endian per the ZigBee specification. The first write
// error is sticky: subsequent writes are no-ops and Err returns it.
type FieldSerializer struct {
	w   ByteWriter
	err error
}

// NewFieldSerializer wraps a fresh ByteWriter.
func NewFieldSerializer(w ByteWriter) *FieldSerializer {
	return &FieldSerializer{w: w}
}

// Err returns the first write error, if any.
func (s *FieldSerializer) Err() error {
	return s.err
}

// Payload returns the serialized bytes.
func (s *FieldSerializer) Payload() []byte {
	return s.w.Payload()
}

func (s *FieldSerializer) writeByte(b byte) {
	if s.err != nil {
		return
	}
	s.err = s.w.WriteByte(b)
}

func (s *FieldSerializer) WriteUint8(v uint8) {
	s.writeByte(v)
}

func (s *FieldSerializer) WriteInt8(v int8) {
	s.writeByte(byte(v))
}

func (s *FieldSerializer) WriteUint16(v uint16) {
	s.writeByte(byte(v))
	s.writeByte(byte(v >> 8))
}

func (s *FieldSerializer) WriteInt16(v int16) {
	s.WriteUint16(uint16(v))
}

func (s *FieldSerializer) WriteUint32(v uint32) {
	s.writeByte(byte(v))
	s.writeByte(byte(v >> 8))
	s.writeByte(byte(v >> 16))
	s.writeByte(byte(v >> 24))
}

func (s *FieldSerializer) WriteUint64(v uint64) {
	for i := 0; i < 8; i++ {
		s.writeByte(byte(v >> (8 * i)))
	}
}

// WriteBool writes a ZigBee boolean (0x00 / 0x01).
func (s *FieldSerializer) WriteBool(v bool) {
	if v {
		s.writeByte(1)
	} else {
		s.writeByte(0)
	}
}

// WriteBytes appends raw bytes without a length prefix.
func (s *FieldSerializer) WriteBytes(b []byte) {
	for _, octet := range b {
		s.writeByte(octet)
	}
}

// WriteString writes a character string with a 1-byte length prefix.
func (s *FieldSerializer) WriteString(v string) {
	if len(v) > 254 {
		if s.err == nil {
			s.err = fmt.Errorf("string too long: %d octets (max 254)", len(v))
		}
		return
	}
	s.writeByte(byte(len(v)))
	for i := 0; i < len(v); i++ {
		s.writeByte(v[i])
	}
}

// WriteKey writes a 16-octet security key.
func (s *FieldSerializer) WriteKey(key [16]byte) {
	s.WriteBytes(key[:])
}

// FieldDeserializer layers typed field decoding on a ByteReader. The first
// read error is sticky: subsequent reads return zero values and Err returns
// it.
type FieldDeserializer struct {
	r   ByteReader
	err error
}

// NewFieldDeserializer wraps a fresh ByteReader.
func NewFieldDeserializer(r ByteReader) *FieldDeserializer {
	return &FieldDeserializer{r: r}
}

// Err returns the first read error, if any.
func (d *FieldDeserializer) Err() error {
	return d.err
}

// Remaining returns the number of unread payload bytes.
func (d *FieldDeserializer) Remaining() int {
	return d.r.Remaining()
}

func (d *FieldDeserializer) readByte() byte {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	if err != nil {
		d.err = err
		return 0
	}
	return b
}

func (d *FieldDeserializer) ReadUint8() uint8 {
	return d.readByte()
}

func (d *FieldDeserializer) ReadInt8() int8 {
	return int8(d.readByte())
}

func (d *FieldDeserializer) ReadUint16() uint16 {
	lo := d.readByte()
	hi := d.readByte()
	return uint16(lo) | uint16(hi)<<8
}

func (d *FieldDeserializer) ReadInt16() int16 {
	return int16(d.ReadUint16())
}

func (d *FieldDeserializer) ReadUint32() uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(d.readByte()) << (8 * i)
	}
	return v
}

func (d *FieldDeserializer) ReadUint64() uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(d.readByte()) << (8 * i)
	}
	return v
}

func (d *FieldDeserializer) ReadBool() bool {
	return d.readByte() != 0
}

// ReadBytes reads exactly n raw bytes.
func (d *FieldDeserializer) ReadBytes(n int) []byte {
	b := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		b = append(b, d.readByte())
	}
	if d.err != nil {
		return nil
	}
	return b
}

// ReadString reads a character string with a 1-byte length prefix. A length
// of 0xFF denotes the invalid string and yields "".
func (d *FieldDeserializer) ReadString() string {
	length := d.readByte()
	if length == 0xFF || d.err != nil {
		return ""
	}
	b := d.ReadBytes(int(length))
	return string(b)
}
