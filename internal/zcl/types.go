package zcl

import (
	"fmt"
	"math"

	"zigbee-host/internal/serialization"
)

// DataType is a ZCL attribute data type id.
type DataType uint8

const (
	TypeNoData    DataType = 0x00
	TypeBool      DataType = 0x10
	TypeBitmap8   DataType = 0x18
	TypeBitmap16  DataType = 0x19
	TypeBitmap24  DataType = 0x1A
	TypeBitmap32  DataType = 0x1B
	TypeUint8     DataType = 0x20
	TypeUint16    DataType = 0x21
	TypeUint24    DataType = 0x22
	TypeUint32    DataType = 0x23
	TypeUint40    DataType = 0x24
	TypeUint48    DataType = 0x25
	TypeInt8      DataType = 0x28
	TypeInt16     DataType = 0x29
	TypeInt24     DataType = 0x2A
	TypeInt32     DataType = 0x2B
	TypeEnum8     DataType = 0x30
	TypeEnum16    DataType = 0x31
	TypeFloat16   DataType = 0x38
	TypeFloat32   DataType = 0x39
	TypeFloat64   DataType = 0x3A
	TypeOctetStr  DataType = 0x41
	TypeCharStr   DataType = 0x42
	TypeTimeOfDay DataType = 0xE0
	TypeDate      DataType = 0xE1
	TypeUTCTime   DataType = 0xE2
	TypeClusterID DataType = 0xE8
	TypeAttrID    DataType = 0xE9
	TypeIEEE      DataType = 0xF0
)

var typeNames = map[DataType]string{
	TypeNoData:    "nodata",
	TypeBool:      "bool",
	TypeBitmap8:   "map8",
	TypeBitmap16:  "map16",
	TypeBitmap24:  "map24",
	TypeBitmap32:  "map32",
	TypeUint8:     "uint8",
	TypeUint16:    "uint16",
	TypeUint24:    "uint24",
	TypeUint32:    "uint32",
	TypeUint40:    "uint40",
	TypeUint48:    "uint48",
	TypeInt8:      "int8",
	TypeInt16:     "int16",
	TypeInt24:     "int24",
	TypeInt32:     "int32",
	TypeEnum8:     "enum8",
	TypeEnum16:    "enum16",
	TypeFloat16:   "float16",
	TypeFloat32:   "float32",
	TypeFloat64:   "float64",
	TypeOctetStr:  "octstr",
	TypeCharStr:   "string",
	TypeTimeOfDay: "ToD",
	TypeDate:      "date",
	TypeUTCTime:   "UTC",
	TypeClusterID: "clusterId",
	TypeAttrID:    "attribId",
	TypeIEEE:      "EUI64",
}

func (t DataType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(t))
}

// Size returns the fixed octet count of the type, or -1 for variable-length
// types (which carry a 1-byte length prefix).
func (t DataType) Size() int {
	switch t {
	case TypeNoData:
		return 0
	case TypeBool, TypeBitmap8, TypeUint8, TypeInt8, TypeEnum8:
		return 1
	case TypeBitmap16, TypeUint16, TypeInt16, TypeEnum16, TypeFloat16, TypeClusterID, TypeAttrID:
		return 2
	case TypeBitmap24, TypeUint24, TypeInt24:
		return 3
	case TypeBitmap32, TypeUint32, TypeInt32, TypeFloat32, TypeTimeOfDay, TypeDate, TypeUTCTime:
		return 4
	case TypeUint40:
		return 5
	case TypeUint48:
		return 6
	case TypeFloat64, TypeIEEE:
		return 8
	default:
		return -1
	}
}

// Analog reports whether the type is analog per the ZCL; analog attributes
// carry a reportable-change field in reporting configuration records.
func (t DataType) Analog() bool {
	switch {
	case t >= TypeUint8 && t <= TypeUint48:
		return true
	case t >= TypeInt8 && t <= TypeInt32:
		return true
	case t == TypeFloat16 || t == TypeFloat32 || t == TypeFloat64:
		return true
	case t == TypeTimeOfDay || t == TypeDate || t == TypeUTCTime:
		return true
	default:
		return false
	}
}

// WriteValue encodes a Go value as the given ZCL type onto the field
// serializer.
func WriteValue(s *serialization.FieldSerializer, t DataType, v any) error {
	switch t {
	case TypeNoData:
		return nil

	case TypeBool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("zcl: cannot encode %T as %s", v, t)
		}
		s.WriteBool(b)

	case TypeBitmap8, TypeUint8, TypeEnum8:
		u, ok := toUint64(v)
		if !ok || u > math.MaxUint8 {
			return fmt.Errorf("zcl: cannot encode %v (%T) as %s", v, v, t)
		}
		s.WriteUint8(uint8(u))

	case TypeBitmap16, TypeUint16, TypeEnum16, TypeClusterID, TypeAttrID, TypeFloat16:
		u, ok := toUint64(v)
		if !ok || u > math.MaxUint16 {
			return fmt.Errorf("zcl: cannot encode %v (%T) as %s", v, v, t)
		}
		s.WriteUint16(uint16(u))

	case TypeBitmap24, TypeUint24:
		u, ok := toUint64(v)
		if !ok || u > 0xFFFFFF {
			return fmt.Errorf("zcl: cannot encode %v (%T) as %s", v, v, t)
		}
		s.WriteUint8(uint8(u))
		s.WriteUint8(uint8(u >> 8))
		s.WriteUint8(uint8(u >> 16))

	case TypeBitmap32, TypeUint32, TypeTimeOfDay, TypeDate, TypeUTCTime:
		u, ok := toUint64(v)
		if !ok || u > math.MaxUint32 {
			return fmt.Errorf("zcl: cannot encode %v (%T) as %s", v, v, t)
		}
		s.WriteUint32(uint32(u))

	case TypeUint40, TypeUint48:
		u, ok := toUint64(v)
		if !ok || u >= uint64(1)<<(8*t.Size()) {
			return fmt.Errorf("zcl: cannot encode %v (%T) as %s", v, v, t)
		}
		for i := 0; i < t.Size(); i++ {
			s.WriteUint8(uint8(u >> (8 * i)))
		}

	case TypeInt8:
		i, ok := toInt64(v)
		if !ok || i < math.MinInt8 || i > math.MaxInt8 {
			return fmt.Errorf("zcl: cannot encode %v (%T) as %s", v, v, t)
		}
		s.WriteInt8(int8(i))

	case TypeInt16:
		i, ok := toInt64(v)
		if !ok || i < math.MinInt16 || i > math.MaxInt16 {
			return fmt.Errorf("zcl: cannot encode %v (%T) as %s", v, v, t)
		}
		s.WriteInt16(int16(i))

	case TypeInt24:
		i, ok := toInt64(v)
		if !ok || i < -(1<<23) || i > (1<<23)-1 {
			return fmt.Errorf("zcl: cannot encode %v (%T) as %s", v, v, t)
		}
		u := uint32(int32(i))
		s.WriteUint8(uint8(u))
		s.WriteUint8(uint8(u >> 8))
		s.WriteUint8(uint8(u >> 16))

	case TypeInt32:
		i, ok := toInt64(v)
		if !ok || i < math.MinInt32 || i > math.MaxInt32 {
			return fmt.Errorf("zcl: cannot encode %v (%T) as %s", v, v, t)
		}
		s.WriteUint32(uint32(int32(i)))

	case TypeFloat32:
		f, ok := toFloat64(v)
		if !ok {
			return fmt.Errorf("zcl: cannot encode %T as %s", v, t)
		}
		s.WriteUint32(math.Float32bits(float32(f)))

	case TypeFloat64:
		f, ok := toFloat64(v)
		if !ok {
			return fmt.Errorf("zcl: cannot encode %T as %s", v, t)
		}
		s.WriteUint64(math.Float64bits(f))

	case TypeOctetStr:
		b, ok := v.([]byte)
		if !ok || len(b) > 254 {
			return fmt.Errorf("zcl: cannot encode %T as %s", v, t)
		}
		s.WriteUint8(uint8(len(b)))
		s.WriteBytes(b)

	case TypeCharStr:
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("zcl: cannot encode %T as %s", v, t)
		}
		s.WriteString(str)

	case TypeIEEE:
		u, ok := toUint64(v)
		if !ok {
			return fmt.Errorf("zcl: cannot encode %T as %s", v, t)
		}
		s.WriteUint64(u)

	default:
		return fmt.Errorf("zcl: encode not implemented for type %s", t)
	}
	return s.Err()
}

// ReadValue decodes a ZCL typed value from the field deserializer.
func ReadValue(d *serialization.FieldDeserializer, t DataType) (any, error) {
	var v any
	switch t {
	case TypeNoData:
		return nil, nil
	case TypeBool:
		v = d.ReadBool()
	case TypeBitmap8, TypeUint8, TypeEnum8:
		v = d.ReadUint8()
	case TypeBitmap16, TypeUint16, TypeEnum16, TypeClusterID, TypeAttrID, TypeFloat16:
		v = d.ReadUint16()
	case TypeBitmap24, TypeUint24:
		v = uint32(d.ReadUint8()) | uint32(d.ReadUint8())<<8 | uint32(d.ReadUint8())<<16
	case TypeBitmap32, TypeUint32, TypeTimeOfDay, TypeDate, TypeUTCTime:
		v = d.ReadUint32()
	case TypeUint40, TypeUint48:
		var u uint64
		for i := 0; i < t.Size(); i++ {
			u |= uint64(d.ReadUint8()) << (8 * i)
		}
		v = u
	case TypeInt8:
		v = d.ReadInt8()
	case TypeInt16:
		v = d.ReadInt16()
	case TypeInt24:
		u := uint32(d.ReadUint8()) | uint32(d.ReadUint8())<<8 | uint32(d.ReadUint8())<<16
		if u&0x800000 != 0 {
			u |= 0xFF000000 // sign extend
		}
		v = int32(u)
	case TypeInt32:
		v = int32(d.ReadUint32())
	case TypeFloat32:
		v = math.Float32frombits(d.ReadUint32())
	case TypeFloat64:
		v = math.Float64frombits(d.ReadUint64())
	case TypeOctetStr:
		length := d.ReadUint8()
		if length == 0xFF {
			v = []byte(nil)
		} else {
			v = d.ReadBytes(int(length))
		}
	case TypeCharStr:
		v = d.ReadString()
	case TypeIEEE:
		v = d.ReadUint64()
	default:
		return nil, fmt.Errorf("zcl: decode not implemented for type %s", t)
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("zcl: decode %s: %w", t, err)
	}
	return v, nil
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
