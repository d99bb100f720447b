// Package encoding implements marshal/unmarshal of the AMQP 0-9-1 primitive
// field types against an internal/buffer.Buffer, the same style the teacher
// uses for its AMQP 1.0 primitives in types.go (marshal(wr *buffer.Buffer),
// unmarshal(r *buffer.Buffer)) generalized to the 0-9-1 value set: octet,
// short, long, longlong, shortstr, longstr, bit, table, timestamp, decimal.
package encoding

import (
	"fmt"
	"math"
	"time"

	"github.com/wirebroker/amqp/internal/buffer"
)

// Decimal is an AMQP 0-9-1 decimal-value: value * 10^(-scale).
type Decimal struct {
	Scale uint8
	Value int32
}

// Table is an AMQP field-table: an ordered-on-the-wire, map-shaped bag of
// named values. Nested Tables, []interface{} arrays, Decimal, time.Time,
// []byte, and the Go primitive numeric/string/bool types are all legal
// values, matching the field-value type codes in WriteFieldValue.
type Table map[string]interface{}

// WriteShortString writes a short-string: 1-byte length prefix + bytes.
func WriteShortString(w *buffer.Buffer, s string) error {
	if len(s) > 255 {
		return fmt.Errorf("encoding: short string exceeds 255 bytes: %d", len(s))
	}
	w.AppendUint8(uint8(len(s)))
	_, err := w.Write([]byte(s))
	return err
}

// ReadShortString reads a short-string.
func ReadShortString(r *buffer.Buffer) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b, err := r.Next(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteLongString writes a long-string: 4-byte length prefix + bytes.
func WriteLongString(w *buffer.Buffer, s []byte) error {
	w.AppendUint32(uint32(len(s)))
	_, err := w.Write(s)
	return err
}

// ReadLongString reads a long-string.
func ReadLongString(r *buffer.Buffer) ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	return r.Next(int(n))
}

// WriteTimestamp writes a 64-bit unix-seconds timestamp.
func WriteTimestamp(w *buffer.Buffer, t time.Time) {
	w.AppendUint64(uint64(t.Unix()))
}

// ReadTimestamp reads a 64-bit unix-seconds timestamp.
func ReadTimestamp(r *buffer.Buffer) (time.Time, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(v), 0).UTC(), nil
}

// WriteDecimal writes a decimal-value: 1-byte scale, 4-byte signed value.
func WriteDecimal(w *buffer.Buffer, d Decimal) {
	w.AppendUint8(d.Scale)
	w.AppendUint32(uint32(d.Value))
}

// ReadDecimal reads a decimal-value.
func ReadDecimal(r *buffer.Buffer) (Decimal, error) {
	scale, err := r.ReadByte()
	if err != nil {
		return Decimal{}, err
	}
	v, err := r.ReadUint32()
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Scale: scale, Value: int32(v)}, nil
}

// field-value type tags, per the AMQP 0-9-1 field-table grammar.
const (
	tagBoolean   = 't'
	tagShortShortInt  = 'b'
	tagShortShortUint = 'B'
	tagShortInt  = 'U'
	tagShortUint = 'u'
	tagLongInt   = 'I'
	tagLongUint  = 'i'
	tagLongLongInt  = 'L'
	tagLongLongUint = 'l'
	tagFloat     = 'f'
	tagDouble    = 'd'
	tagDecimal   = 'D'
	tagShortStr  = 's'
	tagLongStr   = 'S'
	tagFieldArray = 'A'
	tagTimestamp = 'T'
	tagFieldTable = 'F'
	tagVoid      = 'V'
	tagByteArray = 'x'
)

// WriteTable encodes a field-table: 4-byte byte-length prefix followed by
// a sequence of (short-string name, typed field-value) pairs.
func WriteTable(w *buffer.Buffer, t Table) error {
	inner := buffer.New(nil)
	for k, v := range t {
		if err := WriteShortString(inner, k); err != nil {
			return err
		}
		if err := WriteFieldValue(inner, v); err != nil {
			return err
		}
	}
	w.AppendUint32(uint32(inner.Len()))
	_, err := w.Write(inner.Bytes())
	return err
}

// ReadTable decodes a field-table.
func ReadTable(r *buffer.Buffer) (Table, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	body, err := r.Next(int(n))
	if err != nil {
		return nil, err
	}
	inner := buffer.New(body)
	out := Table{}
	for inner.Len() > 0 {
		key, err := ReadShortString(inner)
		if err != nil {
			return nil, err
		}
		val, err := ReadFieldValue(inner)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

// WriteFieldArray encodes a field-array: 4-byte byte-length prefix followed
// by a sequence of typed field-values with no names.
func WriteFieldArray(w *buffer.Buffer, arr []interface{}) error {
	inner := buffer.New(nil)
	for _, v := range arr {
		if err := WriteFieldValue(inner, v); err != nil {
			return err
		}
	}
	w.AppendUint32(uint32(inner.Len()))
	_, err := w.Write(inner.Bytes())
	return err
}

// ReadFieldArray decodes a field-array.
func ReadFieldArray(r *buffer.Buffer) ([]interface{}, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	body, err := r.Next(int(n))
	if err != nil {
		return nil, err
	}
	inner := buffer.New(body)
	var out []interface{}
	for inner.Len() > 0 {
		v, err := ReadFieldValue(inner)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// WriteFieldValue encodes a single tagged field-value.
func WriteFieldValue(w *buffer.Buffer, v interface{}) error {
	switch val := v.(type) {
	case nil:
		w.AppendUint8(tagVoid)
	case bool:
		w.AppendUint8(tagBoolean)
		if val {
			w.AppendUint8(1)
		} else {
			w.AppendUint8(0)
		}
	case int8:
		w.AppendUint8(tagShortShortInt)
		w.AppendUint8(uint8(val))
	case uint8:
		w.AppendUint8(tagShortShortUint)
		w.AppendUint8(val)
	case int16:
		w.AppendUint8(tagShortInt)
		w.AppendUint16(uint16(val))
	case uint16:
		w.AppendUint8(tagShortUint)
		w.AppendUint16(val)
	case int32:
		w.AppendUint8(tagLongInt)
		w.AppendUint32(uint32(val))
	case uint32:
		w.AppendUint8(tagLongUint)
		w.AppendUint32(val)
	case int64:
		w.AppendUint8(tagLongLongInt)
		w.AppendUint64(uint64(val))
	case uint64:
		w.AppendUint8(tagLongLongUint)
		w.AppendUint64(val)
	case int:
		w.AppendUint8(tagLongLongInt)
		w.AppendUint64(uint64(val))
	case float32:
		w.AppendUint8(tagFloat)
		w.AppendUint32(math.Float32bits(val))
	case float64:
		w.AppendUint8(tagDouble)
		w.AppendUint64(math.Float64bits(val))
	case Decimal:
		w.AppendUint8(tagDecimal)
		WriteDecimal(w, val)
	case string:
		w.AppendUint8(tagLongStr)
		return WriteLongString(w, []byte(val))
	case []byte:
		w.AppendUint8(tagByteArray)
		return WriteLongString(w, val)
	case time.Time:
		w.AppendUint8(tagTimestamp)
		WriteTimestamp(w, val)
	case Table:
		w.AppendUint8(tagFieldTable)
		return WriteTable(w, val)
	case []interface{}:
		w.AppendUint8(tagFieldArray)
		return WriteFieldArray(w, val)
	default:
		return fmt.Errorf("encoding: unsupported field-value type %T", v)
	}
	return nil
}

// ReadFieldValue decodes a single tagged field-value.
func ReadFieldValue(r *buffer.Buffer) (interface{}, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagBoolean:
		b, err := r.ReadByte()
		return b != 0, err
	case tagShortShortInt:
		b, err := r.ReadByte()
		return int8(b), err
	case tagShortShortUint:
		return r.ReadByte()
	case tagShortInt:
		v, err := r.ReadUint16()
		return int16(v), err
	case tagShortUint:
		return r.ReadUint16()
	case tagLongInt:
		v, err := r.ReadUint32()
		return int32(v), err
	case tagLongUint:
		return r.ReadUint32()
	case tagLongLongInt:
		v, err := r.ReadUint64()
		return int64(v), err
	case tagLongLongUint:
		return r.ReadUint64()
	case tagFloat:
		v, err := r.ReadUint32()
		return math.Float32frombits(v), err
	case tagDouble:
		v, err := r.ReadUint64()
		return math.Float64frombits(v), err
	case tagDecimal:
		return ReadDecimal(r)
	case tagShortStr:
		return ReadShortString(r)
	case tagLongStr:
		b, err := ReadLongString(r)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case tagByteArray:
		return ReadLongString(r)
	case tagTimestamp:
		return ReadTimestamp(r)
	case tagFieldTable:
		return ReadTable(r)
	case tagFieldArray:
		return ReadFieldArray(r)
	case tagVoid:
		return nil, nil
	default:
		return nil, fmt.Errorf("encoding: unknown field-value tag 0x%02x", tag)
	}
}
