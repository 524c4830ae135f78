package protocol

import (
	"encoding/binary"

	ferrors "git.home.luguber.info/inful/wristrelay/internal/foundation/errors"
)

// ValueType tags the payload of a dictionary tuple.
type ValueType uint8

const (
	TypeBytes   ValueType = 0
	TypeCString ValueType = 1
	TypeUint    ValueType = 2
	TypeInt     ValueType = 3
)

// MaxMessageSize is the largest encoded dictionary the channel carries.
const MaxMessageSize = 512

// tupleHeaderLen is key (4) + type (1) + length (2).
const tupleHeaderLen = 7

// Tuple is one keyed value of a dictionary.
type Tuple struct {
	Key  uint32
	Type ValueType
	Data []byte
}

// Dictionary is the ordered key/value container every message travels in.
//
// Wire form: one byte tuple count, then per tuple a little-endian uint32 key,
// a type byte, a little-endian uint16 length and the value bytes. Integers are
// stored little-endian in 1, 2 or 4 bytes; C strings carry a trailing NUL.
type Dictionary struct {
	tuples []Tuple
}

func (d *Dictionary) Len() int { return len(d.tuples) }

// Tuples returns the tuples in insertion order.
func (d *Dictionary) Tuples() []Tuple { return d.tuples }

func (d *Dictionary) put(key uint32, typ ValueType, data []byte) *Dictionary {
	for i := range d.tuples {
		if d.tuples[i].Key == key {
			d.tuples[i] = Tuple{Key: key, Type: typ, Data: data}
			return d
		}
	}
	d.tuples = append(d.tuples, Tuple{Key: key, Type: typ, Data: data})
	return d
}

func (d *Dictionary) PutUint8(key uint32, v uint8) *Dictionary {
	return d.put(key, TypeUint, []byte{v})
}

func (d *Dictionary) PutInt8(key uint32, v int8) *Dictionary {
	return d.put(key, TypeInt, []byte{byte(v)})
}

func (d *Dictionary) PutInt32(key uint32, v int32) *Dictionary {
	return d.put(key, TypeInt, binary.LittleEndian.AppendUint32(nil, uint32(v)))
}

func (d *Dictionary) PutCString(key uint32, s string) *Dictionary {
	data := make([]byte, 0, len(s)+1)
	data = append(data, s...)
	return d.put(key, TypeCString, append(data, 0))
}

func (d *Dictionary) PutBytes(key uint32, b []byte) *Dictionary {
	return d.put(key, TypeBytes, append([]byte(nil), b...))
}

// Find returns the tuple stored under key.
func (d *Dictionary) Find(key uint32) (Tuple, bool) {
	for _, t := range d.tuples {
		if t.Key == key {
			return t, true
		}
	}
	return Tuple{}, false
}

// Uint returns an unsigned integer of any stored width.
func (d *Dictionary) Uint(key uint32) (uint32, bool) {
	t, ok := d.Find(key)
	if !ok || (t.Type != TypeUint && t.Type != TypeInt) {
		return 0, false
	}
	switch len(t.Data) {
	case 1:
		return uint32(t.Data[0]), true
	case 2:
		return uint32(binary.LittleEndian.Uint16(t.Data)), true
	case 4:
		return binary.LittleEndian.Uint32(t.Data), true
	}
	return 0, false
}

// Int returns a signed integer of any stored width, sign-extended.
func (d *Dictionary) Int(key uint32) (int32, bool) {
	t, ok := d.Find(key)
	if !ok || (t.Type != TypeUint && t.Type != TypeInt) {
		return 0, false
	}
	switch len(t.Data) {
	case 1:
		return int32(int8(t.Data[0])), true
	case 2:
		return int32(int16(binary.LittleEndian.Uint16(t.Data))), true
	case 4:
		return int32(binary.LittleEndian.Uint32(t.Data)), true
	}
	return 0, false
}

func (d *Dictionary) Uint8(key uint32) (uint8, bool) {
	v, ok := d.Uint(key)
	return uint8(v), ok
}

// CString returns the string stored under key, up to the first NUL.
func (d *Dictionary) CString(key uint32) (string, bool) {
	t, ok := d.Find(key)
	if !ok || t.Type != TypeCString {
		return "", false
	}
	for i, b := range t.Data {
		if b == 0 {
			return string(t.Data[:i]), true
		}
	}
	return string(t.Data), true
}

func (d *Dictionary) Bytes(key uint32) ([]byte, bool) {
	t, ok := d.Find(key)
	if !ok || t.Type != TypeBytes {
		return nil, false
	}
	return t.Data, true
}

// MarshalBinary encodes the dictionary in wire form.
func (d *Dictionary) MarshalBinary() ([]byte, error) {
	if len(d.tuples) > 255 {
		return nil, ErrTooManyTuples
	}
	size := 1
	for _, t := range d.tuples {
		size += tupleHeaderLen + len(t.Data)
	}
	if size > MaxMessageSize {
		return nil, ErrMessageTooLarge.WithContext("size", size)
	}

	out := make([]byte, 0, size)
	out = append(out, byte(len(d.tuples)))
	for _, t := range d.tuples {
		out = binary.LittleEndian.AppendUint32(out, t.Key)
		out = append(out, byte(t.Type))
		out = binary.LittleEndian.AppendUint16(out, uint16(len(t.Data)))
		out = append(out, t.Data...)
	}
	return out, nil
}

// UnmarshalBinary decodes wire form into d, replacing its contents.
func (d *Dictionary) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return ErrTruncated
	}
	n := int(data[0])
	rest := data[1:]
	tuples := make([]Tuple, 0, n)
	for i := 0; i < n; i++ {
		if len(rest) < tupleHeaderLen {
			return ErrTruncated.WithContext("tuple", i)
		}
		key := binary.LittleEndian.Uint32(rest)
		typ := ValueType(rest[4])
		length := int(binary.LittleEndian.Uint16(rest[5:]))
		rest = rest[tupleHeaderLen:]
		if len(rest) < length {
			return ErrTruncated.WithContext("tuple", i)
		}
		if typ > TypeInt {
			return ErrUnknownValueType.WithContext("type", int(typ))
		}
		tuples = append(tuples, Tuple{Key: key, Type: typ, Data: append([]byte(nil), rest[:length]...)})
		rest = rest[length:]
	}
	if len(rest) != 0 {
		return ferrors.ProtocolError("trailing bytes after dictionary").WithContext("trailing", len(rest)).Build()
	}
	d.tuples = tuples
	return nil
}
