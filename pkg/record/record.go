package record

import (
	"fmt"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

// Record is a positional vector of typed values matching a field.Header,
// plus a name→index map borrowed from the header for fast lookup. A
// freshly constructed Record is empty: every slot is unset until Set is
// called.
type Record struct {
	header *field.Header
	values []Value
	isSet  []bool
}

// New builds an empty record for h.
func New(h *field.Header) *Record {
	return &Record{
		header: h,
		values: make([]Value, h.Len()),
		isSet:  make([]bool, h.Len()),
	}
}

// Header returns the schema this record was built from.
func (r *Record) Header() *field.Header { return r.header }

// SetByIndex validates v against the field at position i and stores it.
func (r *Record) SetByIndex(i int, v Value) error {
	if i < 0 || i >= len(r.values) {
		return fmt.Errorf("%w: record field index %d out of range", engineerr.ErrInvalidValue, i)
	}
	t := r.header.Fields()[i].Type
	if err := v.matchesType(t); err != nil {
		return err
	}
	r.values[i] = v
	r.isSet[i] = true
	return nil
}

// Set validates v against the named field's declared type and stores it.
// It fails with ErrTypeMismatch if the variant does not match.
func (r *Record) Set(name string, v Value) error {
	i, ok := r.header.IndexOf(name)
	if !ok {
		return fmt.Errorf("%w: no such field %q", engineerr.ErrInvalidValue, name)
	}
	return r.SetByIndex(i, v)
}

// Get looks up a field by name. The second return is false if the field
// does not exist or has never been set.
func (r *Record) Get(name string) (Value, bool) {
	i, ok := r.header.IndexOf(name)
	if !ok {
		return Value{}, false
	}
	return r.GetByIndex(i)
}

// GetByIndex looks up a field by position.
func (r *Record) GetByIndex(i int) (Value, bool) {
	if i < 0 || i >= len(r.values) {
		return Value{}, false
	}
	return r.values[i], r.isSet[i]
}

// WriteTo serialises the record into buf in the header's declared field
// order. buf must be exactly header.RecordBytes() long. Unset fields
// serialise as their type's zero value.
func (r *Record) WriteTo(buf []byte) error {
	want := int(r.header.RecordBytes())
	if len(buf) != want {
		return fmt.Errorf("%w: record needs %d bytes, got %d", engineerr.ErrInvalidSize, want, len(buf))
	}

	off := 0
	for i, f := range r.header.Fields() {
		n := int(f.Type.Bytes())
		slot := buf[off : off+n]
		if err := writeValue(slot, f.Type, r.values[i], r.isSet[i]); err != nil {
			return err
		}
		off += n
	}
	return nil
}

// ReadFrom deserialises a record from buf per h's declared layout. buf
// must be exactly h.RecordBytes() long. Fails with ErrNoFields if h has
// no declared fields.
func ReadFrom(h *field.Header, buf []byte) (*Record, error) {
	if h.Len() == 0 {
		return nil, engineerr.ErrNoFields
	}
	want := int(h.RecordBytes())
	if len(buf) != want {
		return nil, fmt.Errorf("%w: record needs %d bytes, got %d", engineerr.ErrInvalidSize, want, len(buf))
	}

	r := New(h)
	off := 0
	for i, f := range h.Fields() {
		n := int(f.Type.Bytes())
		slot := buf[off : off+n]
		v, err := readValue(slot, f.Type)
		if err != nil {
			return nil, err
		}
		r.values[i] = v
		r.isSet[i] = true
		off += n
	}
	return r, nil
}

func writeValue(buf []byte, t field.Type, v Value, isSet bool) error {
	switch t.Tag {
	case field.TagBool:
		var b bool
		if isSet {
			b, _ = v.Bool()
		}
		return primitive.Bool(b).WriteAsBytes(buf)
	case field.TagI8:
		var n int64
		if isSet {
			n, _ = v.Int()
		}
		return primitive.WriteI8(buf, int8(n))
	case field.TagI16:
		var n int64
		if isSet {
			n, _ = v.Int()
		}
		return primitive.WriteI16(buf, int16(n))
	case field.TagI32:
		var n int64
		if isSet {
			n, _ = v.Int()
		}
		return primitive.WriteI32(buf, int32(n))
	case field.TagI64:
		var n int64
		if isSet {
			n, _ = v.Int()
		}
		return primitive.WriteI64(buf, n)
	case field.TagU8:
		var n uint64
		if isSet {
			n, _ = v.Uint()
		}
		return primitive.WriteU8(buf, uint8(n))
	case field.TagU16:
		var n uint64
		if isSet {
			n, _ = v.Uint()
		}
		return primitive.WriteU16(buf, uint16(n))
	case field.TagU32:
		var n uint64
		if isSet {
			n, _ = v.Uint()
		}
		return primitive.WriteU32(buf, uint32(n))
	case field.TagU64:
		var n uint64
		if isSet {
			n, _ = v.Uint()
		}
		return primitive.WriteU64(buf, n)
	case field.TagF32:
		var f float64
		if isSet {
			f, _ = v.Float()
		}
		return primitive.WriteF32(buf, float32(f))
	case field.TagF64:
		var f float64
		if isSet {
			f, _ = v.Float()
		}
		return primitive.WriteF64(buf, f)
	case field.TagStr:
		var s string
		if isSet {
			s, _ = v.Str()
		}
		return primitive.WriteStr(buf, t.StrCap, s)
	default:
		return fmt.Errorf("%w: unknown field tag %d", engineerr.ErrInvalidFormat, t.Tag)
	}
}

func readValue(buf []byte, t field.Type) (Value, error) {
	switch t.Tag {
	case field.TagBool:
		b, err := primitive.BoolFromByteSlice(buf)
		if err != nil {
			return Value{}, err
		}
		return NewBool(bool(b)), nil
	case field.TagI8:
		n, err := primitive.ReadI8(buf)
		return NewI8(n), err
	case field.TagI16:
		n, err := primitive.ReadI16(buf)
		return NewI16(n), err
	case field.TagI32:
		n, err := primitive.ReadI32(buf)
		return NewI32(n), err
	case field.TagI64:
		n, err := primitive.ReadI64(buf)
		return NewI64(n), err
	case field.TagU8:
		n, err := primitive.ReadU8(buf)
		return NewU8(n), err
	case field.TagU16:
		n, err := primitive.ReadU16(buf)
		return NewU16(n), err
	case field.TagU32:
		n, err := primitive.ReadU32(buf)
		return NewU32(n), err
	case field.TagU64:
		n, err := primitive.ReadU64(buf)
		return NewU64(n), err
	case field.TagF32:
		f, err := primitive.ReadF32(buf)
		return NewF32(f), err
	case field.TagF64:
		f, err := primitive.ReadF64(buf)
		return NewF64(f), err
	case field.TagStr:
		s, err := primitive.ReadStr(buf, t.StrCap)
		return NewStr(s), err
	default:
		return Value{}, fmt.Errorf("%w: unknown field tag %d", engineerr.ErrInvalidFormat, t.Tag)
	}
}
