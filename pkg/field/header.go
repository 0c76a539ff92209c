package field

import (
	"fmt"
	"io"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

// Header is an ordered list of Fields describing a record's fixed-width
// layout. Field order is declaration order; it is also serialisation
// order.
type Header struct {
	fields     []Field
	byName     map[string]int
	recordSize uint32
}

// NewHeader validates field names are unique and within the name-length
// cap, then computes and caches the record's total byte width.
func NewHeader(fields []Field) (*Header, error) {
	byName := make(map[string]int, len(fields))
	var total uint32

	for i, f := range fields {
		if len(f.Name) > MaxFieldNameBytes {
			return nil, fmt.Errorf("%w", engineerr.ErrFieldNameTooBig)
		}
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: %q", engineerr.ErrDuplicateField, f.Name)
		}
		byName[f.Name] = i
		total += f.Type.Bytes()
	}

	return &Header{fields: fields, byName: byName, recordSize: total}, nil
}

// Fields returns the declared fields in order. The slice is not a copy;
// callers must not mutate it.
func (h *Header) Fields() []Field { return h.fields }

// Len returns the number of declared fields.
func (h *Header) Len() int { return len(h.fields) }

// IndexOf returns the field's position, or false if no such field exists.
func (h *Header) IndexOf(name string) (int, bool) {
	i, ok := h.byName[name]
	return i, ok
}

// RecordBytes returns the fixed byte width of a record described by this
// header: sum of each field's type width (testable property 3).
func (h *Header) RecordBytes() uint32 { return h.recordSize }

// Equal reports whether two headers declare the same fields, in the same
// order, with the same types (join compatibility's schema check).
func (h *Header) Equal(other *Header) bool {
	if h.Len() != other.Len() {
		return false
	}
	for i, f := range h.fields {
		g := other.fields[i]
		if f.Name != g.Name || f.Type != g.Type {
			return false
		}
	}
	return true
}

// OnDiskBytes returns the serialised width of the header itself:
// <field_count:u32> followed by len(fields) * field.OnDiskBytes.
func (h *Header) OnDiskBytes() int {
	return 4 + len(h.fields)*OnDiskBytes
}

// WriteTo serialises the header to w.
func (h *Header) WriteTo(w io.Writer) error {
	buf := make([]byte, h.OnDiskBytes())
	if err := primitive.WriteU32(buf[0:4], uint32(len(h.fields))); err != nil {
		return err
	}

	off := 4
	for _, f := range h.fields {
		if err := f.WriteTo(buf[off : off+OnDiskBytes]); err != nil {
			return err
		}
		off += OnDiskBytes
	}

	_, err := w.Write(buf)
	return err
}

// ReadHeaderFrom deserialises a Header from r.
func ReadHeaderFrom(r io.Reader) (*Header, error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, err
	}

	count, err := primitive.ReadU32(countBuf[:])
	if err != nil {
		return nil, err
	}

	fields := make([]Field, 0, count)
	fieldBuf := make([]byte, OnDiskBytes)

	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, fieldBuf); err != nil {
			return nil, err
		}
		f, err := ReadFrom(fieldBuf)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return NewHeader(fields)
}
