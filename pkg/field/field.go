// Package field implements the table schema: typed field declarations and
// the RecordHeader that describes a fixed-width record layout.
package field

import (
	"fmt"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

// Tag identifies a field's on-disk type. Values match spec.md §6.1's
// type_tag enumeration exactly, so Tag(b) from a stored byte is valid
// without translation.
type Tag byte

const (
	TagBool Tag = 1
	TagI8   Tag = 2
	TagI16  Tag = 3
	TagI32  Tag = 4
	TagI64  Tag = 5
	TagU8   Tag = 6
	TagU16  Tag = 7
	TagU32  Tag = 8
	TagU64  Tag = 9
	TagF32  Tag = 10
	TagF64  Tag = 11
	TagStr  Tag = 12
)

func (t Tag) valid() bool {
	return t >= TagBool && t <= TagStr
}

func (t Tag) String() string {
	switch t {
	case TagBool:
		return "bool"
	case TagI8:
		return "i8"
	case TagI16:
		return "i16"
	case TagI32:
		return "i32"
	case TagI64:
		return "i64"
	case TagU8:
		return "u8"
	case TagU16:
		return "u16"
	case TagU32:
		return "u32"
	case TagU64:
		return "u64"
	case TagF32:
		return "f32"
	case TagF64:
		return "f64"
	case TagStr:
		return "str"
	default:
		return fmt.Sprintf("Tag(%d)", byte(t))
	}
}

// Type is a field's declared type. StrCap is only meaningful when
// Tag == TagStr; it is the type_arg of spec.md §6.1.
type Type struct {
	Tag    Tag
	StrCap uint32
}

// Bool, I8, ... are convenience constructors for non-parameterised types.
var (
	Bool = Type{Tag: TagBool}
	I8   = Type{Tag: TagI8}
	I16  = Type{Tag: TagI16}
	I32  = Type{Tag: TagI32}
	I64  = Type{Tag: TagI64}
	U8   = Type{Tag: TagU8}
	U16  = Type{Tag: TagU16}
	U32  = Type{Tag: TagU32}
	U64  = Type{Tag: TagU64}
	F32  = Type{Tag: TagF32}
	F64  = Type{Tag: TagF64}
)

// Str builds a Str(cap) type with the given byte cap.
func Str(cap uint32) Type {
	return Type{Tag: TagStr, StrCap: cap}
}

// Bytes returns the fixed on-disk width of a value of this type.
func (t Type) Bytes() uint32 {
	switch t.Tag {
	case TagBool, TagI8, TagU8:
		return 1
	case TagI16, TagU16:
		return 2
	case TagI32, TagU32, TagF32:
		return 4
	case TagI64, TagU64, TagF64:
		return 8
	case TagStr:
		return primitive.U64Bytes + t.StrCap
	default:
		return 0
	}
}

// MaxFieldNameBytes is the UTF-8 byte cap on a field name (invariant from
// spec.md §3).
const MaxFieldNameBytes = 50

// OnDiskBytes is the serialised width of one Field: name_len(4) +
// name[50] + type_tag(1) + type_arg(4).
const OnDiskBytes = 4 + MaxFieldNameBytes + 1 + 4

// Field pairs a name with its declared type.
type Field struct {
	Name string
	Type Type
}

// New validates name length and returns a Field.
func New(name string, t Type) (Field, error) {
	if len(name) > MaxFieldNameBytes {
		return Field{}, fmt.Errorf("%w", engineerr.ErrFieldNameTooBig)
	}
	if !t.Tag.valid() {
		return Field{}, fmt.Errorf("%w: tag %d", engineerr.ErrInvalidValue, t.Tag)
	}
	return Field{Name: name, Type: t}, nil
}

// WriteTo serialises the field into the fixed 59-byte on-disk layout.
func (f Field) WriteTo(buf []byte) error {
	if len(buf) < OnDiskBytes {
		return fmt.Errorf("%w: field needs %d bytes, got %d", engineerr.ErrInvalidSize, OnDiskBytes, len(buf))
	}
	if err := primitive.WriteU32(buf[0:4], uint32(len(f.Name))); err != nil {
		return err
	}
	nameSlot := buf[4 : 4+MaxFieldNameBytes]
	for i := range nameSlot {
		nameSlot[i] = 0
	}
	copy(nameSlot, f.Name)

	buf[4+MaxFieldNameBytes] = byte(f.Type.Tag)
	return primitive.WriteU32(buf[4+MaxFieldNameBytes+1:4+MaxFieldNameBytes+1+4], f.Type.StrCap)
}

// ReadFrom deserialises a Field from its fixed 59-byte on-disk layout.
func ReadFrom(buf []byte) (Field, error) {
	if len(buf) != OnDiskBytes {
		return Field{}, fmt.Errorf("%w: field needs %d bytes, got %d", engineerr.ErrInvalidSize, OnDiskBytes, len(buf))
	}

	nameLen, err := primitive.ReadU32(buf[0:4])
	if err != nil {
		return Field{}, err
	}
	if nameLen > MaxFieldNameBytes {
		return Field{}, fmt.Errorf("%w: stored name length %d exceeds cap", engineerr.ErrInvalidFormat, nameLen)
	}

	nameSlot := buf[4 : 4+MaxFieldNameBytes]
	name := string(nameSlot[:nameLen])

	tag := Tag(buf[4+MaxFieldNameBytes])
	if !tag.valid() {
		return Field{}, fmt.Errorf("%w: field type tag %d", engineerr.ErrInvalidFormat, tag)
	}

	arg, err := primitive.ReadU32(buf[4+MaxFieldNameBytes+1 : 4+MaxFieldNameBytes+1+4])
	if err != nil {
		return Field{}, err
	}

	return Field{Name: name, Type: Type{Tag: tag, StrCap: arg}}, nil
}
