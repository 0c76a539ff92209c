// Package record implements Record: a schema-typed row of values matching
// a field.Header, plus the Value variant type that carries one typed
// field's data in memory.
package record

import (
	"fmt"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
)

// Value holds exactly one of the twelve primitive variants. The zero
// Value is untyped and matches no field.Tag; use the NewX constructors.
type Value struct {
	tag field.Tag
	set bool

	b bool
	i int64
	u uint64
	f float64
	s string
}

func NewBool(v bool) Value { return Value{tag: field.TagBool, set: true, b: v} }
func NewI8(v int8) Value   { return Value{tag: field.TagI8, set: true, i: int64(v)} }
func NewI16(v int16) Value { return Value{tag: field.TagI16, set: true, i: int64(v)} }
func NewI32(v int32) Value { return Value{tag: field.TagI32, set: true, i: int64(v)} }
func NewI64(v int64) Value { return Value{tag: field.TagI64, set: true, i: v} }
func NewU8(v uint8) Value  { return Value{tag: field.TagU8, set: true, u: uint64(v)} }
func NewU16(v uint16) Value { return Value{tag: field.TagU16, set: true, u: uint64(v)} }
func NewU32(v uint32) Value { return Value{tag: field.TagU32, set: true, u: uint64(v)} }
func NewU64(v uint64) Value { return Value{tag: field.TagU64, set: true, u: v} }
func NewF32(v float32) Value { return Value{tag: field.TagF32, set: true, f: float64(v)} }
func NewF64(v float64) Value { return Value{tag: field.TagF64, set: true, f: v} }
func NewStr(v string) Value  { return Value{tag: field.TagStr, set: true, s: v} }

// Tag reports the variant carried by v.
func (v Value) Tag() field.Tag { return v.tag }

func (v Value) Bool() (bool, bool)       { return v.b, v.tag == field.TagBool }
func (v Value) Int() (int64, bool) {
	switch v.tag {
	case field.TagI8, field.TagI16, field.TagI32, field.TagI64:
		return v.i, true
	default:
		return 0, false
	}
}
func (v Value) Uint() (uint64, bool) {
	switch v.tag {
	case field.TagU8, field.TagU16, field.TagU32, field.TagU64:
		return v.u, true
	default:
		return 0, false
	}
}
func (v Value) Float() (float64, bool) {
	switch v.tag {
	case field.TagF32, field.TagF64:
		return v.f, true
	default:
		return 0, false
	}
}
func (v Value) Str() (string, bool) { return v.s, v.tag == field.TagStr }

// String renders v for logging/export; it never fails.
func (v Value) String() string {
	switch v.tag {
	case field.TagBool:
		return fmt.Sprintf("%t", v.b)
	case field.TagI8, field.TagI16, field.TagI32, field.TagI64:
		return fmt.Sprintf("%d", v.i)
	case field.TagU8, field.TagU16, field.TagU32, field.TagU64:
		return fmt.Sprintf("%d", v.u)
	case field.TagF32, field.TagF64:
		return fmt.Sprintf("%g", v.f)
	case field.TagStr:
		return v.s
	default:
		return ""
	}
}

// JSON renders v as a native Go value suitable for encoding/json: bool,
// int64, uint64, float64 or string depending on the carried variant, or
// nil for the zero Value. Used by export's JSON writer so record fields
// serialise as typed JSON values rather than strings.
func (v Value) JSON() any {
	switch v.tag {
	case field.TagBool:
		return v.b
	case field.TagI8, field.TagI16, field.TagI32, field.TagI64:
		return v.i
	case field.TagU8, field.TagU16, field.TagU32, field.TagU64:
		return v.u
	case field.TagF32, field.TagF64:
		return v.f
	case field.TagStr:
		return v.s
	default:
		return nil
	}
}

// matchesType reports whether v is a valid value for t, including the
// Str capacity check.
func (v Value) matchesType(t field.Type) error {
	if v.tag != t.Tag {
		return fmt.Errorf("%w: expected %s, got %s", engineerr.ErrTypeMismatch, t.Tag, v.tag)
	}
	if t.Tag == field.TagStr && uint32(len(v.s)) > t.StrCap {
		return fmt.Errorf("%w: str value exceeds cap %d", engineerr.ErrInvalidValue, t.StrCap)
	}
	return nil
}
