package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
)

// parseSchema builds a field.Header from repeated "name:type[:cap]"
// flag values, e.g. "color:str:16" or "age:u8".
func parseSchema(specs []string) (*field.Header, error) {
	fields := make([]field.Field, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid --field %q, want name:type[:cap]", spec)
		}

		t, err := parseType(parts[1], parts[2:])
		if err != nil {
			return nil, fmt.Errorf("--field %q: %w", spec, err)
		}

		f, err := field.New(parts[0], t)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return field.NewHeader(fields)
}

func parseType(name string, rest []string) (field.Type, error) {
	switch strings.ToLower(name) {
	case "bool":
		return field.Bool, nil
	case "i8":
		return field.I8, nil
	case "i16":
		return field.I16, nil
	case "i32":
		return field.I32, nil
	case "i64":
		return field.I64, nil
	case "u8":
		return field.U8, nil
	case "u16":
		return field.U16, nil
	case "u32":
		return field.U32, nil
	case "u64":
		return field.U64, nil
	case "f32":
		return field.F32, nil
	case "f64":
		return field.F64, nil
	case "str":
		if len(rest) == 0 {
			return field.Type{}, fmt.Errorf("str type requires a cap, e.g. str:16")
		}
		cap, err := strconv.ParseUint(rest[0], 10, 32)
		if err != nil {
			return field.Type{}, fmt.Errorf("invalid str cap %q: %w", rest[0], err)
		}
		return field.Str(uint32(cap)), nil
	default:
		return field.Type{}, fmt.Errorf("unknown field type %q", name)
	}
}

// parseValue parses a raw flag-provided string into a record.Value typed
// per the schema field named by name.
func parseValue(h *field.Header, name, raw string) (record.Value, error) {
	i, ok := h.IndexOf(name)
	if !ok {
		return record.Value{}, fmt.Errorf("no such field %q", name)
	}
	t := h.Fields()[i].Type

	switch t.Tag.String() {
	case "bool":
		b, err := strconv.ParseBool(raw)
		return record.NewBool(b), err
	case "i8":
		n, err := strconv.ParseInt(raw, 10, 8)
		return record.NewI8(int8(n)), err
	case "i16":
		n, err := strconv.ParseInt(raw, 10, 16)
		return record.NewI16(int16(n)), err
	case "i32":
		n, err := strconv.ParseInt(raw, 10, 32)
		return record.NewI32(int32(n)), err
	case "i64":
		n, err := strconv.ParseInt(raw, 10, 64)
		return record.NewI64(n), err
	case "u8":
		n, err := strconv.ParseUint(raw, 10, 8)
		return record.NewU8(uint8(n)), err
	case "u16":
		n, err := strconv.ParseUint(raw, 10, 16)
		return record.NewU16(uint16(n)), err
	case "u32":
		n, err := strconv.ParseUint(raw, 10, 32)
		return record.NewU32(uint32(n)), err
	case "u64":
		n, err := strconv.ParseUint(raw, 10, 64)
		return record.NewU64(n), err
	case "f32":
		f, err := strconv.ParseFloat(raw, 32)
		return record.NewF32(float32(f)), err
	case "f64":
		f, err := strconv.ParseFloat(raw, 64)
		return record.NewF64(f), err
	case "str":
		return record.NewStr(raw), nil
	default:
		return record.Value{}, fmt.Errorf("unsupported field type %q", t.Tag)
	}
}
