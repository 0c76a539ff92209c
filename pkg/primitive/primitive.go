// Package primitive implements the fixed-width on-disk encodings shared by
// every higher-level format in this repository (table records, index
// values, headers). Every type here has a compile-time byte width and
// round-trips through its write/read helpers (WriteX/ReadX, and
// WriteAsBytes/...FromByteSlice for Bool and Status) over a
// caller-supplied buffer.
//
// All multi-byte integers are big-endian on disk.
package primitive

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
)

// Primitive is implemented by every fixed-width on-disk value in this
// package. BYTES() reports the exact width WriteAsBytes will use.
type Primitive interface {
	BYTES() int
	WriteAsBytes(buf []byte) error
}

// Bool is a 1-byte boolean: 0x00 for false, 0x01 for true; any other
// stored byte is rejected as invalid.
type Bool bool

const BoolBytes = 1

func (Bool) BYTES() int { return BoolBytes }

func (b Bool) WriteAsBytes(buf []byte) error {
	if len(buf) < BoolBytes {
		return fmt.Errorf("%w: bool needs %d bytes, got %d", engineerr.ErrInvalidSize, BoolBytes, len(buf))
	}
	if b {
		buf[0] = 0x01
	} else {
		buf[0] = 0x00
	}
	return nil
}

// BoolFromByteSlice strictly validates length and discriminant.
func BoolFromByteSlice(buf []byte) (Bool, error) {
	if len(buf) != BoolBytes {
		return false, fmt.Errorf("%w: bool needs %d bytes, got %d", engineerr.ErrInvalidSize, BoolBytes, len(buf))
	}
	switch buf[0] {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool discriminant 0x%02x", engineerr.ErrInvalidFormat, buf[0])
	}
}

// Integer widths, in bytes.
const (
	I8Bytes  = 1
	U8Bytes  = 1
	I16Bytes = 2
	U16Bytes = 2
	I32Bytes = 4
	U32Bytes = 4
	I64Bytes = 8
	U64Bytes = 8
	F32Bytes = 4
	F64Bytes = 8
)

func sizeErr(want, got int) error {
	return fmt.Errorf("%w: need %d bytes, got %d", engineerr.ErrInvalidSize, want, got)
}

// WriteI8 writes a signed 8-bit integer.
func WriteI8(buf []byte, v int8) error {
	if len(buf) < I8Bytes {
		return sizeErr(I8Bytes, len(buf))
	}
	buf[0] = byte(v)
	return nil
}

// ReadI8 reads a signed 8-bit integer.
func ReadI8(buf []byte) (int8, error) {
	if len(buf) != I8Bytes {
		return 0, sizeErr(I8Bytes, len(buf))
	}
	return int8(buf[0]), nil
}

// WriteU8 writes an unsigned 8-bit integer.
func WriteU8(buf []byte, v uint8) error {
	if len(buf) < U8Bytes {
		return sizeErr(U8Bytes, len(buf))
	}
	buf[0] = v
	return nil
}

// ReadU8 reads an unsigned 8-bit integer.
func ReadU8(buf []byte) (uint8, error) {
	if len(buf) != U8Bytes {
		return 0, sizeErr(U8Bytes, len(buf))
	}
	return buf[0], nil
}

// WriteI16 writes a big-endian signed 16-bit integer.
func WriteI16(buf []byte, v int16) error {
	if len(buf) < I16Bytes {
		return sizeErr(I16Bytes, len(buf))
	}
	binary.BigEndian.PutUint16(buf, uint16(v))
	return nil
}

// ReadI16 reads a big-endian signed 16-bit integer.
func ReadI16(buf []byte) (int16, error) {
	if len(buf) != I16Bytes {
		return 0, sizeErr(I16Bytes, len(buf))
	}
	return int16(binary.BigEndian.Uint16(buf)), nil
}

// WriteU16 writes a big-endian unsigned 16-bit integer.
func WriteU16(buf []byte, v uint16) error {
	if len(buf) < U16Bytes {
		return sizeErr(U16Bytes, len(buf))
	}
	binary.BigEndian.PutUint16(buf, v)
	return nil
}

// ReadU16 reads a big-endian unsigned 16-bit integer.
func ReadU16(buf []byte) (uint16, error) {
	if len(buf) != U16Bytes {
		return 0, sizeErr(U16Bytes, len(buf))
	}
	return binary.BigEndian.Uint16(buf), nil
}

// WriteI32 writes a big-endian signed 32-bit integer.
func WriteI32(buf []byte, v int32) error {
	if len(buf) < I32Bytes {
		return sizeErr(I32Bytes, len(buf))
	}
	binary.BigEndian.PutUint32(buf, uint32(v))
	return nil
}

// ReadI32 reads a big-endian signed 32-bit integer.
func ReadI32(buf []byte) (int32, error) {
	if len(buf) != I32Bytes {
		return 0, sizeErr(I32Bytes, len(buf))
	}
	return int32(binary.BigEndian.Uint32(buf)), nil
}

// WriteU32 writes a big-endian unsigned 32-bit integer.
func WriteU32(buf []byte, v uint32) error {
	if len(buf) < U32Bytes {
		return sizeErr(U32Bytes, len(buf))
	}
	binary.BigEndian.PutUint32(buf, v)
	return nil
}

// ReadU32 reads a big-endian unsigned 32-bit integer.
func ReadU32(buf []byte) (uint32, error) {
	if len(buf) != U32Bytes {
		return 0, sizeErr(U32Bytes, len(buf))
	}
	return binary.BigEndian.Uint32(buf), nil
}

// WriteI64 writes a big-endian signed 64-bit integer.
func WriteI64(buf []byte, v int64) error {
	if len(buf) < I64Bytes {
		return sizeErr(I64Bytes, len(buf))
	}
	binary.BigEndian.PutUint64(buf, uint64(v))
	return nil
}

// ReadI64 reads a big-endian signed 64-bit integer.
func ReadI64(buf []byte) (int64, error) {
	if len(buf) != I64Bytes {
		return 0, sizeErr(I64Bytes, len(buf))
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}

// WriteU64 writes a big-endian unsigned 64-bit integer.
func WriteU64(buf []byte, v uint64) error {
	if len(buf) < U64Bytes {
		return sizeErr(U64Bytes, len(buf))
	}
	binary.BigEndian.PutUint64(buf, v)
	return nil
}

// ReadU64 reads a big-endian unsigned 64-bit integer.
func ReadU64(buf []byte) (uint64, error) {
	if len(buf) != U64Bytes {
		return 0, sizeErr(U64Bytes, len(buf))
	}
	return binary.BigEndian.Uint64(buf), nil
}

// WriteF32 writes a big-endian IEEE-754 32-bit float.
func WriteF32(buf []byte, v float32) error {
	if len(buf) < F32Bytes {
		return sizeErr(F32Bytes, len(buf))
	}
	binary.BigEndian.PutUint32(buf, math.Float32bits(v))
	return nil
}

// ReadF32 reads a big-endian IEEE-754 32-bit float.
func ReadF32(buf []byte) (float32, error) {
	if len(buf) != F32Bytes {
		return 0, sizeErr(F32Bytes, len(buf))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf)), nil
}

// WriteF64 writes a big-endian IEEE-754 64-bit float.
func WriteF64(buf []byte, v float64) error {
	if len(buf) < F64Bytes {
		return sizeErr(F64Bytes, len(buf))
	}
	binary.BigEndian.PutUint64(buf, math.Float64bits(v))
	return nil
}

// ReadF64 reads a big-endian IEEE-754 64-bit float.
func ReadF64(buf []byte) (float64, error) {
	if len(buf) != F64Bytes {
		return 0, sizeErr(F64Bytes, len(buf))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
}

// StrBytes returns the on-disk width of a Str(cap) field: an 8-byte
// length prefix followed by cap bytes of payload (invariant 2 of the data
// model: len <= cap, unused trailing bytes are zero).
func StrBytes(cap uint32) int {
	return U64Bytes + int(cap)
}

// WriteStr encodes s into buf as <len:u64><bytes[cap]>. Fails if s is
// longer than cap bytes.
func WriteStr(buf []byte, cap uint32, s string) error {
	want := StrBytes(cap)
	if len(buf) < want {
		return sizeErr(want, len(buf))
	}
	sb := []byte(s)
	if uint32(len(sb)) > cap {
		return fmt.Errorf("%w: string of %d bytes exceeds cap %d", engineerr.ErrInvalidValue, len(sb), cap)
	}

	binary.BigEndian.PutUint64(buf, uint64(len(sb)))
	payload := buf[U64Bytes : U64Bytes+int(cap)]
	for i := range payload {
		payload[i] = 0
	}
	copy(payload, sb)
	return nil
}

// ReadStr decodes a Str(cap) field. len is trusted, not re-derived by
// scanning for a NUL terminator (design note in spec.md §9).
func ReadStr(buf []byte, cap uint32) (string, error) {
	want := StrBytes(cap)
	if len(buf) != want {
		return "", sizeErr(want, len(buf))
	}

	n := binary.BigEndian.Uint64(buf)
	if n > uint64(cap) {
		return "", fmt.Errorf("%w: stored string length %d exceeds cap %d", engineerr.ErrInvalidFormat, n, cap)
	}

	payload := buf[U64Bytes : U64Bytes+int(cap)]
	return string(payload[:n]), nil
}
