package index

import (
	"fmt"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

// ValueBytes is the fixed on-disk width of one AVL node (spec.md §6.1):
// input_start(8) input_end(8) spent_time(8) status(1) parent(8) left(8)
// right(8) height(8, signed) gid(46).
const ValueBytes = primitive.U64Bytes*3 + primitive.StatusBytes + primitive.U64Bytes*3 + primitive.I64Bytes + primitive.GIDBytes

// dataOffset is the byte offset within a Value of everything after the
// two input-range fields (spec.md §4.5.2). Index has no method that
// writes this suffix alone; every write stores the full Value.
const dataOffset = primitive.U64Bytes * 2

// DataBytes is the width of the suffix that follows the input range.
const DataBytes = ValueBytes - dataOffset

// Value is one AVL node: the byte range of the input row it was built
// from, its processing status/time, its tree links (slot indices, not
// pointers), and its key.
type Value struct {
	InputStart uint64
	InputEnd   uint64
	SpentTime  uint64
	Status     primitive.Status

	// Parent, Left, Right are slot indices; 0 means "no link". Slot 0 is
	// the sentinel whose Left holds the real root (data model invariant 4).
	Parent uint64
	Left   uint64
	Right  uint64

	// Height is signed on disk to match spec.md's layout even though it
	// is never negative in practice; nil = 0, leaf = 1.
	Height int64

	GID string
}

// WriteTo serialises v into buf, which must be exactly ValueBytes long.
func (v Value) WriteTo(buf []byte) error {
	if len(buf) != ValueBytes {
		return fmt.Errorf("%w: index value needs %d bytes, got %d", engineerr.ErrInvalidSize, ValueBytes, len(buf))
	}
	off := 0
	if err := primitive.WriteU64(buf[off:off+8], v.InputStart); err != nil {
		return err
	}
	off += 8
	if err := primitive.WriteU64(buf[off:off+8], v.InputEnd); err != nil {
		return err
	}
	off += 8
	return v.writeData(buf[off:])
}

// writeData serialises the portion of v starting at spent_time, i.e. the
// same suffix save_data writes.
func (v Value) writeData(buf []byte) error {
	if len(buf) != DataBytes {
		return fmt.Errorf("%w: index value data needs %d bytes, got %d", engineerr.ErrInvalidSize, DataBytes, len(buf))
	}
	off := 0
	if err := primitive.WriteU64(buf[off:off+8], v.SpentTime); err != nil {
		return err
	}
	off += 8
	if err := v.Status.WriteAsBytes(buf[off : off+1]); err != nil {
		return err
	}
	off++
	if err := primitive.WriteU64(buf[off:off+8], v.Parent); err != nil {
		return err
	}
	off += 8
	if err := primitive.WriteU64(buf[off:off+8], v.Left); err != nil {
		return err
	}
	off += 8
	if err := primitive.WriteU64(buf[off:off+8], v.Right); err != nil {
		return err
	}
	off += 8
	if err := primitive.WriteI64(buf[off:off+8], v.Height); err != nil {
		return err
	}
	off += 8
	return primitive.WriteGID(buf[off:off+primitive.GIDBytes], v.GID)
}

// ReadValueFrom deserialises a Value from buf.
func ReadValueFrom(buf []byte) (Value, error) {
	if len(buf) != ValueBytes {
		return Value{}, fmt.Errorf("%w: index value needs %d bytes, got %d", engineerr.ErrInvalidSize, ValueBytes, len(buf))
	}
	off := 0
	start, err := primitive.ReadU64(buf[off : off+8])
	if err != nil {
		return Value{}, err
	}
	off += 8
	end, err := primitive.ReadU64(buf[off : off+8])
	if err != nil {
		return Value{}, err
	}
	off += 8

	v, err := readValueData(buf[off:])
	if err != nil {
		return Value{}, err
	}
	v.InputStart = start
	v.InputEnd = end
	return v, nil
}

func readValueData(buf []byte) (Value, error) {
	if len(buf) != DataBytes {
		return Value{}, fmt.Errorf("%w: index value data needs %d bytes, got %d", engineerr.ErrInvalidSize, DataBytes, len(buf))
	}
	off := 0
	spent, err := primitive.ReadU64(buf[off : off+8])
	if err != nil {
		return Value{}, err
	}
	off += 8

	status, err := primitive.StatusFromByteSlice(buf[off : off+1])
	if err != nil {
		return Value{}, err
	}
	off++

	parent, err := primitive.ReadU64(buf[off : off+8])
	if err != nil {
		return Value{}, err
	}
	off += 8

	left, err := primitive.ReadU64(buf[off : off+8])
	if err != nil {
		return Value{}, err
	}
	off += 8

	right, err := primitive.ReadU64(buf[off : off+8])
	if err != nil {
		return Value{}, err
	}
	off += 8

	height, err := primitive.ReadI64(buf[off : off+8])
	if err != nil {
		return Value{}, err
	}
	off += 8

	gid, err := primitive.ReadGID(buf[off : off+primitive.GIDBytes])
	if err != nil {
		return Value{}, err
	}

	return Value{
		SpentTime: spent,
		Status:    status,
		Parent:    parent,
		Left:      left,
		Right:     right,
		Height:    height,
		GID:       gid,
	}, nil
}
