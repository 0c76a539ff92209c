// Package table implements the fixed-width record table (".fmtable"
// file): a TableHeader, a field.Header describing the record schema, and
// N records at deterministic offsets.
package table

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

// magic identifies a table file. ReadHeaderFrom rejects a header whose
// magic does not match, so a bad magic makes the table unreadable.
const magic = "datahen_tbl"

// NameCap is the byte cap on a table's display name.
const NameCap = 64

// HeaderBytes is the fixed on-disk width of a TableHeader:
// magic(11) + version(4) + name(64) + uuid(16) + record_count(8).
const HeaderBytes = 11 + 4 + NameCap + primitive.UUIDBytes + primitive.U64Bytes

// Version is the current on-disk table format version.
const Version uint32 = 1

// Header is the fixed-width preamble of a table file.
type Header struct {
	Name        string
	UUID        uuid.UUID
	RecordCount uint64
}

// NewHeader builds a fresh header for a newly created table.
func NewHeader(name string, id uuid.UUID) (Header, error) {
	if len(name) > NameCap {
		return Header{}, fmt.Errorf("%w: table name exceeds %d bytes", engineerr.ErrInvalidValue, NameCap)
	}
	return Header{Name: name, UUID: id, RecordCount: 0}, nil
}

// WriteTo serialises h into buf, which must be exactly HeaderBytes long.
func (h Header) WriteTo(buf []byte) error {
	if len(buf) != HeaderBytes {
		return fmt.Errorf("%w: table header needs %d bytes, got %d", engineerr.ErrInvalidSize, HeaderBytes, len(buf))
	}
	off := 0
	copy(buf[off:off+11], magic)
	off += 11

	if err := primitive.WriteU32(buf[off:off+4], Version); err != nil {
		return err
	}
	off += 4

	nameSlot := buf[off : off+NameCap]
	for i := range nameSlot {
		nameSlot[i] = 0
	}
	if len(h.Name) > NameCap {
		return fmt.Errorf("%w: table name exceeds %d bytes", engineerr.ErrInvalidValue, NameCap)
	}
	copy(nameSlot, h.Name)
	off += NameCap

	if err := primitive.WriteUUID(buf[off:off+primitive.UUIDBytes], h.UUID); err != nil {
		return err
	}
	off += primitive.UUIDBytes

	return primitive.WriteU64(buf[off:off+primitive.U64Bytes], h.RecordCount)
}

// ReadHeaderFrom deserialises a Header from buf.
func ReadHeaderFrom(buf []byte) (Header, error) {
	if len(buf) != HeaderBytes {
		return Header{}, fmt.Errorf("%w: table header needs %d bytes, got %d", engineerr.ErrInvalidSize, HeaderBytes, len(buf))
	}
	off := 0
	if string(buf[off:off+11]) != magic {
		return Header{}, fmt.Errorf("%w: bad table magic", engineerr.ErrInvalidFormat)
	}
	off += 11

	version, err := primitive.ReadU32(buf[off : off+4])
	if err != nil {
		return Header{}, err
	}
	if version != Version {
		return Header{}, fmt.Errorf("%w: unsupported table version %d", engineerr.ErrInvalidFormat, version)
	}
	off += 4

	nameSlot := buf[off : off+NameCap]
	nameEnd := len(nameSlot)
	for nameEnd > 0 && nameSlot[nameEnd-1] == 0 {
		nameEnd--
	}
	name := string(nameSlot[:nameEnd])
	off += NameCap

	id, err := primitive.ReadUUID(buf[off : off+primitive.UUIDBytes])
	if err != nil {
		return Header{}, err
	}
	off += primitive.UUIDBytes

	count, err := primitive.ReadU64(buf[off : off+primitive.U64Bytes])
	if err != nil {
		return Header{}, err
	}

	return Header{Name: name, UUID: id, RecordCount: count}, nil
}
