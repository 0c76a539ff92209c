// Package index implements the on-disk AVL index (".fmbindex" file): a
// Header, N fixed-width Value nodes, the scan/process streaming
// protocol, and the AVL insert/search/rebalance algorithm that runs
// entirely through positioned file I/O.
package index

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

// Magic identifies an index file, matching spec.md §6.1.
const Magic = "datahen_idx"

// MagicBytes is the fixed width of the magic field.
const MagicBytes = 11

// InputHashBytes is the width of the content-hash tracking field added
// by the InputHash expansion (SPEC_FULL.md §4.10): an FNV-1a 64 digest
// widened into a 32-byte slot, unused trailing bytes zero, same
// convention as Str(cap). All-zero means "untracked", matching spec.md's
// "if tracked" wording for join compatibility.
const InputHashBytes = 32

// baseHeaderBytes is spec.md §6.1's original 41-byte layout:
// magic(11) + version(4) + indexed(1) + indexed_count(8) +
// has_table_uuid(1) + table_uuid(16). Every offset in it is preserved
// exactly; InputHash is appended after it, not interleaved.
const baseHeaderBytes = MagicBytes + 4 + 1 + primitive.U64Bytes + 1 + primitive.UUIDBytes

// HeaderBytes is the fixed on-disk width of a Header: the unmodified
// 41-byte spec.md layout plus the 32-byte InputHash appended after
// table_uuid (SPEC_FULL.md §6.1).
const HeaderBytes = baseHeaderBytes + InputHashBytes

// Version is the current on-disk index format version.
const Version uint32 = 1

// Header is the fixed-width preamble of an index file.
type Header struct {
	Indexed      bool
	IndexedCount uint64

	// TableUUID, when set, must equal the paired table's uuid (data model
	// invariant 5).
	TableUUID    uuid.UUID
	HasTableUUID bool

	// InputHash, when non-zero, is compared across sources during join
	// to reject merging stores indexed from different input content.
	InputHash [InputHashBytes]byte
}

// HasInputHash reports whether h tracks a content hash.
func (h Header) HasInputHash() bool {
	return h.InputHash != [InputHashBytes]byte{}
}

// WriteTo serialises h into buf, which must be exactly HeaderBytes long.
func (h Header) WriteTo(buf []byte) error {
	if len(buf) != HeaderBytes {
		return fmt.Errorf("%w: index header needs %d bytes, got %d", engineerr.ErrInvalidSize, HeaderBytes, len(buf))
	}
	off := 0
	copy(buf[off:off+MagicBytes], Magic)
	off += MagicBytes

	if err := primitive.WriteU32(buf[off:off+4], Version); err != nil {
		return err
	}
	off += 4

	if err := primitive.Bool(h.Indexed).WriteAsBytes(buf[off : off+1]); err != nil {
		return err
	}
	off++

	if err := primitive.WriteU64(buf[off:off+primitive.U64Bytes], h.IndexedCount); err != nil {
		return err
	}
	off += primitive.U64Bytes

	if err := primitive.Bool(h.HasTableUUID).WriteAsBytes(buf[off : off+1]); err != nil {
		return err
	}
	off++

	uid := h.TableUUID
	if !h.HasTableUUID {
		uid = uuid.UUID{}
	}
	if err := primitive.WriteUUID(buf[off:off+primitive.UUIDBytes], uid); err != nil {
		return err
	}
	off += primitive.UUIDBytes

	copy(buf[off:off+InputHashBytes], h.InputHash[:])

	return nil
}

// ReadHeaderFrom deserialises a Header from buf.
func ReadHeaderFrom(buf []byte) (Header, error) {
	if len(buf) != HeaderBytes {
		return Header{}, fmt.Errorf("%w: index header needs %d bytes, got %d", engineerr.ErrInvalidSize, HeaderBytes, len(buf))
	}
	off := 0
	if string(buf[off:off+MagicBytes]) != Magic {
		return Header{}, fmt.Errorf("%w: bad index magic", engineerr.ErrInvalidFormat)
	}
	off += MagicBytes

	version, err := primitive.ReadU32(buf[off : off+4])
	if err != nil {
		return Header{}, err
	}
	if version != Version {
		return Header{}, fmt.Errorf("%w: unsupported index version %d", engineerr.ErrInvalidFormat, version)
	}
	off += 4

	indexed, err := primitive.BoolFromByteSlice(buf[off : off+1])
	if err != nil {
		return Header{}, err
	}
	off++

	count, err := primitive.ReadU64(buf[off : off+primitive.U64Bytes])
	if err != nil {
		return Header{}, err
	}
	off += primitive.U64Bytes

	hasUUID, err := primitive.BoolFromByteSlice(buf[off : off+1])
	if err != nil {
		return Header{}, err
	}
	off++

	uid, err := primitive.ReadUUID(buf[off : off+primitive.UUIDBytes])
	if err != nil {
		return Header{}, err
	}
	off += primitive.UUIDBytes

	var hash [InputHashBytes]byte
	copy(hash[:], buf[off:off+InputHashBytes])

	return Header{
		Indexed:      bool(indexed),
		IndexedCount: count,
		TableUUID:    uid,
		HasTableUUID: bool(hasUUID),
		InputHash:    hash,
	}, nil
}
