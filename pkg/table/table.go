package table

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
)

// Table owns a ".fmtable" file: a Header, a field.Header schema, and N
// fixed-width records at deterministic offsets.
type Table struct {
	fs     fsx.FS
	path   string
	header Header
	schema *field.Header
}

// New constructs a table in memory; it performs no I/O. Use LoadOrCreate
// to materialise it on disk.
func New(fsi fsx.FS, path, name string, id uuid.UUID, schema *field.Header) (*Table, error) {
	h, err := NewHeader(name, id)
	if err != nil {
		return nil, err
	}
	return &Table{fs: fsi, path: path, header: h, schema: schema}, nil
}

// FromFile opens an existing table file. It fails unless healthcheck
// reports Good.
func FromFile(fsi fsx.FS, path string) (*Table, error) {
	verdict, hdr, schema, err := healthcheck(fsi, path)
	if err != nil {
		return nil, err
	}
	if verdict != VerdictGood {
		return nil, fmt.Errorf("%w: table %s healthcheck=%s", verdict.Err(), path, verdict)
	}
	return &Table{fs: fsi, path: path, header: *hdr, schema: schema}, nil
}

// Healthcheck re-derives the verdict for this table's underlying file.
func (t *Table) Healthcheck() (Verdict, error) {
	verdict, _, _, err := healthcheck(t.fs, t.path)
	return verdict, err
}

// Header returns the current table header.
func (t *Table) Header() Header { return t.header }

// Schema returns the record schema.
func (t *Table) Schema() *field.Header { return t.schema }

func (t *Table) recordPos(i uint64) int64 {
	return int64(HeaderBytes) + int64(t.schema.OnDiskBytes()) + int64(i)*int64(t.schema.RecordBytes())
}

// LoadOrCreate materialises the table file per spec.md §4.4's
// load_or_create contract: creates it if missing, with the header and
// schema and zero records;
// on Corrupted it truncates and recreates iff overrideOnError; on
// NoFields it always fails; on Good it opens the existing file (and,
// iff forceOverride, discards it and starts fresh instead).
func LoadOrCreate(fsi fsx.FS, path, name string, id uuid.UUID, schema *field.Header, overrideOnError, forceOverride bool) (*Table, error) {
	verdict, hdr, existingSchema, err := healthcheck(fsi, path)
	if err != nil {
		return nil, err
	}

	switch verdict {
	case VerdictNew:
		return create(fsi, path, name, id, schema)
	case VerdictCorrupted:
		if !overrideOnError {
			return nil, fmt.Errorf("%w: table %s is corrupted", engineerr.ErrCorrupted, path)
		}
		return create(fsi, path, name, id, schema)
	case VerdictNoFields:
		return nil, fmt.Errorf("%w: table %s has no fields", engineerr.ErrNoFields, path)
	case VerdictGood:
		if forceOverride {
			return create(fsi, path, name, id, schema)
		}
		return &Table{fs: fsi, path: path, header: *hdr, schema: existingSchema}, nil
	default:
		return nil, fmt.Errorf("unhandled table healthcheck verdict %s", verdict)
	}
}

func create(fsi fsx.FS, path, name string, id uuid.UUID, schema *field.Header) (*Table, error) {
	h, err := NewHeader(name, id)
	if err != nil {
		return nil, err
	}

	headerBuf := make([]byte, HeaderBytes)
	if err := h.WriteTo(headerBuf); err != nil {
		return nil, err
	}

	var schemaBuf bytes.Buffer
	if err := schema.WriteTo(&schemaBuf); err != nil {
		return nil, err
	}

	body := append(headerBuf, schemaBuf.Bytes()...)
	if err := fsx.WriteFileAtomic(path, body); err != nil {
		return nil, err
	}

	return &Table{fs: fsi, path: path, header: h, schema: schema}, nil
}

// Record reads the record at slot i. It returns ok=false iff
// i >= RecordCount. It fails with ErrNoFields if the schema is empty.
func (t *Table) Record(i uint64) (*record.Record, bool, error) {
	if t.schema.Len() == 0 {
		return nil, false, engineerr.ErrNoFields
	}
	if i >= t.header.RecordCount {
		return nil, false, nil
	}

	f, err := t.fs.Open(t.path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	if _, err := f.Seek(t.recordPos(i), io.SeekStart); err != nil {
		return nil, false, err
	}

	buf := make([]byte, t.schema.RecordBytes())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, false, err
	}

	r, err := record.ReadFrom(t.schema, buf)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// SaveRecord writes r at slot i. i == RecordCount is an append and
// increments RecordCount; i > RecordCount fails with a gap error.
// persistHeaders controls whether the header is rewritten after an
// append (batched callers may defer this).
func (t *Table) SaveRecord(i uint64, r *record.Record, persistHeaders bool) error {
	if i > t.header.RecordCount {
		return fmt.Errorf("%w: table record slot %d beyond record_count %d", engineerr.ErrGapInSequence, i, t.header.RecordCount)
	}

	f, err := t.fs.OpenFile(t.path, os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(t.recordPos(i), io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, t.schema.RecordBytes())
	if err := r.WriteTo(buf); err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		return err
	}

	isAppend := i == t.header.RecordCount
	if isAppend {
		t.header.RecordCount++
	}

	if isAppend && persistHeaders {
		if err := t.saveHeader(f); err != nil {
			return err
		}
	}

	return f.Sync()
}

// saveHeader rewrites the header in place, preserving the writer's
// current position (the append just written stays flushed ahead of it).
func (t *Table) saveHeader(f fsx.File) error {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	buf := make([]byte, HeaderBytes)
	if err := t.header.WriteTo(buf); err != nil {
		return err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		return err
	}

	_, err = f.Seek(pos, io.SeekStart)
	return err
}
