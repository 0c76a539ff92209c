package index

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DataHenHQ/farm-engine-sub001/internal/contenthash"
	"github.com/DataHenHQ/farm-engine-sub001/internal/csvsrc"
	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
)

// DefaultBatchSize is how many appended values IndexInput buffers before
// rewriting the header (spec.md invariant 7: a crash loses at most
// DefaultBatchSize-1 unprocessed slots).
const DefaultBatchSize = 100

// Index owns a ".fmbindex" file: a Header plus N fixed-width Value
// nodes, addressed by slot index rather than in-memory pointers.
type Index struct {
	fs     fsx.FS
	path   string
	header Header
}

// New constructs an index in memory; it performs no I/O.
func New(fsi fsx.FS, path string) *Index {
	return &Index{fs: fsi, path: path}
}

// Open loads an existing, fully indexed file. It fails unless
// healthcheck reports Indexed.
func Open(fsi fsx.FS, path string) (*Index, error) {
	verdict, hdr, err := healthcheck(fsi, path)
	if err != nil {
		return nil, err
	}
	if verdict != VerdictIndexed {
		return nil, fmt.Errorf("%w: index %s healthcheck=%s", verdict.Err(), path, verdict)
	}
	return &Index{fs: fsi, path: path, header: *hdr}, nil
}

// Healthcheck re-derives the verdict for this index's underlying file.
func (x *Index) Healthcheck() (Verdict, error) {
	verdict, _, err := healthcheck(x.fs, x.path)
	return verdict, err
}

// Header returns the current index header.
func (x *Index) Header() Header { return x.header }

func (x *Index) valuePos(i uint64) int64 {
	return int64(HeaderBytes) + int64(i)*int64(ValueBytes)
}

// Value returns the node at slot i. ok is false iff i >= indexed_count,
// unless force is set (used internally during indexing/insert, where
// the header's counter may briefly lag the slot just appended).
func (x *Index) Value(i uint64, force bool) (Value, bool, error) {
	if !force && i >= x.header.IndexedCount {
		return Value{}, false, nil
	}

	f, err := x.fs.Open(x.path)
	if err != nil {
		return Value{}, false, err
	}
	defer f.Close()

	if _, err := f.Seek(x.valuePos(i), io.SeekStart); err != nil {
		return Value{}, false, err
	}
	buf := make([]byte, ValueBytes)
	if _, err := io.ReadFull(f, buf); err != nil {
		return Value{}, false, err
	}
	v, err := ReadValueFrom(buf)
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

// SaveValue seeks to slot i and writes the full 103-byte node.
func (x *Index) SaveValue(i uint64, v Value) error {
	f, err := x.fs.OpenFile(x.path, os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(x.valuePos(i), io.SeekStart); err != nil {
		return err
	}
	buf := make([]byte, ValueBytes)
	if err := v.WriteTo(buf); err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		return err
	}
	return f.Sync()
}

// AppendValue appends v as the next node, bypassing both CSV-driven bulk
// ingest and AVL insertion. Used when materialising a join's target index
// directly from already-computed per-slot values (spec.md §4.8 step 5),
// and by Insert to allocate each new slot.
func (x *Index) AppendValue(v Value) error {
	f, err := x.fs.OpenFile(x.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(x.valuePos(x.header.IndexedCount), io.SeekStart); err != nil {
		return err
	}
	buf := make([]byte, ValueBytes)
	if err := v.WriteTo(buf); err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		return err
	}
	x.header.IndexedCount++

	if err := x.flushHeader(f); err != nil {
		return err
	}
	return f.Sync()
}

// MarkIndexed finalises the header once every slot of a join target has
// been written via AppendValue.
func (x *Index) MarkIndexed(inputHash [32]byte) error {
	f, err := x.fs.OpenFile(x.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	x.header.Indexed = true
	x.header.InputHash = inputHash
	if err := x.flushHeader(f); err != nil {
		return err
	}
	return f.Sync()
}

func (x *Index) flushHeader(f fsx.File) error {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	buf := make([]byte, HeaderBytes)
	if err := x.header.WriteTo(buf); err != nil {
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

// processFrom is the read-modify-write substrate every bounded multi-slot
// scan goes through (spec.md §4.5.1/§4.5.6): it reads successive values
// starting at slot from, stopping at limit results (0 = unlimited), a
// stop signal from fn, or EOF. A non-nil update from fn is written back
// at the slot it was read from. Because read and write share one file
// descriptor, the cursor realigns for the next read automatically after
// a write of the same width (the "lazy positioning" spec.md describes).
// A final Sync is mandatory before return.
func (x *Index) processFrom(from uint64, limit int, fn func(slot uint64, v Value) (update *Value, stop bool)) ([]Value, error) {
	f, err := x.fs.OpenFile(x.path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(x.valuePos(from), io.SeekStart); err != nil {
		return nil, err
	}

	var out []Value
	buf := make([]byte, ValueBytes)
	for slot := from; slot < x.header.IndexedCount; slot++ {
		if limit > 0 && len(out) >= limit {
			break
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return out, err
		}
		v, err := ReadValueFrom(buf)
		if err != nil {
			return out, err
		}

		update, stop := fn(slot, v)
		if update != nil {
			if _, err := f.Seek(-int64(ValueBytes), io.SeekCurrent); err != nil {
				return out, err
			}
			wbuf := make([]byte, ValueBytes)
			if err := update.WriteTo(wbuf); err != nil {
				return out, err
			}
			if _, err := f.Write(wbuf); err != nil {
				return out, err
			}
			out = append(out, *update)
		}
		if stop {
			break
		}
	}

	if err := f.Sync(); err != nil {
		return out, err
	}
	return out, nil
}

// FindPending scans from slot `from` for the first value with
// Status == StatusNone. It requires the index be fully Indexed.
func (x *Index) FindPending(from uint64) (uint64, bool, error) {
	if !x.header.Indexed {
		return 0, false, engineerr.ErrIncomplete
	}

	var found uint64
	var ok bool
	_, err := x.processFrom(from, 0, func(slot uint64, v Value) (*Value, bool) {
		if v.Status == primitive.StatusNone {
			found, ok = slot, true
			return nil, true
		}
		return nil, false
	})
	if err != nil {
		return 0, false, err
	}
	return found, ok, nil
}

// UpdateStatus is the processFrom-backed primitive every status/time
// write goes through: it loads slot i, applies fn, and writes the
// updated value back through the same read-modify-write pass.
func (x *Index) UpdateStatus(i uint64, fn func(v *Value)) error {
	out, err := x.processFrom(i, 1, func(slot uint64, v Value) (*Value, bool) {
		fn(&v)
		return &v, true
	})
	if err != nil {
		return err
	}
	if len(out) == 0 {
		return fmt.Errorf("%w: no index slot %d", engineerr.ErrInvalidValue, i)
	}
	return nil
}

// IndexInput runs bulk ingestion (spec.md §4.5.5): it streams inputPath
// through csvsrc, appending one flat, untreed Value per row (the AVL is
// not built during bulk indexing), flushing the header every batchSize
// rows. batchSize <= 0 uses DefaultBatchSize.
func (x *Index) IndexInput(inputPath string, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	verdict, hdr, err := healthcheck(x.fs, x.path)
	if err != nil {
		return err
	}

	switch verdict {
	case VerdictNew:
		x.header = Header{}
	case VerdictIncomplete:
		x.header = *hdr
	case VerdictIndexed:
		x.header = *hdr
		return nil
	default:
		return fmt.Errorf("%w: index %s healthcheck=%s", verdict.Err(), x.path, verdict)
	}

	inputFile, err := x.fs.Open(inputPath)
	if err != nil {
		return err
	}
	defer inputFile.Close()

	hasher := contenthash.New()
	rows := csvsrc.New(io.TeeReader(inputFile, hasher))

	writer, err := x.fs.OpenFile(x.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer writer.Close()

	if verdict == VerdictNew {
		if err := x.flushHeader(writer); err != nil {
			return err
		}
	}
	if _, err := writer.Seek(x.valuePos(x.header.IndexedCount), io.SeekStart); err != nil {
		return err
	}

	// Resuming an Incomplete index: re-derive the parser's position by
	// discarding the rows already on disk. The content hash still covers
	// the whole file regardless of where resumption starts.
	for i := uint64(0); i < x.header.IndexedCount; i++ {
		if _, ok, err := rows.Next(); err != nil {
			return err
		} else if !ok {
			break
		}
	}

	sinceFlush := 0
	for {
		row, ok, err := rows.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		v := Value{
			InputStart: row.Start,
			InputEnd:   row.End,
			Status:     primitive.StatusNone,
			GID:        row.Fields["gid"],
		}
		buf := make([]byte, ValueBytes)
		if err := v.WriteTo(buf); err != nil {
			return err
		}
		if _, err := writer.Write(buf); err != nil {
			return err
		}
		x.header.IndexedCount++
		sinceFlush++

		if sinceFlush >= batchSize {
			if err := x.flushHeader(writer); err != nil {
				return err
			}
			sinceFlush = 0
		}
	}

	x.header.Indexed = true
	x.header.InputHash = contenthash.Sum(hasher)
	if err := x.flushHeader(writer); err != nil {
		return err
	}
	return writer.Sync()
}
