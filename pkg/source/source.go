// Package source glues one Index to one Table as the unit of user
// interaction (spec.md §4.7): a Source owns both file paths plus the
// input stream they were built from, and exposes the read/join surface
// that sits above the raw storage formats.
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/DataHenHQ/farm-engine-sub001/internal/csvsrc"
	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/index"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/table"
)

// Source is the (Index, Table) pair bound to a common input stream.
type Source struct {
	fs fsx.FS

	IndexPath string
	TablePath string
	InputPath string

	Index *index.Index
	Table *table.Table

	inputHeader []string
}

// New constructs a Source pointing at the three files; it performs no
// I/O. Call Init to materialise or open the underlying index/table.
func New(fsi fsx.FS, indexPath, tablePath, inputPath string) *Source {
	return &Source{
		fs:        fsi,
		IndexPath: indexPath,
		TablePath: tablePath,
		InputPath: inputPath,
		Index:     index.New(fsi, indexPath),
	}
}

// Slot is the joined view of one record returned by Data: the raw input
// row, the index's tree/status node, and the typed table record.
type Slot struct {
	InputRow map[string]string
	Index    index.Value
	Record   *record.Record
}

// Init runs the terminal transitions of spec.md §4.6/§4.7: it indexes
// the input (bulk CSV ingest) and loads or creates the table, then
// re-synchronises Table.RecordCount to Index.IndexedCount by appending
// empty records if the table was freshly created.
func (s *Source) Init(name string, id uuid.UUID, schema *field.Header, overrideOnError, forceOverride bool) error {
	verdict, err := s.Index.Healthcheck()
	if err != nil {
		return err
	}
	if verdict == index.VerdictCorrupted {
		if !overrideOnError {
			return fmt.Errorf("%w: index %s is corrupted", engineerr.ErrCorrupted, s.IndexPath)
		}
		if err := s.fs.Remove(s.IndexPath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := s.Index.IndexInput(s.InputPath, 0); err != nil {
		return err
	}

	probe, err := table.New(s.fs, s.TablePath, name, id, schema)
	if err != nil {
		return err
	}
	tblVerdict, err := probe.Healthcheck()
	if err != nil {
		return err
	}
	fresh := tblVerdict == table.VerdictNew ||
		(tblVerdict == table.VerdictCorrupted && overrideOnError) ||
		(tblVerdict == table.VerdictGood && forceOverride)

	tbl, err := table.LoadOrCreate(s.fs, s.TablePath, name, id, schema, overrideOnError, forceOverride)
	if err != nil {
		return err
	}
	s.Table = tbl

	if fresh {
		want := s.Index.Header().IndexedCount
		for i := tbl.Header().RecordCount; i < want; i++ {
			persist := i == want-1
			if err := tbl.SaveRecord(i, record.New(schema), persist); err != nil {
				return err
			}
		}
	}

	return nil
}

// Data reads the joined view of slot i: the index value, the table
// record, and the original input row re-parsed from [input_start,
// input_end].
func (s *Source) Data(i uint64) (Slot, error) {
	v, ok, err := s.Index.Value(i, false)
	if err != nil {
		return Slot{}, err
	}
	if !ok {
		return Slot{}, fmt.Errorf("%w: no index slot %d", engineerr.ErrInvalidValue, i)
	}

	rec, ok, err := s.Table.Record(i)
	if err != nil {
		return Slot{}, err
	}
	if !ok {
		return Slot{}, fmt.Errorf("%w: no table record %d", engineerr.ErrInvalidValue, i)
	}

	header, err := s.header()
	if err != nil {
		return Slot{}, err
	}
	row, err := s.readInputRange(v.InputStart, v.InputEnd, header)
	if err != nil {
		return Slot{}, err
	}

	return Slot{InputRow: row, Index: v, Record: rec}, nil
}

// header lazily reads and caches the input's CSV header row.
func (s *Source) header() ([]string, error) {
	if s.inputHeader != nil {
		return s.inputHeader, nil
	}

	f, err := s.fs.Open(s.InputPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := csvsrc.New(f)
	if _, _, err := rows.Next(); err != nil {
		return nil, err
	}
	s.inputHeader = rows.Header()
	return s.inputHeader, nil
}

func (s *Source) readInputRange(start, end uint64, header []string) (map[string]string, error) {
	f, err := s.fs.Open(s.InputPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(int64(start), io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, end-start+1)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	return csvsrc.ParseRowBytes(buf, header)
}

// IsJoinCompatible checks spec.md §4.8's precondition between s and
// others: all indexed, same indexed_count, same schema field-by-field,
// and (per SPEC_FULL.md §4.10) the same InputHash whenever every source
// tracks one — the comparison is skipped, not failed, if any source has
// no tracked hash.
func (s *Source) IsJoinCompatible(others ...*Source) (bool, error) {
	all := append([]*Source{s}, others...)
	if len(all) < 2 {
		return false, fmt.Errorf("join requires at least two sources")
	}

	base := all[0]
	if !base.Index.Header().Indexed {
		return false, nil
	}

	allTracked := base.Index.Header().HasInputHash()
	for _, src := range all[1:] {
		if !src.Index.Header().Indexed {
			return false, nil
		}
		if src.Index.Header().IndexedCount != base.Index.Header().IndexedCount {
			return false, nil
		}
		if !src.Table.Schema().Equal(base.Table.Schema()) {
			return false, nil
		}
		if !src.Index.Header().HasInputHash() {
			allTracked = false
		}
	}

	if allTracked {
		baseHash := base.Index.Header().InputHash
		for _, src := range all[1:] {
			if src.Index.Header().InputHash != baseHash {
				return false, nil
			}
		}
	}

	return true, nil
}
