package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/primitive"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/table"
)

var errDestinationExists = errors.New("join: destination index/table files already exist")

// Join implements spec.md §4.8's majority-vote merge: for every slot, the
// status reported by strictly more than half of sources wins (ties and
// Skip both coerce to None), spent_time is averaged, and the target
// record is the first sample seen with the winning status, falling back
// to the base (sources[0]) record if no source reported that status.
//
// dest must point at files that do not yet exist; Join creates them. It
// fails with ErrSameFile if dest's paths equal any source's paths, and
// with ErrNotJoinCompatible if the sources fail IsJoinCompatible.
func Join(dest *Source, name string, id uuid.UUID, sources ...*Source) error {
	if len(sources) < 2 {
		return fmt.Errorf("join requires at least two sources")
	}

	ok, err := sources[0].IsJoinCompatible(sources[1:]...)
	if err != nil {
		return err
	}
	if !ok {
		return engineerr.ErrNotJoinCompatible
	}

	for _, src := range sources {
		if src.IndexPath == dest.IndexPath || src.TablePath == dest.TablePath {
			return fmt.Errorf("%w: %s", engineerr.ErrSameFile, dest.IndexPath)
		}
	}

	if _, err := dest.fs.Stat(dest.IndexPath); err == nil {
		return errDestinationExists
	} else if !os.IsNotExist(err) {
		return err
	}
	if _, err := dest.fs.Stat(dest.TablePath); err == nil {
		return errDestinationExists
	} else if !os.IsNotExist(err) {
		return err
	}

	schema := sources[0].Table.Schema()
	tbl, err := table.LoadOrCreate(dest.fs, dest.TablePath, name, id, schema, false, false)
	if err != nil {
		return err
	}
	dest.Table = tbl

	n := len(sources)
	count := sources[0].Index.Header().IndexedCount

	var joinedHash [32]byte
	allTracked := true
	for _, src := range sources {
		if !src.Index.Header().HasInputHash() {
			allTracked = false
			break
		}
	}
	if allTracked {
		joinedHash = sources[0].Index.Header().InputHash
	}

	for i := uint64(0); i < count; i++ {
		base, ok, err := sources[0].Index.Value(i, false)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: source index value doesn't match base value at record %d", engineerr.ErrRangeMismatch, i)
		}

		counts := make(map[primitive.Status]int, 4)
		sample := make(map[primitive.Status]*record.Record, 4)
		var spentTotal uint64

		for _, src := range sources {
			v, ok, err := src.Index.Value(i, false)
			if err != nil {
				return err
			}
			if !ok || v.InputStart != base.InputStart || v.InputEnd != base.InputEnd {
				return fmt.Errorf("%w: source index value doesn't match base value at record %d", engineerr.ErrRangeMismatch, i)
			}

			counts[v.Status]++
			spentTotal += v.SpentTime

			if _, seen := sample[v.Status]; !seen {
				rec, ok, err := src.Table.Record(i)
				if err != nil {
					return err
				}
				if ok {
					sample[v.Status] = rec
				}
			}
		}

		winner := primitive.StatusNone
		best := 0
		for st, c := range counts {
			if c > best && float64(c)/float64(n) > 0.5 {
				best = c
				winner = st
			}
		}
		if winner == primitive.StatusSkip {
			winner = primitive.StatusNone
		}

		newVal := base
		newVal.Status = winner
		newVal.SpentTime = spentTotal / uint64(n)
		if err := dest.Index.AppendValue(newVal); err != nil {
			return err
		}

		rec, ok := sample[winner]
		if !ok {
			rec, ok, err = sources[0].Table.Record(i)
			if err != nil {
				return err
			}
			if !ok {
				rec = record.New(schema)
			}
		}
		if err := dest.Table.SaveRecord(i, rec, i == count-1); err != nil {
			return err
		}
	}

	if err := dest.Index.MarkIndexed(joinedHash); err != nil {
		return err
	}

	dest.InputPath = sources[0].InputPath
	return nil
}
