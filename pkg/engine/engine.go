// Package engine is the top-level orchestrator (spec.md §4.7): it wraps
// a Source with the logging and request-shaped operations the CLI and
// any future HTTP layer drive (spec.md §6.2's query/insert/index surface),
// reconciling the healthcheck outcomes Source.Init surfaces before they
// become bare "unavailable" errors to the caller.
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/index"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/source"
)

// Engine owns one Source plus the logger threaded through every
// operation against it.
type Engine struct {
	log    *zap.Logger
	Source *source.Source
	Schema *field.Header
}

// Open indexes the input and loads or creates the table (Source.Init),
// logging the healthcheck outcome at Warn when the index is Incomplete
// (resuming) or Corrupted, and the final record counts at Info.
func Open(log *zap.Logger, fsi fsx.FS, indexPath, tablePath, inputPath, name string, id uuid.UUID, schema *field.Header, overrideOnError, forceOverride bool) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	src := source.New(fsi, indexPath, tablePath, inputPath)

	verdict, err := src.Index.Healthcheck()
	if err != nil {
		return nil, err
	}
	switch verdict {
	case index.VerdictIncomplete:
		log.Warn("index incomplete, resuming", zap.String("index_path", indexPath))
	case index.VerdictCorrupted:
		log.Warn("index corrupted", zap.String("index_path", indexPath), zap.Bool("override_on_error", overrideOnError))
	}

	log.Info("opening store", zap.String("index_path", indexPath), zap.String("table_path", tablePath), zap.String("input_path", inputPath))

	if err := src.Init(name, id, schema, overrideOnError, forceOverride); err != nil {
		return nil, err
	}

	log.Info("store ready",
		zap.Uint64("indexed_count", src.Index.Header().IndexedCount),
		zap.Uint64("record_count", src.Table.Header().RecordCount),
	)

	return &Engine{log: log, Source: src, Schema: src.Table.Schema()}, nil
}

// Insert appends a new record (spec.md §6.2's `POST /insert`): it AVL-
// inserts gid into the index, then — only on a genuine new insertion —
// builds and appends the typed record at the returned slot.
func (e *Engine) Insert(gid string, values map[string]record.Value) (uint64, bool, error) {
	slot, inserted, err := e.Source.Index.Insert(gid)
	if err != nil {
		return 0, false, err
	}
	if !inserted {
		e.log.Info("insert no-op, gid already indexed", zap.String("gid", gid), zap.Uint64("slot", slot))
		return slot, false, nil
	}

	rec := record.New(e.Schema)
	for name, v := range values {
		if err := rec.Set(name, v); err != nil {
			return slot, false, fmt.Errorf("insert %q: %w", gid, err)
		}
	}
	if err := e.Source.Table.SaveRecord(slot, rec, true); err != nil {
		return slot, false, err
	}

	e.log.Info("inserted record", zap.String("gid", gid), zap.Uint64("slot", slot))
	return slot, true, nil
}

// Query resolves gid to its joined slot (spec.md §6.2's `POST /query`).
// ok is false if gid is not in the AVL tree: only gids added through
// Insert are found; rows added by bulk indexing are not searchable.
func (e *Engine) Query(gid string) (source.Slot, bool, error) {
	slot, ok, err := e.Source.Index.Search(gid)
	if err != nil {
		return source.Slot{}, false, err
	}
	if !ok {
		return source.Slot{}, false, nil
	}

	data, err := e.Source.Data(slot)
	if err != nil {
		return source.Slot{}, false, err
	}

	e.log.Info("query", zap.String("gid", gid), zap.Uint64("slot", slot))
	return data, true, nil
}

// Join merges this Engine's peers into a new Engine (spec.md §4.8),
// logging the participant count and target paths.
func Join(log *zap.Logger, fsi fsx.FS, indexPath, tablePath, name string, id uuid.UUID, schema *field.Header, peers ...*Engine) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(peers) < 2 {
		return nil, fmt.Errorf("%w: join requires at least two sources", engineerr.ErrInvalidValue)
	}

	sources := make([]*source.Source, len(peers))
	for i, p := range peers {
		sources[i] = p.Source
	}

	dest := source.New(fsi, indexPath, tablePath, "")
	log.Info("joining sources", zap.Int("count", len(sources)), zap.String("index_path", indexPath), zap.String("table_path", tablePath))

	if err := source.Join(dest, name, id, sources...); err != nil {
		return nil, err
	}

	log.Info("join complete", zap.Uint64("indexed_count", dest.Index.Header().IndexedCount))
	return &Engine{log: log, Source: dest, Schema: schema}, nil
}
