package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/engine"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
)

// runQuery looks up a gid and prints its joined slot (spec.md §4.6).
func runQuery(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("query", errOut)
	indexPath := fs.String("index", "", "path to the .fmbindex file")
	tablePath := fs.String("table", "", "path to the .fmtable file")
	inputPath := fs.String("input", "", "path to the source CSV")
	name := fs.String("name", "", "store name")
	gid := fs.String("gid", "", "gid to look up")

	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}
	if *indexPath == "" || *tablePath == "" || *inputPath == "" || *name == "" || *gid == "" {
		fmt.Fprintln(errOut, "error: --index, --table, --input, --name and --gid are required")
		return exitInvalidArgs
	}

	// query only ever runs against an already-indexed store, so the
	// schema used here is irrelevant unless --table is unexpectedly
	// missing, in which case an empty one avoids a nil dereference.
	emptySchema, err := field.NewHeader(nil)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitInvalidArgs
	}

	e, err := engine.Open(zap.NewNop(), fsx.NewReal(), *indexPath, *tablePath, *inputPath,
		*name, uuid.New(), emptySchema, false, false)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}

	slot, ok, err := e.Query(*gid)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}
	if !ok {
		fmt.Fprintf(out, "%q not found\n", *gid)
		return 0
	}

	fmt.Fprintf(out, "gid=%s status=%s spent_time=%d\n", *gid, slot.Index.Status, slot.Index.SpentTime)
	for name, v := range slot.InputRow {
		fmt.Fprintf(out, "  input.%s = %s\n", name, v)
	}
	for _, f := range e.Source.Table.Schema().Fields() {
		if v, ok := slot.Record.Get(f.Name); ok {
			fmt.Fprintf(out, "  record.%s = %s\n", f.Name, v.String())
		}
	}
	return 0
}
