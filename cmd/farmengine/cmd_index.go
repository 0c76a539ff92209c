package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/engine"
)

// runIndex bulk-indexes an input CSV into a fresh or existing store
// (spec.md §4.4), creating the table on first run.
func runIndex(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("index", errOut)
	indexPath := fs.String("index", "", "path to the .fmbindex file")
	tablePath := fs.String("table", "", "path to the .fmtable file")
	inputPath := fs.String("input", "", "path to the source CSV")
	name := fs.String("name", "", "store name")
	fields := fs.StringArray("field", nil, "schema field, name:type[:cap] (repeatable)")
	override := fs.Bool("override-on-error", false, "rebuild the index if it is corrupted")
	force := fs.Bool("force", false, "force-recreate the table even if it exists")

	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}
	if *indexPath == "" || *tablePath == "" || *inputPath == "" || *name == "" {
		fmt.Fprintln(errOut, "error: --index, --table, --input and --name are required")
		return exitInvalidArgs
	}

	schema, err := parseSchema(*fields)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitInvalidArgs
	}

	e, err := engine.Open(zap.NewNop(), fsx.NewReal(), *indexPath, *tablePath, *inputPath,
		*name, uuid.New(), schema, *override, *force)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}

	fmt.Fprintf(out, "indexed %d rows, %d records\n",
		e.Source.Index.Header().IndexedCount, e.Source.Table.Header().RecordCount)
	return 0
}
