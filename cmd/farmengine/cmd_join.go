package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/engine"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
)

// runJoin majority-vote merges two or more existing sources into a new
// one (spec.md §4.8). Each --source is "index_path,table_path,input_path".
func runJoin(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("join", errOut)
	indexPath := fs.String("index", "", "path to the destination .fmbindex file")
	tablePath := fs.String("table", "", "path to the destination .fmtable file")
	name := fs.String("name", "", "destination store name")
	sourceSpecs := fs.StringArray("source", nil, "index_path,table_path,input_path (repeatable, 2+ required)")

	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}
	if *indexPath == "" || *tablePath == "" || *name == "" || len(*sourceSpecs) < 2 {
		fmt.Fprintln(errOut, "error: --index, --table, --name and at least two --source are required")
		return exitInvalidArgs
	}

	emptySchema, err := field.NewHeader(nil)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitInvalidArgs
	}

	fsi := fsx.NewReal()
	peers := make([]*engine.Engine, 0, len(*sourceSpecs))
	for i, spec := range *sourceSpecs {
		paths, err := splitTriple(spec)
		if err != nil {
			fmt.Fprintf(errOut, "error: --source %q: %v\n", spec, err)
			return exitInvalidArgs
		}
		e, err := engine.Open(zap.NewNop(), fsi, paths[0], paths[1], paths[2],
			fmt.Sprintf("%s-source-%d", *name, i), uuid.New(), emptySchema, false, false)
		if err != nil {
			fmt.Fprintf(errOut, "error: opening %q: %v\n", spec, err)
			return exitCodeFor(err)
		}
		peers = append(peers, e)
	}

	joined, err := engine.Join(zap.NewNop(), fsi, *indexPath, *tablePath, *name, uuid.New(),
		peers[0].Source.Table.Schema(), peers...)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}

	fmt.Fprintf(out, "joined %d sources into %d records\n", len(peers), joined.Source.Index.Header().IndexedCount)
	return 0
}

func splitTriple(spec string) ([3]string, error) {
	var out [3]string
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("want 3 comma-separated paths, got %d", len(parts))
	}
	copy(out[:], parts)
	return out, nil
}
