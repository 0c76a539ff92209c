package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/engine"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/record"
)

// runInsert AVL-inserts a new gid and appends its typed record
// (spec.md §4.6). The store must already exist; --field is only needed
// if it doesn't (first-run schema).
func runInsert(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("insert", errOut)
	indexPath := fs.String("index", "", "path to the .fmbindex file")
	tablePath := fs.String("table", "", "path to the .fmtable file")
	inputPath := fs.String("input", "", "path to the source CSV")
	name := fs.String("name", "", "store name")
	gid := fs.String("gid", "", "gid to insert")
	fields := fs.StringArray("field", nil, "schema field, name:type[:cap] (repeatable, first run only)")
	values := fs.StringArray("value", nil, "name=value record field (repeatable)")

	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}
	if *indexPath == "" || *tablePath == "" || *inputPath == "" || *name == "" || *gid == "" {
		fmt.Fprintln(errOut, "error: --index, --table, --input, --name and --gid are required")
		return exitInvalidArgs
	}

	schema, err := parseSchema(*fields)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitInvalidArgs
	}
	e, err := engine.Open(zap.NewNop(), fsx.NewReal(), *indexPath, *tablePath, *inputPath,
		*name, uuid.New(), schema, false, false)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}

	rv := make(map[string]record.Value, len(*values))
	for _, kv := range *values {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			fmt.Fprintf(errOut, "error: invalid --value %q, want name=value\n", kv)
			return exitInvalidArgs
		}
		v, err := parseValue(e.Source.Table.Schema(), parts[0], parts[1])
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitInvalidArgs
		}
		rv[parts[0]] = v
	}

	slot, inserted, err := e.Insert(*gid, rv)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}

	if inserted {
		fmt.Fprintf(out, "inserted %q at slot %d\n", *gid, slot)
	} else {
		fmt.Fprintf(out, "%q already indexed at slot %d\n", *gid, slot)
	}
	return 0
}
