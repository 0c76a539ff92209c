package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/engine"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/export"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
)

// runExport writes a joined view of a store to a file as CSV or JSON
// (spec.md §4.9, SPEC_FULL.md §4.11).
func runExport(args []string, out, errOut io.Writer) int {
	fs := newFlagSet("export", errOut)
	indexPath := fs.String("index", "", "path to the .fmbindex file")
	tablePath := fs.String("table", "", "path to the .fmtable file")
	inputPath := fs.String("input", "", "path to the source CSV")
	name := fs.String("name", "", "store name")
	dest := fs.String("out", "", "destination file path")
	format := fs.String("format", "csv", "csv or json")
	inputCols := fs.StringArray("input-field", nil, "input column to export (repeatable)")
	recordCols := fs.StringArray("record-field", nil, "record field to export (repeatable)")
	withSpentTime := fs.Bool("spent-time", true, "include the spent_time column")
	withMatchFlag := fs.Bool("match-flag", true, "include the matched column")

	if err := fs.Parse(args); err != nil {
		return exitInvalidArgs
	}
	if *indexPath == "" || *tablePath == "" || *inputPath == "" || *name == "" || *dest == "" {
		fmt.Fprintln(errOut, "error: --index, --table, --input, --name and --out are required")
		return exitInvalidArgs
	}

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

	var fields []export.Field
	for _, c := range *inputCols {
		fields = append(fields, export.InputField(c))
	}
	for _, c := range *recordCols {
		fields = append(fields, export.RecordField(c))
	}
	if *withSpentTime {
		fields = append(fields, export.SpentTimeField)
	}
	if *withMatchFlag {
		fields = append(fields, export.MatchFlagField)
	}

	f, err := os.Create(*dest)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitInvalidArgs
	}
	defer f.Close()

	switch strings.ToLower(*format) {
	case "csv":
		err = export.ToCSV(f, e.Source, fields)
	case "json":
		err = export.ToJSON(f, e.Source, fields)
	default:
		fmt.Fprintf(errOut, "error: unknown --format %q, want csv or json\n", *format)
		return exitInvalidArgs
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitCodeFor(err)
	}

	fmt.Fprintf(out, "exported to %s\n", *dest)
	return 0
}
