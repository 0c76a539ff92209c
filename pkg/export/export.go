// Package export writes a joined view over (input row, status, record)
// given a field-selection list (spec.md §4.9), to either CSV or JSON.
//
// Both writers take an io.Writer directly (SPEC_FULL.md §4.11), rather
// than a path, so callers can export to a file, an HTTP response, or a
// bytes.Buffer in tests.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"

	"io"

	"github.com/DataHenHQ/farm-engine-sub001/pkg/source"
)

// Kind identifies which of the three joined maps (or derived scalar) a
// Field pulls from.
type Kind int

const (
	KindInput Kind = iota
	KindRecord
	KindSpentTime
	KindMatchFlag
)

// Field is one column/key of the export selection list.
type Field struct {
	Kind Kind
	Name string // meaningful only for KindInput/KindRecord
}

// InputField selects a named column from the original input row.
func InputField(name string) Field { return Field{Kind: KindInput, Name: name} }

// RecordField selects a named field from the table record.
func RecordField(name string) Field { return Field{Kind: KindRecord, Name: name} }

// SpentTimeField selects the index value's spent_time.
var SpentTimeField = Field{Kind: KindSpentTime}

// MatchFlagField selects the index value's status (the user-visible
// "match flag").
var MatchFlagField = Field{Kind: KindMatchFlag}

func (f Field) header() string {
	switch f.Kind {
	case KindSpentTime:
		return "spent_time"
	case KindMatchFlag:
		return "matched"
	default:
		return f.Name
	}
}

// ToCSV writes one header row followed by one row per indexed slot.
// Missing input/record fields serialise as an empty string.
func ToCSV(w io.Writer, src *source.Source, fields []Field) error {
	cw := csv.NewWriter(w)

	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.header()
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	count := src.Index.Header().IndexedCount
	for i := uint64(0); i < count; i++ {
		slot, err := src.Data(i)
		if err != nil {
			return err
		}

		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = csvValue(f, slot)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvValue(f Field, slot source.Slot) string {
	switch f.Kind {
	case KindSpentTime:
		return fmt.Sprintf("%d", slot.Index.SpentTime)
	case KindMatchFlag:
		return slot.Index.Status.String()
	case KindInput:
		return slot.InputRow[f.Name]
	case KindRecord:
		v, ok := slot.Record.Get(f.Name)
		if !ok {
			return ""
		}
		return v.String()
	default:
		return ""
	}
}

// ToJSON writes one JSON object per indexed slot, newline-delimited.
// Missing input/record fields serialise as null.
func ToJSON(w io.Writer, src *source.Source, fields []Field) error {
	enc := json.NewEncoder(w)

	count := src.Index.Header().IndexedCount
	for i := uint64(0); i < count; i++ {
		slot, err := src.Data(i)
		if err != nil {
			return err
		}

		obj := make(map[string]any, len(fields))
		for _, f := range fields {
			obj[f.header()] = jsonValue(f, slot)
		}
		if err := enc.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}

func jsonValue(f Field, slot source.Slot) any {
	switch f.Kind {
	case KindSpentTime:
		return slot.Index.SpentTime
	case KindMatchFlag:
		return slot.Index.Status.String()
	case KindInput:
		v, ok := slot.InputRow[f.Name]
		if !ok {
			return nil
		}
		return v
	case KindRecord:
		v, ok := slot.Record.Get(f.Name)
		if !ok {
			return nil
		}
		return v.JSON()
	default:
		return nil
	}
}
