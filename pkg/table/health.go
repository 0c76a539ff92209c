package table

import (
	"errors"
	"io"
	"os"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
	"github.com/DataHenHQ/farm-engine-sub001/pkg/field"
)

// Verdict is the outcome of a table healthcheck (spec.md §4.6).
type Verdict int

const (
	VerdictNew Verdict = iota
	VerdictCorrupted
	VerdictNoFields
	VerdictGood
)

func (v Verdict) String() string {
	switch v {
	case VerdictNew:
		return "new"
	case VerdictCorrupted:
		return "corrupted"
	case VerdictNoFields:
		return "no_fields"
	case VerdictGood:
		return "good"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error a failing verdict surfaces to callers,
// or nil for VerdictGood.
func (v Verdict) Err() error {
	switch v {
	case VerdictNew:
		return engineerr.ErrNew
	case VerdictCorrupted:
		return engineerr.ErrCorrupted
	case VerdictNoFields:
		return engineerr.ErrNoFields
	default:
		return nil
	}
}

// healthcheck implements the table column of spec.md §4.6's matrix. It
// returns the verdict plus, when the header was readable, the decoded
// header and schema.
func healthcheck(fsi fsx.FS, path string) (Verdict, *Header, *field.Header, error) {
	info, err := fsi.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return VerdictNew, nil, nil, nil
		}
		return VerdictCorrupted, nil, nil, err
	}
	if info.Size() == 0 {
		return VerdictNew, nil, nil, nil
	}

	f, err := fsi.Open(path)
	if err != nil {
		return VerdictCorrupted, nil, nil, err
	}
	defer f.Close()

	headerBuf := make([]byte, HeaderBytes)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		return VerdictCorrupted, nil, nil, nil
	}
	hdr, err := ReadHeaderFrom(headerBuf)
	if err != nil {
		return VerdictCorrupted, nil, nil, nil
	}

	schema, err := field.ReadHeaderFrom(f)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return VerdictCorrupted, nil, nil, nil
		}
		return VerdictCorrupted, nil, nil, nil
	}

	expected := int64(HeaderBytes) + int64(schema.OnDiskBytes()) + int64(hdr.RecordCount)*int64(schema.RecordBytes())
	if info.Size() != expected {
		return VerdictCorrupted, nil, nil, nil
	}

	if schema.Len() == 0 {
		return VerdictNoFields, &hdr, schema, nil
	}

	return VerdictGood, &hdr, schema, nil
}
