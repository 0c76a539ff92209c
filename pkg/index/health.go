package index

import (
	"io"
	"os"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
	"github.com/DataHenHQ/farm-engine-sub001/internal/fsx"
)

// Verdict is the outcome of an index healthcheck (spec.md §4.6).
type Verdict int

const (
	VerdictNew Verdict = iota
	VerdictIncomplete
	VerdictCorrupted
	VerdictIndexed
)

func (v Verdict) String() string {
	switch v {
	case VerdictNew:
		return "new"
	case VerdictIncomplete:
		return "incomplete"
	case VerdictCorrupted:
		return "corrupted"
	case VerdictIndexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error a failing verdict surfaces to callers,
// or nil for VerdictIndexed.
func (v Verdict) Err() error {
	switch v {
	case VerdictNew:
		return engineerr.ErrNew
	case VerdictIncomplete:
		return engineerr.ErrIncomplete
	case VerdictCorrupted:
		return engineerr.ErrCorrupted
	default:
		return nil
	}
}

// healthcheck implements the index column of spec.md §4.6's matrix.
func healthcheck(fsi fsx.FS, path string) (Verdict, *Header, error) {
	info, err := fsi.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return VerdictNew, nil, nil
		}
		return VerdictCorrupted, nil, err
	}
	if info.Size() == 0 {
		return VerdictNew, nil, nil
	}

	f, err := fsi.Open(path)
	if err != nil {
		return VerdictCorrupted, nil, err
	}
	defer f.Close()

	headerBuf := make([]byte, HeaderBytes)
	if _, err := io.ReadFull(f, headerBuf); err != nil {
		return VerdictCorrupted, nil, nil
	}
	hdr, err := ReadHeaderFrom(headerBuf)
	if err != nil {
		return VerdictCorrupted, nil, nil
	}

	expected := int64(HeaderBytes) + int64(hdr.IndexedCount)*int64(ValueBytes)

	if hdr.Indexed {
		if info.Size() != expected {
			return VerdictCorrupted, nil, nil
		}
		return VerdictIndexed, &hdr, nil
	}

	if info.Size() < expected {
		return VerdictCorrupted, nil, nil
	}
	return VerdictIncomplete, &hdr, nil
}
