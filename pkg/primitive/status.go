package primitive

import (
	"fmt"

	"github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"
)

// Status is the per-record progress flag stored in an index Value.
// It doubles as the match-flag enum spec.md refers to: None means
// unprocessed, Yes/No/Skip are the three terminal outcomes a worker can
// report.
type Status byte

const StatusBytes = 1

const (
	StatusNone Status = 0x00
	StatusYes  Status = 0x59 // 'Y'
	StatusNo   Status = 0x4E // 'N'
	StatusSkip Status = 0x53 // 'S'
)

func (Status) BYTES() int { return StatusBytes }

func (s Status) WriteAsBytes(buf []byte) error {
	if len(buf) < StatusBytes {
		return sizeErr(StatusBytes, len(buf))
	}
	switch s {
	case StatusNone, StatusYes, StatusNo, StatusSkip:
		buf[0] = byte(s)
		return nil
	default:
		return fmt.Errorf("%w: status discriminant 0x%02x", engineerr.ErrInvalidValue, byte(s))
	}
}

// StatusFromByteSlice strictly validates length and discriminant. A
// malformed stored byte (e.g. 'X') is ErrInvalidFormat, never a panic.
func StatusFromByteSlice(buf []byte) (Status, error) {
	if len(buf) != StatusBytes {
		return StatusNone, sizeErr(StatusBytes, len(buf))
	}

	s := Status(buf[0])
	switch s {
	case StatusNone, StatusYes, StatusNo, StatusSkip:
		return s, nil
	default:
		return StatusNone, fmt.Errorf("%w: status discriminant 0x%02x", engineerr.ErrInvalidFormat, buf[0])
	}
}

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "None"
	case StatusYes:
		return "Yes"
	case StatusNo:
		return "No"
	case StatusSkip:
		return "Skip"
	default:
		return fmt.Sprintf("Status(0x%02x)", byte(s))
	}
}
