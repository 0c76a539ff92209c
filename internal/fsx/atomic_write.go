package fsx

import (
	"bytes"

	"github.com/natefinch/atomic"
)

// WriteFileAtomic writes data to path such that other processes never
// observe a partially written file: it stages the content in a sibling
// temp file and renames it over path.
//
// Used by table creation so a crash mid-write never leaves a partial
// table file; index files are created in place, not through this helper.
func WriteFileAtomic(path string, data []byte) error {
	return atomic.WriteFile(path, bytes.NewReader(data))
}
