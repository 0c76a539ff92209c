// Package fsx provides the filesystem seam used by the storage engine.
//
// Every engine component (table, index, source) takes an [FS] instead of
// calling the os package directly, so tests can swap in an in-memory
// filesystem without touching engine logic.
package fsx

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// Implementations must behave like [os.File]: Seek/Read/Write operate on
// a single cursor, and Sync forces previously written bytes to stable
// storage.
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Truncate changes the size of the file. See [os.File.Truncate].
	Truncate(size int64) error
}

// FS defines the filesystem operations the engine needs.
//
// [Real] is the only production implementation; tests may substitute a
// fake to exercise healthcheck/corruption paths without touching disk.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Remove deletes a file. See [os.Remove].
	Remove(path string) error

	// Rename moves/renames a file. See [os.Rename]. Atomic on the same filesystem.
	Rename(oldpath, newpath string) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
