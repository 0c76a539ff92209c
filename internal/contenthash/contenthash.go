// Package contenthash computes the streaming content hash spec.md treats
// as an opaque out-of-scope primitive ("a streaming 32-byte content
// hash"), used to populate IndexHeader.InputHash (SPEC_FULL.md §4.10).
package contenthash

import (
	"hash"
	"hash/fnv"
	"io"
)

// Size is the width of the hash slot this package fills; FNV-1a 64
// produces 8 bytes, zero-padded to fill it (same convention as Str(cap)).
const Size = 32

// New returns a fresh streaming hasher. Callers that need the digest
// alongside another pass over the bytes (e.g. indexing while hashing)
// should wrap their reader in an io.TeeReader writing into it, then call
// Sum once the pass completes.
func New() hash.Hash64 {
	return fnv.New64a()
}

// Sum zero-pads h's current digest to Size bytes.
func Sum(h hash.Hash64) [Size]byte {
	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hash streams all of r through FNV-1a 64 and returns the digest
// zero-padded to Size bytes.
func Hash(r io.Reader) ([Size]byte, error) {
	h := New()
	if _, err := io.Copy(h, r); err != nil {
		return [Size]byte{}, err
	}
	return Sum(h), nil
}
