package primitive

import "github.com/google/uuid"

// UUIDBytes is the fixed on-disk width of a UUID (16 raw bytes, no
// text encoding).
const UUIDBytes = 16

// WriteUUID writes the 16 raw bytes of u.
func WriteUUID(buf []byte, u uuid.UUID) error {
	if len(buf) < UUIDBytes {
		return sizeErr(UUIDBytes, len(buf))
	}
	copy(buf, u[:])
	return nil
}

// ReadUUID reads 16 raw bytes into a uuid.UUID.
func ReadUUID(buf []byte) (uuid.UUID, error) {
	if len(buf) != UUIDBytes {
		return uuid.UUID{}, sizeErr(UUIDBytes, len(buf))
	}
	var u uuid.UUID
	copy(u[:], buf)
	return u, nil
}
