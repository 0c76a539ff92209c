package primitive

import "github.com/DataHenHQ/farm-engine-sub001/internal/engineerr"

// GIDPayloadCap is the maximum UTF-8 payload length of a gid, the opaque
// key used for AVL search (invariant 3 of the data model).
const GIDPayloadCap = 38

// GIDBytes is the total on-disk slot width of a gid: <len:u64><payload[38]>.
const GIDBytes = U64Bytes + GIDPayloadCap

// WriteGID encodes a gid into a fixed 46-byte slot.
func WriteGID(buf []byte, gid string) error {
	if len(gid) > GIDPayloadCap {
		return engineerr.ErrInvalidValue
	}
	return WriteStr(buf, GIDPayloadCap, gid)
}

// ReadGID decodes a gid from its fixed 46-byte slot.
func ReadGID(buf []byte) (string, error) {
	return ReadStr(buf, GIDPayloadCap)
}
