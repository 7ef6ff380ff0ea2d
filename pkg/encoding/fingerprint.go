package encoding

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes an encoded tree. Equal trees encoded by a deterministic
// codec share a fingerprint.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// FingerprintOf encodes v with codec and hashes the result.
func FingerprintOf(codec Codec, v any) (uint64, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return 0, err
	}
	return Fingerprint(data), nil
}

// FormatFingerprint renders a fingerprint as 16 hex digits.
func FormatFingerprint(fp uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], fp)
	return hex.EncodeToString(b[:])
}
