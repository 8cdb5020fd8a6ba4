// Package identity derives the content-addressed identifiers and the
// geometry wire encoding for codepoint positions.
package identity

import (
	"crypto/md5"
	"encoding/binary"
	"math"

	"github.com/google/uuid"
)

// ForPosition hashes the raw 32-byte little-endian encoding of the four
// position components and renders the 16 digest bytes UUID-shaped.
// Content-addressing is the point: two codepoints with bit-identical
// positions collide on purpose, and the store treats the id as a natural
// key.
func ForPosition(p [4]float64) string {
	var buf [32]byte
	for i, v := range p {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return format(md5.Sum(buf[:]))
}

// ForCodepoint hashes the 4-byte little-endian codepoint value alone.
func ForCodepoint(cp uint32) string {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], cp)
	return format(md5.Sum(buf[:]))
}

// format renders 16 digest bytes as lowercase hex with hyphens after
// bytes 4, 6, 8, and 10. The layout is UUID-shaped but the bytes come
// straight from the digest: no RFC-4122 version/variant bits are forced,
// which is why this goes through uuid.FromBytes and never uuid.NewMD5.
func format(sum [16]byte) string {
	id, _ := uuid.FromBytes(sum[:])
	return id.String()
}
