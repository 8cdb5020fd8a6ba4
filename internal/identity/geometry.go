package identity

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Geometry encoding: 1 + 4 + 32 = 37 bytes total
// - Byte-order marker (1 byte): 0x01, little-endian
// - Geometry type tag (uint32 LE): 4 bytes, point with Z and M flags
// - X, Y, Z, W (float64 LE): 8 bytes each
//
// This layout is a storage contract with the geometry column; it must be
// reproduced bit for bit.

const (
	geomSize = 1 + 4 + 4*8

	markerLittleEndian = 0x01

	// Point type with the Z and M dimension flags set.
	typePointZM = 0x00000001 | 0x80000000 | 0x40000000
)

// EncodeGeometry serializes a position to the binary geometry layout.
func EncodeGeometry(p [4]float64) []byte {
	buf := make([]byte, geomSize)
	buf[0] = markerLittleEndian
	binary.LittleEndian.PutUint32(buf[1:5], typePointZM)
	for i, v := range p {
		binary.LittleEndian.PutUint64(buf[5+i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodeGeometry is the inverse of EncodeGeometry.
func DecodeGeometry(data []byte) ([4]float64, error) {
	if len(data) < geomSize {
		return [4]float64{}, fmt.Errorf("geometry too short: got %d bytes, need %d", len(data), geomSize)
	}
	if data[0] != markerLittleEndian {
		return [4]float64{}, fmt.Errorf("unexpected byte-order marker %#x", data[0])
	}
	if tag := binary.LittleEndian.Uint32(data[1:5]); tag != typePointZM {
		return [4]float64{}, fmt.Errorf("unexpected geometry type %#x", tag)
	}
	var p [4]float64
	for i := range p {
		p[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[5+i*8:]))
	}
	return p, nil
}

// HexGeometry renders the encoding with a backslash-x prefix for
// embedding in text protocols.
func HexGeometry(p [4]float64) string {
	return `\x` + hex.EncodeToString(EncodeGeometry(p))
}
