// Package hilbert encodes 4-dimensional grid coordinates to a Hilbert
// space-filling-curve index. Nearby points in the hypercube map to nearby
// indices, which is what makes the index useful for spatial range scans in
// the store.
//
// The bit depth is fixed at 16 bits per axis so the full index always fits
// a uint64 and is comparable across platforms and runs.
package hilbert

import (
	"fmt"
	"math"
)

const (
	// Dims is the dimensionality of the curve.
	Dims = 4

	// Bits is the precision per axis. Fixed platform-wide: changing it
	// changes every stored index.
	Bits = 16

	// MaxCoord is the largest per-axis grid coordinate.
	MaxCoord = 1<<Bits - 1
)

// Index is a 64-bit Hilbert curve index.
type Index uint64

// String returns the canonical fixed-width hex form used for storage.
func (ix Index) String() string { return fmt.Sprintf("%016x", uint64(ix)) }

// Encode maps grid coordinates to their Hilbert index using Skilling's
// transpose algorithm. Coordinates above MaxCoord are an invariant
// violation and panic.
func Encode(coords [Dims]uint32) Index {
	for i, c := range coords {
		if c > MaxCoord {
			panic(fmt.Sprintf("hilbert: coordinate %d out of range: %#x", i, c))
		}
	}
	x := coords

	// Inverse undo excess work.
	for q := uint32(1) << (Bits - 1); q > 1; q >>= 1 {
		p := q - 1
		for i := 0; i < Dims; i++ {
			if x[i]&q != 0 {
				x[0] ^= p
			} else {
				t := (x[0] ^ x[i]) & p
				x[0] ^= t
				x[i] ^= t
			}
		}
	}

	// Gray encode.
	for i := 1; i < Dims; i++ {
		x[i] ^= x[i-1]
	}
	var t uint32
	for q := uint32(1) << (Bits - 1); q > 1; q >>= 1 {
		if x[Dims-1]&q != 0 {
			t ^= q - 1
		}
	}
	for i := 0; i < Dims; i++ {
		x[i] ^= t
	}

	return Index(interleave(x))
}

// Decode is the inverse of Encode. It exists for verification and
// debugging; the pipeline itself only encodes.
func Decode(ix Index) [Dims]uint32 {
	x := deinterleave(uint64(ix))

	// Gray decode by H ^ (H/2).
	t := x[Dims-1] >> 1
	for i := Dims - 1; i > 0; i-- {
		x[i] ^= x[i-1]
	}
	x[0] ^= t

	// Undo excess work.
	for q := uint32(2); q != 1<<Bits; q <<= 1 {
		p := q - 1
		for i := Dims - 1; i >= 0; i-- {
			if x[i]&q != 0 {
				x[0] ^= p
			} else {
				t := (x[0] ^ x[i]) & p
				x[0] ^= t
				x[i] ^= t
			}
		}
	}
	return x
}

// FromPosition rescales an S³ position from [-1, 1] per axis into the
// unit hypercube and encodes the resulting grid cell.
func FromPosition(p [4]float64) Index {
	var coords [Dims]uint32
	for i, v := range p {
		u := (v + 1) / 2
		u = math.Max(0, math.Min(1, u))
		coords[i] = uint32(math.Round(u * MaxCoord))
	}
	return Encode(coords)
}

// interleave packs bit j of axis i into the transpose-ordered index, most
// significant bits first.
func interleave(x [Dims]uint32) uint64 {
	var h uint64
	for bit := Bits - 1; bit >= 0; bit-- {
		for i := 0; i < Dims; i++ {
			h = h<<1 | uint64(x[i]>>uint(bit)&1)
		}
	}
	return h
}

func deinterleave(h uint64) [Dims]uint32 {
	var x [Dims]uint32
	for pos := Dims*Bits - 1; pos >= 0; pos-- {
		i := (Dims*Bits - 1 - pos) % Dims
		bit := uint(pos) / Dims
		x[i] |= uint32(h>>uint(pos)&1) << bit
	}
	return x
}
