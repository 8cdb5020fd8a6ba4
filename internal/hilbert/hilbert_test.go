package hilbert_test

import (
	"testing"

	"github.com/glyphspace/unigeo/internal/hilbert"
)

func TestEncodeOrigin(t *testing.T) {
	if got := hilbert.Encode([4]uint32{0, 0, 0, 0}); got != 0 {
		t.Errorf("Encode(origin) = %d, want 0", got)
	}
}

func TestRoundTrip(t *testing.T) {
	coords := [][4]uint32{
		{0, 0, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 0, 1},
		{12345, 54321, 1, 65535},
		{65535, 65535, 65535, 65535},
		{32768, 16384, 8192, 4096},
	}
	for _, c := range coords {
		ix := hilbert.Encode(c)
		if got := hilbert.Decode(ix); got != c {
			t.Errorf("round trip %v -> %v -> %v", c, ix, got)
		}
	}
}

func TestCurveIsContinuous(t *testing.T) {
	// Defining property of the Hilbert curve: consecutive indices map to
	// grid cells that differ by exactly one step along exactly one axis.
	prev := hilbert.Decode(0)
	for ix := hilbert.Index(1); ix < 4096; ix++ {
		cur := hilbert.Decode(ix)
		diff := 0
		for i := 0; i < 4; i++ {
			switch {
			case cur[i] == prev[i]:
			case cur[i] == prev[i]+1 || cur[i]+1 == prev[i]:
				diff++
			default:
				t.Fatalf("index %d jumps more than one step on axis %d: %v -> %v", ix, i, prev, cur)
			}
		}
		if diff != 1 {
			t.Fatalf("index %d changes %d axes: %v -> %v", ix, diff, prev, cur)
		}
		prev = cur
	}
}

func TestEncodeDistinct(t *testing.T) {
	seen := make(map[hilbert.Index][4]uint32)
	for a := uint32(0); a < 8; a++ {
		for b := uint32(0); b < 8; b++ {
			for c := uint32(0); c < 8; c++ {
				for d := uint32(0); d < 8; d++ {
					co := [4]uint32{a, b, c, d}
					ix := hilbert.Encode(co)
					if prev, dup := seen[ix]; dup {
						t.Fatalf("index %d for both %v and %v", ix, prev, co)
					}
					seen[ix] = co
				}
			}
		}
	}
}

func TestFromPosition(t *testing.T) {
	// Corner positions land on corner cells, and the mapping is stable.
	lo := hilbert.FromPosition([4]float64{-1, -1, -1, -1})
	if got := hilbert.Decode(lo); got != [4]uint32{0, 0, 0, 0} {
		t.Errorf("(-1,...) maps to cell %v", got)
	}
	hi := hilbert.FromPosition([4]float64{1, 1, 1, 1})
	if got := hilbert.Decode(hi); got != [4]uint32{65535, 65535, 65535, 65535} {
		t.Errorf("(1,...) maps to cell %v", got)
	}
	// Out-of-range inputs clamp instead of wrapping.
	if hilbert.FromPosition([4]float64{-1.5, 2, 0, 0}) != hilbert.FromPosition([4]float64{-1, 1, 0, 0}) {
		t.Error("clamping failed")
	}
}

func TestIndexString(t *testing.T) {
	if got := hilbert.Index(0xABC).String(); got != "0000000000000abc" {
		t.Errorf("String() = %q", got)
	}
}
