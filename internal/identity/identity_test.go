package identity_test

import (
	"encoding/binary"
	"regexp"
	"strings"
	"testing"

	"github.com/glyphspace/unigeo/internal/identity"
)

var uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestForPositionShape(t *testing.T) {
	id := identity.ForPosition([4]float64{0.5, -0.5, 0.5, 0.5})
	if !uuidShape.MatchString(id) {
		t.Errorf("identity %q is not UUID-shaped", id)
	}
}

func TestForPositionStable(t *testing.T) {
	p := [4]float64{0.1, 0.2, 0.3, 0.4}
	if identity.ForPosition(p) != identity.ForPosition(p) {
		t.Error("identity not stable across calls")
	}
}

func TestForPositionContentAddressed(t *testing.T) {
	a := identity.ForPosition([4]float64{0.1, 0.2, 0.3, 0.4})
	b := identity.ForPosition([4]float64{0.1, 0.2, 0.3, 0.4})
	c := identity.ForPosition([4]float64{0.1, 0.2, 0.3, 0.40000001})
	if a != b {
		t.Error("identical positions must collide")
	}
	if a == c {
		t.Error("distinct positions must not collide")
	}
}

func TestForCodepoint(t *testing.T) {
	a := identity.ForCodepoint(0x41)
	if !uuidShape.MatchString(a) {
		t.Errorf("identity %q is not UUID-shaped", a)
	}
	if a == identity.ForCodepoint(0x42) {
		t.Error("distinct codepoints must not collide")
	}
	if a != identity.ForCodepoint(0x41) {
		t.Error("codepoint identity not stable")
	}
}

func TestGeometryRoundTrip(t *testing.T) {
	p := [4]float64{0.25, -0.75, 0.125, 0.6123724356957945}
	got, err := identity.DecodeGeometry(identity.EncodeGeometry(p))
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("round trip %v -> %v", p, got)
	}
}

func TestGeometryLayout(t *testing.T) {
	buf := identity.EncodeGeometry([4]float64{1, 0, 0, 0})
	if len(buf) != 37 {
		t.Fatalf("geometry length = %d, want 37", len(buf))
	}
	if buf[0] != 0x01 {
		t.Errorf("byte-order marker = %#x, want 0x01", buf[0])
	}
	if tag := binary.LittleEndian.Uint32(buf[1:5]); tag != 0xC0000001 {
		t.Errorf("type tag = %#x, want 0xC0000001", tag)
	}
	// X = 1.0 as little-endian IEEE-754.
	if x := binary.LittleEndian.Uint64(buf[5:13]); x != 0x3FF0000000000000 {
		t.Errorf("X bits = %#x", x)
	}
}

func TestGeometryDecodeErrors(t *testing.T) {
	if _, err := identity.DecodeGeometry(make([]byte, 10)); err == nil {
		t.Error("short buffer accepted")
	}
	buf := identity.EncodeGeometry([4]float64{0, 0, 0, 0})
	buf[0] = 0x00
	if _, err := identity.DecodeGeometry(buf); err == nil {
		t.Error("big-endian marker accepted")
	}
}

func TestHexGeometry(t *testing.T) {
	s := identity.HexGeometry([4]float64{0, 0, 0, 0})
	if !strings.HasPrefix(s, `\x01`) {
		t.Errorf("hex form %q missing \\x01 prefix", s[:6])
	}
	if len(s) != 2+37*2 {
		t.Errorf("hex form length = %d, want %d", len(s), 2+37*2)
	}
}
