package glyph_test

import (
	"testing"

	"github.com/glyphspace/unigeo/internal/glyph"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		cp   uint32
		want glyph.Class
	}{
		{0x0041, glyph.ClassReserved}, // assigned only after UCD overlay
		{0xD800, glyph.ClassSurrogate},
		{0xDFFF, glyph.ClassSurrogate},
		{0xE000, glyph.ClassPrivateUse},
		{0xF8FF, glyph.ClassPrivateUse},
		{0xF0000, glyph.ClassPrivateUse},
		{0xFFFFD, glyph.ClassPrivateUse},
		{0x100000, glyph.ClassPrivateUse},
		{0x10FFFD, glyph.ClassPrivateUse},
		{0xFDD0, glyph.ClassNoncharacter},
		{0xFDEF, glyph.ClassNoncharacter},
		{0xFFFE, glyph.ClassNoncharacter},
		{0xFFFF, glyph.ClassNoncharacter},
		{0x1FFFE, glyph.ClassNoncharacter},
		{0x10FFFE, glyph.ClassNoncharacter},
		{0x10FFFF, glyph.ClassNoncharacter},
		{0x0378, glyph.ClassReserved},
	}
	for _, c := range cases {
		if got := glyph.Classify(c.cp); got != c.want {
			t.Errorf("Classify(U+%04X) = %v, want %v", c.cp, got, c.want)
		}
	}
}

func TestArenaCoverage(t *testing.T) {
	a := glyph.NewArena()
	if a.Len() != glyph.CodespaceSize {
		t.Fatalf("arena size = %d, want %d", a.Len(), glyph.CodespaceSize)
	}
	// Every codepoint appears exactly once, at its own index, with the
	// base codepoint defaulting to itself.
	for _, cp := range []uint32{0, 0x41, 0xD800, 0xE000, 0x10FFFF} {
		rec := a.At(cp)
		if rec.Codepoint != cp {
			t.Errorf("record at %#x has codepoint %#x", cp, rec.Codepoint)
		}
		if rec.BaseCodepoint != cp {
			t.Errorf("record at %#x has base %#x, want self", cp, rec.BaseCodepoint)
		}
		if rec.Class != glyph.Classify(cp) {
			t.Errorf("record at %#x has class %v", cp, rec.Class)
		}
	}
}
