// Package glyph holds the per-codepoint record type and the flat arena
// covering the full Unicode codespace (U+0000..U+10FFFF).
package glyph

// MaxCodepoint is the last valid Unicode codepoint.
const MaxCodepoint = 0x10FFFF

// CodespaceSize is the number of codepoints in the codespace (1,114,112).
const CodespaceSize = MaxCodepoint + 1

// Class is the default classification of a codepoint before any UCD
// properties are overlaid.
type Class uint8

const (
	ClassReserved     Class = 0 // No UCD record, no special range
	ClassSurrogate    Class = 1 // U+D800..U+DFFF
	ClassPrivateUse   Class = 2 // BMP PUA and planes 15-16
	ClassNoncharacter Class = 3 // U+FDD0..U+FDEF and U+xFFFE/U+xFFFF
	ClassAssigned     Class = 4 // Has a UCD record
)

func (c Class) String() string {
	switch c {
	case ClassSurrogate:
		return "surrogate"
	case ClassPrivateUse:
		return "private-use"
	case ClassNoncharacter:
		return "noncharacter"
	case ClassAssigned:
		return "assigned"
	default:
		return "reserved"
	}
}

// Classify returns the default classification for a codepoint by fixed
// numeric-range rules. UCD overlay upgrades matching codepoints to
// ClassAssigned afterwards.
func Classify(cp uint32) Class {
	switch {
	case cp >= 0xD800 && cp <= 0xDFFF:
		return ClassSurrogate
	case cp >= 0xE000 && cp <= 0xF8FF,
		cp >= 0xF0000 && cp <= 0xFFFFD,
		cp >= 0x100000 && cp <= 0x10FFFD:
		return ClassPrivateUse
	case cp >= 0xFDD0 && cp <= 0xFDEF:
		return ClassNoncharacter
	case cp&0xFFFE == 0xFFFE:
		return ClassNoncharacter
	default:
		return ClassReserved
	}
}

// Weights is the first UCA collation element of a codepoint. All zero when
// the codepoint has no collation entry.
type Weights struct {
	Primary   uint16
	Secondary uint16
	Tertiary  uint16
}

// Record carries everything the pipeline derives for one codepoint.
// UCD attribute fields stay zero for unassigned codepoints.
type Record struct {
	Codepoint uint32
	Class     Class

	// UCD attributes
	Name            string
	GeneralCategory string
	Script          string
	Block           string
	Age             string
	Decomposition   string
	CombiningClass  uint8
	Uppercase       uint32 // 0 = no mapping
	Lowercase       uint32
	Titlecase       uint32
	Weights         Weights
	Radical         uint16
	Strokes         uint16

	// Derived by the linearizer
	BaseCodepoint uint32
	PrimaryGroup  uint8
	ScriptGroup   uint32
	SequenceIndex uint32

	// Derived by the embedding/index/identity stages
	Position     [4]float64
	SpatialIndex uint64
	IdentityHash string // from position bytes
	ContentHash  string // from codepoint value
}

// Arena is an owned, flat, index-addressable array of records, one per
// codepoint. Worker goroutines operate on disjoint index ranges into it,
// which makes the parallel compute phase alias-free by construction.
type Arena struct {
	records []Record
}

// NewArena materializes every codepoint in [0, MaxCodepoint] exactly once
// with its default classification. BaseCodepoint starts at the codepoint
// itself.
func NewArena() *Arena {
	recs := make([]Record, CodespaceSize)
	for cp := uint32(0); cp < CodespaceSize; cp++ {
		recs[cp].Codepoint = cp
		recs[cp].Class = Classify(cp)
		recs[cp].BaseCodepoint = cp
	}
	return &Arena{records: recs}
}

// Len returns the number of records (always CodespaceSize).
func (a *Arena) Len() int { return len(a.records) }

// At returns the record for a codepoint. Panics on out-of-range input,
// which is an internal invariant violation.
func (a *Arena) At(cp uint32) *Record { return &a.records[cp] }
