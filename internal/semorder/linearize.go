// Package semorder assigns the deterministic semantic total order over the
// codespace: decomposition base resolution, script-id interning, and the
// multi-key linearization that produces each record's sequence index.
package semorder

import (
	"fmt"
	"sort"

	"github.com/glyphspace/unigeo/internal/glyph"
)

// Category buckets for the highest-priority comparator key, derived from
// the first letter of the general category.
const (
	groupLetter      = 1
	groupNumber      = 2
	groupPunctuation = 3
	groupSymbol      = 4
	groupMark        = 5
	groupSeparator   = 6
	groupOther       = 7
)

// PrimaryGroup buckets a general category string. Empty or unrecognized
// categories land in the last bucket.
func PrimaryGroup(generalCategory string) uint8 {
	if generalCategory == "" {
		return groupOther
	}
	switch generalCategory[0] {
	case 'L':
		return groupLetter
	case 'N':
		return groupNumber
	case 'P':
		return groupPunctuation
	case 'S':
		return groupSymbol
	case 'M':
		return groupMark
	case 'Z':
		return groupSeparator
	default:
		return groupOther
	}
}

// EdgeKind labels a relation edge.
type EdgeKind uint8

const (
	EdgeDecomposition EdgeKind = iota
	EdgeCase
)

// Edge records a derived relationship between two codepoints.
type Edge struct {
	From uint32
	To   uint32
	Kind EdgeKind
}

// Relations is the decomposition/case adjacency built alongside
// linearization. It exists for debugging and explainability only: the
// comparator never reads it, and edges have no effect on sequence indices.
type Relations struct {
	Edges []Edge
}

// Result reports what Linearize produced.
type Result struct {
	Assigned  int // number of assigned codepoints ranked
	Scripts   int // distinct scripts interned
	Relations *Relations
}

// Linearize ranks the assigned codepoints of the arena and writes
// contiguous 0-based sequence indices back into their records. assigned
// must list the assigned codepoints in ascending order; that single linear
// pass fixes the script interning order, so the ranking is a pure function
// of the snapshot contents.
//
// Comparator priority: primary group, script group, UCA primary weight,
// UCA secondary weight, radical, stroke count, base codepoint, raw
// codepoint. The final key is unique, so the order is total.
//
// Unassigned codepoints are not ranked here; the pipeline appends them in
// raw codepoint order with continuation indices.
func Linearize(a *glyph.Arena, assigned []uint32) (*Result, error) {
	interner := NewScriptInterner()
	rel := &Relations{}

	decomp := func(cp uint32) (string, bool) {
		rec := a.At(cp)
		if rec.Class != glyph.ClassAssigned || rec.Decomposition == "" {
			return "", false
		}
		return rec.Decomposition, true
	}

	for i, cp := range assigned {
		if i > 0 && assigned[i-1] >= cp {
			return nil, fmt.Errorf("assigned codepoints out of order at %#x", cp)
		}
		rec := a.At(cp)
		rec.PrimaryGroup = PrimaryGroup(rec.GeneralCategory)
		rec.ScriptGroup = interner.Intern(rec.Script)
		rec.BaseCodepoint = ResolveBase(decomp, cp)

		if rec.BaseCodepoint != cp {
			rel.Edges = append(rel.Edges, Edge{From: cp, To: rec.BaseCodepoint, Kind: EdgeDecomposition})
		}
		if rec.Lowercase != 0 && rec.Lowercase != cp {
			rel.Edges = append(rel.Edges, Edge{From: cp, To: rec.Lowercase, Kind: EdgeCase})
		}
		if rec.Uppercase != 0 && rec.Uppercase != cp {
			rel.Edges = append(rel.Edges, Edge{From: cp, To: rec.Uppercase, Kind: EdgeCase})
		}
	}

	perm := make([]uint32, len(assigned))
	copy(perm, assigned)
	sort.Slice(perm, func(i, j int) bool {
		return Less(a.At(perm[i]), a.At(perm[j]))
	})

	for rank, cp := range perm {
		a.At(cp).SequenceIndex = uint32(rank)
	}

	return &Result{Assigned: len(assigned), Scripts: interner.Len(), Relations: rel}, nil
}

// Less is the semantic comparator. First differing key wins.
func Less(x, y *glyph.Record) bool {
	if x.PrimaryGroup != y.PrimaryGroup {
		return x.PrimaryGroup < y.PrimaryGroup
	}
	if x.ScriptGroup != y.ScriptGroup {
		return x.ScriptGroup < y.ScriptGroup
	}
	if x.Weights.Primary != y.Weights.Primary {
		return x.Weights.Primary < y.Weights.Primary
	}
	if x.Weights.Secondary != y.Weights.Secondary {
		return x.Weights.Secondary < y.Weights.Secondary
	}
	if x.Radical != y.Radical {
		return x.Radical < y.Radical
	}
	if x.Strokes != y.Strokes {
		return x.Strokes < y.Strokes
	}
	if x.BaseCodepoint != y.BaseCodepoint {
		return x.BaseCodepoint < y.BaseCodepoint
	}
	return x.Codepoint < y.Codepoint
}
