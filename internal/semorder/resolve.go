package semorder

import (
	"strconv"
	"strings"

	"github.com/glyphspace/unigeo/internal/glyph"
)

// DecompFunc returns the decomposition mapping string for a codepoint and
// whether the codepoint has one.
type DecompFunc func(cp uint32) (string, bool)

// ResolveBase traces a codepoint's decomposition to its ultimate base.
// The first non-bracketed whitespace token of each mapping is parsed as a
// hex codepoint; malformed tokens are skipped. Resolution stops at the
// last distinct value when the chain revisits a codepoint, so cyclic data
// terminates instead of looping. Canonical UCD data is acyclic; the guard
// is for corrupted or synthetic inputs.
func ResolveBase(decomp DecompFunc, cp uint32) uint32 {
	visited := map[uint32]struct{}{cp: {}}
	cur := cp
	for {
		mapping, ok := decomp(cur)
		if !ok {
			return cur
		}
		next, ok := firstDecompTarget(mapping)
		if !ok || next == 0 || next == cur || next > glyph.MaxCodepoint {
			return cur
		}
		if _, seen := visited[next]; seen {
			return cur
		}
		visited[next] = struct{}{}
		cur = next
	}
}

// firstDecompTarget parses the first hex token of a decomposition mapping,
// ignoring a leading bracketed type tag like <compat> and any tokens that
// fail to parse.
func firstDecompTarget(mapping string) (uint32, bool) {
	for _, tok := range strings.Fields(mapping) {
		if strings.HasPrefix(tok, "<") {
			continue
		}
		v, err := strconv.ParseUint(tok, 16, 32)
		if err != nil {
			continue
		}
		return uint32(v), true
	}
	return 0, false
}
