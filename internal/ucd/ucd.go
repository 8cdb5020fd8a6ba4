// Package ucd loads Unicode Character Database snapshots from flat files
// and exposes them as a codepoint-keyed metadata source.
package ucd

import (
	"github.com/glyphspace/unigeo/internal/glyph"
)

// Properties is the UCD attribute set for one assigned codepoint.
type Properties struct {
	Name            string
	GeneralCategory string
	Script          string
	Block           string
	Age             string
	Decomposition   string
	CombiningClass  uint8
	Uppercase       uint32
	Lowercase       uint32
	Titlecase       uint32
	Weights         glyph.Weights
	Radical         uint16
	Strokes         uint16
}

// Source is the metadata store contract the pipeline consumes. Each must
// iterate in ascending codepoint order: script-id interning depends on the
// iteration order, so the order is part of the contract.
type Source interface {
	Lookup(cp uint32) (Properties, bool)
	Each(fn func(cp uint32, p Properties))
	Count() int
}
