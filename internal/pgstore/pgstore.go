// Package pgstore writes pipeline output to the relational store. Two
// relations are involved: physicality rows (keyed by position identity)
// and atom rows (keyed by codepoint identity) that reference them. Every
// writer must flush a batch's physicality rows before its atom rows; the
// foreign key makes that ordering a correctness requirement, not a
// performance choice.
package pgstore

import (
	"context"
)

// PhysicalityRow is one row of the physicality relation.
type PhysicalityRow struct {
	ID           string // position identity, natural key
	SpatialIndex string // canonical hex form of the Hilbert index
	Geometry     []byte // binary geometry encoding
}

// AtomRow is one row of the atom relation.
type AtomRow struct {
	ID            string // codepoint identity
	Codepoint     uint32
	PhysicalityID string // foreign key into physicality
}

// Writer is the bulk-append contract. Calls happen on a single logical
// writer; per batch, WritePhysicality must complete before WriteAtoms.
type Writer interface {
	WritePhysicality(ctx context.Context, rows []PhysicalityRow) error
	WriteAtoms(ctx context.Context, rows []AtomRow) error
}
