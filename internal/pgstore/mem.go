package pgstore

import (
	"context"
	"fmt"
)

// Mem is an in-memory Writer for tests and dry runs. It enforces the
// physicality-before-atom ordering the way the real foreign key would.
type Mem struct {
	Physicality map[string]PhysicalityRow
	Atoms       map[string]AtomRow
	Batches     int // physicality batches received
}

// NewMem returns an empty in-memory writer.
func NewMem() *Mem {
	return &Mem{
		Physicality: make(map[string]PhysicalityRow),
		Atoms:       make(map[string]AtomRow),
	}
}

// WritePhysicality records rows; repeated ids deduplicate silently, as
// content-addressing intends.
func (m *Mem) WritePhysicality(_ context.Context, rows []PhysicalityRow) error {
	for _, r := range rows {
		m.Physicality[r.ID] = r
	}
	m.Batches++
	return nil
}

// WriteAtoms records rows and rejects any row whose physicality reference
// has not been written yet.
func (m *Mem) WriteAtoms(_ context.Context, rows []AtomRow) error {
	for _, r := range rows {
		if _, ok := m.Physicality[r.PhysicalityID]; !ok {
			return fmt.Errorf("atom %s references unwritten physicality %s", r.ID, r.PhysicalityID)
		}
		if prev, dup := m.Atoms[r.ID]; dup && prev.Codepoint != r.Codepoint {
			return fmt.Errorf("atom id %s written for both %#x and %#x", r.ID, prev.Codepoint, r.Codepoint)
		}
		m.Atoms[r.ID] = r
	}
	return nil
}
