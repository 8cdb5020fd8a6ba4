// Package pipeline orchestrates the full ingestion run: overlay UCD
// properties onto the codespace arena, linearize, compute embeddings and
// identities in parallel, and bulk-load the relational store in
// foreign-key order.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/glyphspace/unigeo/internal/glyph"
	"github.com/glyphspace/unigeo/internal/hilbert"
	"github.com/glyphspace/unigeo/internal/identity"
	"github.com/glyphspace/unigeo/internal/pgstore"
	"github.com/glyphspace/unigeo/internal/semorder"
	"github.com/glyphspace/unigeo/internal/sphere"
	"github.com/glyphspace/unigeo/internal/ucd"
)

// Stage identifies where a run currently is. Transitions only move
// forward; any stage failure is terminal for the run.
type Stage int32

const (
	StageIdle Stage = iota
	StageLoading
	StageLinearizing
	StageEmbedding
	StageWriting
	StageUnassigned
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageLoading:
		return "loading"
	case StageLinearizing:
		return "linearizing"
	case StageEmbedding:
		return "embedding"
	case StageWriting:
		return "writing"
	case StageUnassigned:
		return "unassigned"
	case StageDone:
		return "done"
	default:
		return "failed"
	}
}

// Config configures a run.
type Config struct {
	Workers   int // parallel compute goroutines, default GOMAXPROCS
	BatchSize int // rows per write batch in the unassigned phase, default 100000
	Logger    zerolog.Logger
}

// Pipeline is a one-shot batch job: build it, call Run once, inspect the
// summary. There is no cancellation beyond the caller's context and no
// retry; a failed run is simply re-run.
type Pipeline struct {
	cfg   Config
	src   ucd.Source
	w     pgstore.Writer
	stage atomic.Int32

	arena        *glyph.Arena
	assigned     *roaring.Bitmap
	assignedList []uint32
	relations    *semorder.Relations
}

// Summary reports what a completed run produced.
type Summary struct {
	Assigned   int
	Unassigned int
	Scripts    int
	Elapsed    time.Duration
}

// New builds a pipeline over a metadata source and a store writer.
func New(cfg Config, src ucd.Source, w pgstore.Writer) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100000
	}
	return &Pipeline{cfg: cfg, src: src, w: w}
}

// Stage returns the current stage.
func (p *Pipeline) Stage() Stage { return Stage(p.stage.Load()) }

// Relations returns the decomposition/case adjacency recorded during
// linearization. Debugging aid only: ordering never consults it.
func (p *Pipeline) Relations() *semorder.Relations { return p.relations }

// Record returns a copy of the computed record for a codepoint.
// Meaningful after Run has completed.
func (p *Pipeline) Record(cp uint32) glyph.Record { return *p.arena.At(cp) }

func (p *Pipeline) setStage(s Stage) {
	p.stage.Store(int32(s))
	p.cfg.Logger.Info().Str("stage", s.String()).Msg("stage transition")
}

// Run executes the whole pipeline. It runs to completion or returns a
// fatal error; partial writes already flushed stay in the store and are
// the storage layer's transactional concern.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	log := p.cfg.Logger

	fail := func(err error) (*Summary, error) {
		p.stage.Store(int32(StageFailed))
		return nil, err
	}

	p.setStage(StageLoading)
	p.loadAndOverlay()
	nAssigned := len(p.assignedList)
	nUnassigned := glyph.CodespaceSize - nAssigned
	log.Info().Int("assigned", nAssigned).Int("unassigned", nUnassigned).Msg("codespace materialized")

	p.setStage(StageLinearizing)
	res, err := semorder.Linearize(p.arena, p.assignedList)
	if err != nil {
		return fail(fmt.Errorf("linearize: %w", err))
	}
	p.relations = res.Relations
	log.Info().Int("scripts", res.Scripts).Int("edges", len(res.Relations.Edges)).Msg("linearized")

	p.setStage(StageEmbedding)
	if err := p.computeParallel(ctx, p.assignedList, nAssigned, 0); err != nil {
		return fail(fmt.Errorf("embed assigned: %w", err))
	}
	if err := p.checkAssignedPermutation(); err != nil {
		return fail(err)
	}

	p.setStage(StageWriting)
	if err := p.writeBatched(ctx, p.assignedList); err != nil {
		return fail(fmt.Errorf("write assigned: %w", err))
	}
	log.Info().Int("rows", nAssigned).Msg("assigned set written")

	p.setStage(StageUnassigned)
	if err := p.runUnassigned(ctx, nAssigned, nUnassigned); err != nil {
		return fail(err)
	}

	p.setStage(StageDone)
	return &Summary{
		Assigned:   nAssigned,
		Unassigned: nUnassigned,
		Scripts:    res.Scripts,
		Elapsed:    time.Since(start),
	}, nil
}

// loadAndOverlay materializes the arena with default classifications and
// overlays the metadata source onto it. Source iteration is ascending by
// contract, which fixes the script interning order downstream.
func (p *Pipeline) loadAndOverlay() {
	p.arena = glyph.NewArena()
	p.assigned = roaring.New()
	p.assignedList = p.assignedList[:0]

	p.src.Each(func(cp uint32, props ucd.Properties) {
		if cp > glyph.MaxCodepoint {
			return
		}
		rec := p.arena.At(cp)
		rec.Class = glyph.ClassAssigned
		rec.Name = props.Name
		rec.GeneralCategory = props.GeneralCategory
		rec.Script = props.Script
		rec.Block = props.Block
		rec.Age = props.Age
		rec.Decomposition = props.Decomposition
		rec.CombiningClass = props.CombiningClass
		rec.Uppercase = props.Uppercase
		rec.Lowercase = props.Lowercase
		rec.Titlecase = props.Titlecase
		rec.Weights = props.Weights
		rec.Radical = props.Radical
		rec.Strokes = props.Strokes

		p.assigned.Add(cp)
		p.assignedList = append(p.assignedList, cp)
	})
}

// computeParallel fans the embedding/index/identity computation out over
// contiguous, disjoint ranges of cps. Codepoints are unique, so each
// worker owns its records outright and writes back without
// synchronization. latticeN and latticeOffset parameterize the embedding:
// the assigned phase uses (nAssigned, 0), the unassigned continuation
// uses its own count with indices offset past the assigned set.
func (p *Pipeline) computeParallel(ctx context.Context, cps []uint32, latticeN int, latticeOffset uint32) error {
	workers := p.cfg.Workers
	if workers > len(cps) {
		workers = len(cps)
	}
	if workers == 0 {
		return nil
	}

	var g errgroup.Group
	chunk := (len(cps) + workers - 1) / workers
	for start := 0; start < len(cps); start += chunk {
		end := start + chunk
		if end > len(cps) {
			end = len(cps)
		}
		slice := cps[start:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, cp := range slice {
				rec := p.arena.At(cp)
				i := int(rec.SequenceIndex - latticeOffset)
				rec.Position = sphere.Point(i, latticeN)
				if err := sphere.CheckUnit(rec.Position); err != nil {
					return fmt.Errorf("codepoint %#x: %w", cp, err)
				}
				rec.SpatialIndex = uint64(hilbert.FromPosition(rec.Position))
				rec.IdentityHash = identity.ForPosition(rec.Position)
				rec.ContentHash = identity.ForCodepoint(cp)
			}
			return nil
		})
	}
	return g.Wait()
}

// checkAssignedPermutation verifies that the assigned sequence indices
// form exactly {0..nAssigned-1}. A duplicate or out-of-range index means
// the linearizer is broken and the run must not reach the store.
func (p *Pipeline) checkAssignedPermutation() error {
	n := len(p.assignedList)
	seen := make([]bool, n)
	for _, cp := range p.assignedList {
		idx := p.arena.At(cp).SequenceIndex
		if int(idx) >= n {
			return fmt.Errorf("sequence index %d out of range for %#x", idx, cp)
		}
		if seen[idx] {
			return fmt.Errorf("duplicate sequence index %d at %#x", idx, cp)
		}
		seen[idx] = true
	}
	return nil
}

// writeBatched flushes records to the store in batches, physicality rows
// strictly before the atom rows of the same batch.
func (p *Pipeline) writeBatched(ctx context.Context, cps []uint32) error {
	lastLog := time.Now()
	for start := 0; start < len(cps); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(cps) {
			end = len(cps)
		}
		if err := p.writeBatch(ctx, cps[start:end]); err != nil {
			return err
		}
		if time.Since(lastLog) > 10*time.Second {
			p.cfg.Logger.Info().Int("written", end).Int("total", len(cps)).Msg("write progress")
			lastLog = time.Now()
		}
	}
	return nil
}

func (p *Pipeline) writeBatch(ctx context.Context, cps []uint32) error {
	phys := make([]pgstore.PhysicalityRow, 0, len(cps))
	atoms := make([]pgstore.AtomRow, 0, len(cps))
	for _, cp := range cps {
		rec := p.arena.At(cp)
		phys = append(phys, pgstore.PhysicalityRow{
			ID:           rec.IdentityHash,
			SpatialIndex: hilbert.Index(rec.SpatialIndex).String(),
			Geometry:     identity.EncodeGeometry(rec.Position),
		})
		atoms = append(atoms, pgstore.AtomRow{
			ID:            rec.ContentHash,
			Codepoint:     cp,
			PhysicalityID: rec.IdentityHash,
		})
	}
	// Physicality first: atoms reference it by foreign key. A failure
	// here aborts the run before any dependent atom rows are attempted.
	if err := p.w.WritePhysicality(ctx, phys); err != nil {
		return err
	}
	return p.w.WriteAtoms(ctx, atoms)
}

// runUnassigned synthesizes the codepoints absent from the metadata
// source: full range minus the assigned bitmap, in raw codepoint order,
// with sequence indices continuing past the assigned set. Fixed-size
// batches bound peak memory; each batch is parallel-computed and then
// written with the same two-table ordering.
func (p *Pipeline) runUnassigned(ctx context.Context, nAssigned, nUnassigned int) error {
	if nUnassigned == 0 {
		return nil
	}
	next := uint32(nAssigned)
	batch := make([]uint32, 0, p.cfg.BatchSize)
	written := 0
	lastLog := time.Now()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.computeParallel(ctx, batch, nUnassigned, uint32(nAssigned)); err != nil {
			return fmt.Errorf("embed unassigned: %w", err)
		}
		if err := p.writeBatch(ctx, batch); err != nil {
			return fmt.Errorf("write unassigned: %w", err)
		}
		written += len(batch)
		batch = batch[:0]
		if time.Since(lastLog) > 10*time.Second {
			p.cfg.Logger.Info().Int("written", written).Int("total", nUnassigned).Msg("unassigned progress")
			lastLog = time.Now()
		}
		return nil
	}

	for cp := uint32(0); cp <= glyph.MaxCodepoint; cp++ {
		if p.assigned.Contains(cp) {
			continue
		}
		rec := p.arena.At(cp)
		rec.SequenceIndex = next
		next++
		batch = append(batch, cp)
		if len(batch) == p.cfg.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if int(next) != glyph.CodespaceSize {
		return fmt.Errorf("sequence indices end at %d, want %d", next, glyph.CodespaceSize)
	}
	p.cfg.Logger.Info().Int("rows", written).Msg("unassigned set written")
	return nil
}
