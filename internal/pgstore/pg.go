package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PG bulk-loads rows into PostgreSQL with the COPY protocol.
//
// Physicality ids are content-addressed, so identical positions produce
// identical ids. COPY cannot express ON CONFLICT, so PG tracks the ids it
// has already sent and drops repeats before they reach the wire: the
// natural key deduplicates, it does not error.
type PG struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
	sent map[string]struct{}
}

// NewPG wraps a pgx pool.
func NewPG(pool *pgxpool.Pool, log zerolog.Logger) *PG {
	return &PG{pool: pool, log: log, sent: make(map[string]struct{}, 1<<20)}
}

// EnsureSchema creates the two target relations when absent.
func (s *PG) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS physicality (
			id            uuid PRIMARY KEY,
			spatial_index text NOT NULL,
			geom          bytea NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS atom (
			id             uuid PRIMARY KEY,
			codepoint      bigint NOT NULL,
			physicality_id uuid NOT NULL REFERENCES physicality(id)
		)`,
	}
	for _, q := range ddl {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// WritePhysicality appends a batch of physicality rows via COPY.
func (s *PG) WritePhysicality(ctx context.Context, rows []PhysicalityRow) error {
	fresh := make([]PhysicalityRow, 0, len(rows))
	for _, r := range rows {
		if _, dup := s.sent[r.ID]; dup {
			continue
		}
		s.sent[r.ID] = struct{}{}
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		return nil
	}

	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"physicality"},
		[]string{"id", "spatial_index", "geom"},
		pgx.CopyFromSlice(len(fresh), func(i int) ([]any, error) {
			return []any{fresh[i].ID, fresh[i].SpatialIndex, fresh[i].Geometry}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy physicality: %w", err)
	}
	if int(n) != len(fresh) {
		return fmt.Errorf("copy physicality: wrote %d of %d rows", n, len(fresh))
	}
	s.log.Debug().Int("rows", len(fresh)).Int("deduped", len(rows)-len(fresh)).Msg("physicality batch written")
	return nil
}

// WriteAtoms appends a batch of atom rows via COPY. Callers must have
// flushed the referenced physicality rows first.
func (s *PG) WriteAtoms(ctx context.Context, rows []AtomRow) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"atom"},
		[]string{"id", "codepoint", "physicality_id"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{rows[i].ID, int64(rows[i].Codepoint), rows[i].PhysicalityID}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy atom: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy atom: wrote %d of %d rows", n, len(rows))
	}
	s.log.Debug().Int("rows", len(rows)).Msg("atom batch written")
	return nil
}
