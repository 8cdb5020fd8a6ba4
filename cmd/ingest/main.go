package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glyphspace/unigeo/internal/logx"
	"github.com/glyphspace/unigeo/internal/pgstore"
	"github.com/glyphspace/unigeo/internal/pipeline"
	"github.com/glyphspace/unigeo/internal/ucd"
)

func main() {
	defaultDSN := os.Getenv("UNIGEO_PG_DSN")

	var (
		ucdDir    = flag.String("ucd", "./data/ucd", "UCD snapshot directory (files may be .zst)")
		dsn       = flag.String("dsn", defaultDSN, "PostgreSQL DSN (defaults to UNIGEO_PG_DSN)")
		workers   = flag.Int("workers", runtime.GOMAXPROCS(0), "Parallel compute workers")
		batchSize = flag.Int("batch", 100000, "Rows per write batch")
		dryRun    = flag.Bool("dry-run", false, "Compute everything, write nowhere")
	)
	flag.Parse()

	if *dsn == "" && !*dryRun {
		fmt.Fprintln(os.Stderr, "Usage: ingest --ucd <dir> --dsn <postgres-dsn> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger()
	logger.Info().
		Str("ucd", *ucdDir).
		Int("workers", *workers).
		Int("batch", *batchSize).
		Bool("dry_run", *dryRun).
		Msg("starting ingest")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := ucd.Load(*ucdDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load UCD snapshot")
	}

	var writer pgstore.Writer
	if *dryRun {
		writer = pgstore.NewMem()
	} else {
		pool, err := pgxpool.New(ctx, *dsn)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to store")
		}
		defer pool.Close()

		pg := pgstore.NewPG(pool, logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("ensure schema")
		}
		writer = pg
	}

	p := pipeline.New(pipeline.Config{
		Workers:   *workers,
		BatchSize: *batchSize,
		Logger:    logger,
	}, src, writer)

	summary, err := p.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Str("stage", p.Stage().String()).Msg("ingest failed")
	}

	logger.Info().
		Int("assigned", summary.Assigned).
		Int("unassigned", summary.Unassigned).
		Int("scripts", summary.Scripts).
		Dur("elapsed", summary.Elapsed).
		Msg("ingest complete")
}
