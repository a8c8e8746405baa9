package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/rangelog/internal/config"
	"github.com/claude/rangelog/internal/importer"
	"github.com/claude/rangelog/internal/ingest"
	"github.com/claude/rangelog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	csvDir := flag.String("path", "", "path to directory of CSV exports (required)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *csvDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: rangelog-seed -config config.yaml -path /path/to/csvs\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*csvDir)
	if err != nil || !info.IsDir() {
		log.Error("CSV path does not exist or is not a directory", "path", *csvDir)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := ""
	if cfg.Storage.Backend == "postgres" {
		dsn = cfg.Storage.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage.Backend, cfg.Storage.Path, dsn)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	imp := importer.New(ingest.NewProvider(store, log), log)
	stats, err := imp.Import(ctx, *csvDir)
	if err != nil {
		log.Error("seed failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("seed complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("seed stats",
		"files_processed", stats.FilesProcessed,
		"sessions_created", stats.SessionsCreated,
		"shots_created", stats.ShotsCreated,
		"duplicates", stats.Duplicates,
		"empty_files", stats.EmptyFiles,
		"malformed", stats.Malformed,
		"files_errored", stats.FilesErrored,
	)
}
