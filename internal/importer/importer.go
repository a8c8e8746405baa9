// Package importer seeds the store from a directory of CSV exports. Files
// are processed one at a time in filename order; each file's outcome is
// independent, so an empty or duplicate file never aborts the rest of the
// batch.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/rangelog/internal/ingest"
	"github.com/claude/rangelog/internal/ingest/garmin"
)

// Stats tracks batch seeding progress.
type Stats struct {
	FilesProcessed  int
	SessionsCreated int
	ShotsCreated    int
	Duplicates      int
	EmptyFiles      int
	Malformed       int
	FilesErrored    int
}

// Importer reads CSV files from a directory and ingests each one.
type Importer struct {
	ing   *ingest.Provider
	log   *slog.Logger
	stats Stats
}

// New creates a new Importer.
func New(ing *ingest.Provider, log *slog.Logger) *Importer {
	return &Importer{ing: ing, log: log}
}

// Import processes every .csv file under dir in filename order.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		imp.stats.FilesProcessed++
		imp.importFile(ctx, filepath.Join(dir, entry.Name()), entry.Name())
	}

	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path, name string) {
	data, err := os.ReadFile(path)
	if err != nil {
		imp.stats.FilesErrored++
		imp.log.Error("reading file", "file", name, "error", err)
		return
	}

	session, err := imp.ing.Ingest(ctx, data, name)
	if err != nil {
		var dup *ingest.DuplicateError
		switch {
		case errors.As(err, &dup):
			imp.stats.Duplicates++
			imp.log.Info("skipping duplicate file", "file", name, "existing_id", dup.Existing.ID)
		case errors.Is(err, ingest.ErrEmptyFile):
			imp.stats.EmptyFiles++
			imp.log.Info("skipping empty file", "file", name)
		case errors.Is(err, garmin.ErrMalformedInput):
			imp.stats.Malformed++
			imp.log.Warn("skipping malformed file", "file", name, "error", err)
		default:
			imp.stats.FilesErrored++
			imp.log.Error("ingesting file", "file", name, "error", err)
		}
		return
	}

	imp.stats.SessionsCreated++
	imp.stats.ShotsCreated += session.ShotCount
}
