// Package ingest turns raw CSV export bytes into persisted sessions. It owns
// the only read-then-write critical section in the system: checking the
// content signature against stored sessions and appending the new session
// must not interleave with another ingestion.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/rangelog/internal/ingest/garmin"
	"github.com/claude/rangelog/internal/metrics"
	"github.com/claude/rangelog/internal/models"
	"github.com/claude/rangelog/internal/stats"
	"github.com/claude/rangelog/internal/storage"
	"github.com/google/uuid"
)

// ErrEmptyFile is returned when a CSV parses but yields zero shot rows.
// Nothing is persisted and the caller should discard the source file.
var ErrEmptyFile = errors.New("csv contains no shot data")

// DuplicateError reports that a file's content signature matches an already
// stored session. It is an idempotent no-op outcome, not a hard failure.
type DuplicateError struct {
	Existing models.Session
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate of session %s", e.Existing.ID)
}

// Provider builds and persists sessions from CSV exports.
type Provider struct {
	store storage.Store
	log   *slog.Logger

	// mu serializes the signature check and the append. Both the upload
	// handler and the batch seeder go through Ingest, so this is the single
	// lock the whole ingestion path needs.
	mu sync.Mutex
}

// NewProvider creates a new ingest provider.
func NewProvider(store storage.Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Ingest parses one CSV export and persists it as a session with its shots.
// The filename is used for diagnostics only. On success it returns the new
// session; on a duplicate it returns a *DuplicateError identifying the
// pre-existing session, with no state changed.
func (p *Provider) Ingest(ctx context.Context, data []byte, filename string) (*models.Session, error) {
	parsed, err := garmin.Parse(bytes.NewReader(data))
	if err != nil {
		metrics.IngestFailures.Inc()
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if parsed.ShotCount == 0 {
		metrics.IngestFailures.Inc()
		return nil, ErrEmptyFile
	}

	signature := Signature(data)

	p.mu.Lock()
	defer p.mu.Unlock()

	existing, err := p.store.FindBySignature(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("checking signature: %w", err)
	}
	if existing != nil {
		metrics.DuplicateSessions.Inc()
		p.log.Info("skipping duplicate session",
			"file", filename, "existing_id", existing.ID, "signature", signature[:8])
		return nil, &DuplicateError{Existing: *existing}
	}

	session := models.Session{
		ID:             uuid.New(),
		Date:           parsed.FileDate,
		Units:          parsed.Units,
		ShotCount:      parsed.ShotCount,
		AvailableClubs: parsed.AvailableClubs,
		ClubData:       parsed.ClubData,
		Signature:      signature,
		Bounds:         stats.CalcBounds(parsed.Rows),
		CreatedAt:      time.Now().UTC(),
	}

	shots := make([]models.Shot, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		shots = append(shots, models.Shot{
			ID:        uuid.New(),
			SessionID: session.ID,
			Metrics:   row,
		})
	}

	if err := p.store.AppendSession(ctx, session, shots); err != nil {
		metrics.IngestFailures.Inc()
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	metrics.SessionsIngested.Inc()
	metrics.ShotsIngested.Add(float64(len(shots)))
	p.log.Info("session ingested",
		"file", filename, "id", session.ID, "shots", session.ShotCount,
		"clubs", len(session.AvailableClubs))
	return &session, nil
}
