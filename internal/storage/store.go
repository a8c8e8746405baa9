// Package storage persists sessions and shots. Four backends implement the
// same Store contract: in-memory (tests), a single JSON document file,
// embedded SQLite, and Postgres. All of them guarantee that a session and its
// shots are appended atomically, that deletes cascade, and that readers only
// ever observe fully committed state.
package storage

import (
	"context"
	"errors"

	"github.com/claude/rangelog/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id does not exist.
var ErrNotFound = errors.New("session not found")

// Snapshot is a consistent read of the whole store. Sessions are in creation
// order, which is also the order aggregation scans them in.
type Snapshot struct {
	Sessions []models.Session
	Shots    []models.Shot
}

// Store is the persistence contract shared by all backends.
type Store interface {
	// Snapshot returns all sessions and shots as one consistent read.
	Snapshot(ctx context.Context) (*Snapshot, error)
	// ListSessions returns session metadata in creation order.
	ListSessions(ctx context.Context) ([]models.Session, error)
	// GetSession returns one session, or ErrNotFound.
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	// SessionShots returns the shots belonging to one session.
	SessionShots(ctx context.Context, id uuid.UUID) ([]models.Shot, error)
	// FindBySignature returns the session with the given content signature,
	// or (nil, nil) when no such session exists.
	FindBySignature(ctx context.Context, signature string) (*models.Session, error)
	// AppendSession persists a session together with all of its shots.
	// Readers never observe the session without its shots or vice versa.
	AppendSession(ctx context.Context, session models.Session, shots []models.Shot) error
	// DeleteSession removes a session and cascades to its shots. Deleting an
	// unknown id is not an error.
	DeleteSession(ctx context.Context, id uuid.UUID) error
	// Close releases backend resources.
	Close() error
}
