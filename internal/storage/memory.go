package storage

import (
	"context"
	"sync"

	"github.com/claude/rangelog/internal/models"
	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and throwaway runs.
type Memory struct {
	mu       sync.RWMutex
	sessions []models.Session
	shots    []models.Shot
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Snapshot(ctx context.Context) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Snapshot{
		Sessions: append([]models.Session(nil), m.sessions...),
		Shots:    append([]models.Shot(nil), m.shots...),
	}, nil
}

func (m *Memory) ListSessions(ctx context.Context) ([]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Session(nil), m.sessions...), nil
}

func (m *Memory) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SessionShots(ctx context.Context, id uuid.UUID) ([]models.Shot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var shots []models.Shot
	for _, shot := range m.shots {
		if shot.SessionID == id {
			shots = append(shots, shot)
		}
	}
	return shots, nil
}

func (m *Memory) FindBySignature(ctx context.Context, signature string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.Signature == signature {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) AppendSession(ctx context.Context, session models.Session, shots []models.Shot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, session)
	m.shots = append(m.shots, shots...)
	return nil
}

func (m *Memory) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := m.sessions[:0]
	for _, s := range m.sessions {
		if s.ID != id {
			sessions = append(sessions, s)
		}
	}
	m.sessions = sessions
	shots := m.shots[:0]
	for _, shot := range m.shots {
		if shot.SessionID != id {
			shots = append(shots, shot)
		}
	}
	m.shots = shots
	return nil
}

func (m *Memory) Close() error { return nil }
