package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/claude/rangelog/internal/models"
	"github.com/google/uuid"
)

// File stores everything in one JSON document with `sessions` and `shots`
// collections. Writes replace the whole document via a temp file and rename,
// so readers see either the previous or the next complete state, never a
// partial write.
type File struct {
	mu   sync.RWMutex
	path string
}

type document struct {
	Sessions []models.Session `json:"sessions"`
	Shots    []models.Shot    `json:"shots"`
}

// NewFile opens (or creates) the JSON document store at path.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	f := &File{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := f.save(&document{}); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *File) load() (*document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	doc := &document{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.path, err)
		}
	}
	return doc, nil
}

func (f *File) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

func (f *File) Snapshot(ctx context.Context) (*Snapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	return &Snapshot{Sessions: doc.Sessions, Shots: doc.Shots}, nil
}

func (f *File) ListSessions(ctx context.Context) ([]models.Session, error) {
	snap, err := f.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Sessions, nil
}

func (f *File) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	snap, err := f.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range snap.Sessions {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (f *File) SessionShots(ctx context.Context, id uuid.UUID) ([]models.Shot, error) {
	snap, err := f.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var shots []models.Shot
	for _, shot := range snap.Shots {
		if shot.SessionID == id {
			shots = append(shots, shot)
		}
	}
	return shots, nil
}

func (f *File) FindBySignature(ctx context.Context, signature string) (*models.Session, error) {
	snap, err := f.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range snap.Sessions {
		if s.Signature == signature {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (f *File) AppendSession(ctx context.Context, session models.Session, shots []models.Shot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	doc.Sessions = append(doc.Sessions, session)
	doc.Shots = append(doc.Shots, shots...)
	return f.save(doc)
}

func (f *File) DeleteSession(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load()
	if err != nil {
		return err
	}
	sessions := doc.Sessions[:0]
	for _, s := range doc.Sessions {
		if s.ID != id {
			sessions = append(sessions, s)
		}
	}
	doc.Sessions = sessions
	shots := doc.Shots[:0]
	for _, shot := range doc.Shots {
		if shot.SessionID != id {
			shots = append(shots, shot)
		}
	}
	doc.Shots = shots
	return f.save(doc)
}

func (f *File) Close() error { return nil }
