package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/rangelog/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite backs the store with an embedded database file. Schema is created
// on open; no external migration tooling is needed for this backend.
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	date            TEXT,
	units           TEXT NOT NULL,
	shot_count      INTEGER NOT NULL,
	available_clubs TEXT NOT NULL,
	club_data       INTEGER NOT NULL,
	signature       TEXT NOT NULL UNIQUE,
	bounds          TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS shots (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	metrics    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_shots_session ON shots(session_id);
`

// NewSQLite opens (or creates) the SQLite store at path.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func scanSQLiteSession(row interface{ Scan(...any) error }) (*models.Session, error) {
	var (
		sess      models.Session
		id        string
		date      sql.NullString
		units     string
		clubs     string
		bounds    string
		createdAt string
	)
	err := row.Scan(&id, &date, &units, &sess.ShotCount, &clubs, &sess.ClubData, &sess.Signature, &bounds, &createdAt)
	if err != nil {
		return nil, err
	}
	sess.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing session id: %w", err)
	}
	if date.Valid {
		t, err := time.Parse(time.RFC3339Nano, date.String)
		if err != nil {
			return nil, fmt.Errorf("parsing session date: %w", err)
		}
		sess.Date = &t
	}
	if sess.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(units), &sess.Units); err != nil {
		return nil, fmt.Errorf("decoding units: %w", err)
	}
	if err := json.Unmarshal([]byte(clubs), &sess.AvailableClubs); err != nil {
		return nil, fmt.Errorf("decoding clubs: %w", err)
	}
	if err := json.Unmarshal([]byte(bounds), &sess.Bounds); err != nil {
		return nil, fmt.Errorf("decoding bounds: %w", err)
	}
	return &sess, nil
}

func (s *SQLite) querySessions(ctx context.Context, query string, args ...any) ([]models.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		sess, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func (s *SQLite) ListSessions(ctx context.Context) ([]models.Session, error) {
	return s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at, id`)
}

func (s *SQLite) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	sess, err := scanSQLiteSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id.String()))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

func (s *SQLite) FindBySignature(ctx context.Context, signature string) (*models.Session, error) {
	sess, err := scanSQLiteSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE signature = ?`, signature))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up signature: %w", err)
	}
	return sess, nil
}

func (s *SQLite) queryShots(ctx context.Context, query string, args ...any) ([]models.Shot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying shots: %w", err)
	}
	defer rows.Close()

	var shots []models.Shot
	for rows.Next() {
		var (
			shot       models.Shot
			id         string
			sessionID  string
			metrics    string
		)
		if err := rows.Scan(&id, &sessionID, &metrics); err != nil {
			return nil, fmt.Errorf("scanning shot: %w", err)
		}
		if shot.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing shot id: %w", err)
		}
		if shot.SessionID, err = uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("parsing shot session id: %w", err)
		}
		if err := json.Unmarshal([]byte(metrics), &shot.Metrics); err != nil {
			return nil, fmt.Errorf("decoding metrics: %w", err)
		}
		shots = append(shots, shot)
	}
	return shots, rows.Err()
}

func (s *SQLite) SessionShots(ctx context.Context, id uuid.UUID) ([]models.Shot, error) {
	return s.queryShots(ctx,
		`SELECT id, session_id, metrics FROM shots WHERE session_id = ?`, id.String())
}

func (s *SQLite) Snapshot(ctx context.Context) (*Snapshot, error) {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	shots, err := s.queryShots(ctx,
		`SELECT sh.id, sh.session_id, sh.metrics
		 FROM shots sh JOIN sessions se ON se.id = sh.session_id
		 ORDER BY se.created_at, se.id`)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Sessions: sessions, Shots: shots}, nil
}

func (s *SQLite) AppendSession(ctx context.Context, session models.Session, shots []models.Shot) error {
	units, err := json.Marshal(session.Units)
	if err != nil {
		return fmt.Errorf("encoding units: %w", err)
	}
	clubs, err := json.Marshal(session.AvailableClubs)
	if err != nil {
		return fmt.Errorf("encoding clubs: %w", err)
	}
	bounds, err := json.Marshal(session.Bounds)
	if err != nil {
		return fmt.Errorf("encoding bounds: %w", err)
	}

	var date any
	if session.Date != nil {
		date = session.Date.Format(time.RFC3339Nano)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, date, units, shot_count, available_clubs, club_data, signature, bounds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID.String(), date, string(units), session.ShotCount, string(clubs),
		session.ClubData, session.Signature, string(bounds),
		session.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for _, shot := range shots {
		metrics, err := json.Marshal(shot.Metrics)
		if err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO shots (id, session_id, metrics) VALUES (?, ?, ?)`,
			shot.ID.String(), shot.SessionID.String(), string(metrics))
		if err != nil {
			return fmt.Errorf("inserting shot: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shots WHERE session_id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting shots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return tx.Commit()
}
