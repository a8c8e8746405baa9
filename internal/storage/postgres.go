package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/rangelog/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres backs the store with a pgx connection pool. Schema is managed by
// golang-migrate from the migrations directory.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store with a connection pool.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (db *Postgres) Close() error {
	db.Pool.Close()
	return nil
}

const sessionColumns = `id, date, units, shot_count, available_clubs, club_data, signature, bounds, created_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	var (
		s      models.Session
		units  []byte
		clubs  []byte
		bounds []byte
		date   *time.Time
	)
	if err := row.Scan(&s.ID, &date, &units, &s.ShotCount, &clubs, &s.ClubData, &s.Signature, &bounds, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Date = date
	if err := json.Unmarshal(units, &s.Units); err != nil {
		return nil, fmt.Errorf("decoding units: %w", err)
	}
	if err := json.Unmarshal(clubs, &s.AvailableClubs); err != nil {
		return nil, fmt.Errorf("decoding clubs: %w", err)
	}
	if err := json.Unmarshal(bounds, &s.Bounds); err != nil {
		return nil, fmt.Errorf("decoding bounds: %w", err)
	}
	return &s, nil
}

func (db *Postgres) querySessions(ctx context.Context, query string, args ...any) ([]models.Session, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (db *Postgres) ListSessions(ctx context.Context) ([]models.Session, error) {
	return db.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at, id`)
}

func (db *Postgres) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s, err := scanSession(db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return s, nil
}

func (db *Postgres) FindBySignature(ctx context.Context, signature string) (*models.Session, error) {
	s, err := scanSession(db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE signature = $1`, signature))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up signature: %w", err)
	}
	return s, nil
}

func (db *Postgres) queryShots(ctx context.Context, query string, args ...any) ([]models.Shot, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying shots: %w", err)
	}
	defer rows.Close()

	var shots []models.Shot
	for rows.Next() {
		var (
			shot    models.Shot
			metrics []byte
		)
		if err := rows.Scan(&shot.ID, &shot.SessionID, &metrics); err != nil {
			return nil, fmt.Errorf("scanning shot: %w", err)
		}
		if err := json.Unmarshal(metrics, &shot.Metrics); err != nil {
			return nil, fmt.Errorf("decoding metrics: %w", err)
		}
		shots = append(shots, shot)
	}
	return shots, rows.Err()
}

func (db *Postgres) SessionShots(ctx context.Context, id uuid.UUID) ([]models.Shot, error) {
	return db.queryShots(ctx,
		`SELECT id, session_id, metrics FROM shots WHERE session_id = $1`, id)
}

func (db *Postgres) Snapshot(ctx context.Context) (*Snapshot, error) {
	sessions, err := db.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	shots, err := db.queryShots(ctx,
		`SELECT s.id, s.session_id, s.metrics
		 FROM shots s JOIN sessions ON sessions.id = s.session_id
		 ORDER BY sessions.created_at, sessions.id`)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Sessions: sessions, Shots: shots}, nil
}

func (db *Postgres) AppendSession(ctx context.Context, session models.Session, shots []models.Shot) error {
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

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, date, units, shot_count, available_clubs, club_data, signature, bounds, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		session.ID, session.Date, units, session.ShotCount, clubs,
		session.ClubData, session.Signature, bounds, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for _, shot := range shots {
		metrics, err := json.Marshal(shot.Metrics)
		if err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO shots (id, session_id, metrics) VALUES ($1, $2, $3)`,
			shot.ID, shot.SessionID, metrics)
		if err != nil {
			return fmt.Errorf("inserting shot: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (db *Postgres) DeleteSession(ctx context.Context, id uuid.UUID) error {
	// shots cascade via the session_id foreign key
	if _, err := db.Pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
