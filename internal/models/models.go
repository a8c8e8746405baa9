package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one imported CSV file's worth of shots plus derived metadata.
// Sessions are immutable once created; the only lifecycle transitions are
// create (with the full shot list) and delete (cascading to shots).
type Session struct {
	ID             uuid.UUID         `json:"id"`
	Date           *time.Time        `json:"date"` // first shot's timestamp, nil if unparseable
	Units          map[string]string `json:"units"`
	ShotCount      int               `json:"shot_count"`
	AvailableClubs []string          `json:"available_clubs"`
	ClubData       bool              `json:"club_data"` // any shot carries a Club Speed value
	Signature      string            `json:"signature"` // SHA-256 of the source file, dedup key
	Bounds         map[string]Bounds `json:"bounds"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Shot is one recorded ball strike. Metrics holds the raw CSV cell values
// keyed by trimmed column name; numeric coercion happens at read time.
type Shot struct {
	ID        uuid.UUID         `json:"id"`
	SessionID uuid.UUID         `json:"session_id"`
	Metrics   map[string]string `json:"metrics"`
}

// ClubType returns the shot's club label, or "" if the column is absent.
func (s Shot) ClubType() string {
	return s.Metrics["Club Type"]
}

// Bounds is the observed numeric range of one metric across a set of shots.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Extend folds one observation into the bounds.
func (b Bounds) Extend(v float64) Bounds {
	if v < b.Min {
		b.Min = v
	}
	if v > b.Max {
		b.Max = v
	}
	return b
}
