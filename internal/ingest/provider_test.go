package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/rangelog/internal/ingest/garmin"
	"github.com/claude/rangelog/internal/storage"
)

const sampleCSV = `Date,Club Type,Club Speed,Ball Speed,Carry Distance
,,[mph],[mph],[yds]
,,,,
2024-05-11 09:15:02,Driver,98.4,145.2,230.5
2024-05-11 09:16:40,7 Iron,78.2,102.3,152.7
`

func newTestProvider(t *testing.T) (*Provider, storage.Store) {
	t.Helper()
	store := storage.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProvider(store, log), store
}

func TestIngest(t *testing.T) {
	p, store := newTestProvider(t)
	ctx := context.Background()

	session, err := p.Ingest(ctx, []byte(sampleCSV), "2024-05-11.csv")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if session.ShotCount != 2 {
		t.Errorf("ShotCount = %d, want 2", session.ShotCount)
	}
	if !session.ClubData {
		t.Error("ClubData = false, want true")
	}
	if session.Date == nil {
		t.Error("Date = nil, want parsed file date")
	}
	if session.Signature != Signature([]byte(sampleCSV)) {
		t.Errorf("Signature = %q, want content hash", session.Signature)
	}
	if carry := session.Bounds["Carry Distance"]; carry.Min != 152.7 || carry.Max != 230.5 {
		t.Errorf("Carry Distance bounds = %+v", carry)
	}

	shots, err := store.SessionShots(ctx, session.ID)
	if err != nil {
		t.Fatalf("SessionShots: %v", err)
	}
	if len(shots) != 2 {
		t.Fatalf("stored shots = %d, want 2", len(shots))
	}
	for _, s := range shots {
		if s.SessionID != session.ID {
			t.Errorf("shot %s has SessionID %s", s.ID, s.SessionID)
		}
	}
}

func TestIngestDuplicate(t *testing.T) {
	p, store := newTestProvider(t)
	ctx := context.Background()

	first, err := p.Ingest(ctx, []byte(sampleCSV), "a.csv")
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}

	// Same bytes under a different filename are still a duplicate
	_, err = p.Ingest(ctx, []byte(sampleCSV), "b.csv")
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("second Ingest err = %v, want DuplicateError", err)
	}
	if dup.Existing.ID != first.ID {
		t.Errorf("Existing.ID = %s, want %s", dup.Existing.ID, first.ID)
	}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("sessions = %d, want 1 after duplicate", len(sessions))
	}
}

func TestIngestMalformed(t *testing.T) {
	p, store := newTestProvider(t)
	ctx := context.Background()

	_, err := p.Ingest(ctx, []byte("Date,Club Type\n,,\n"), "broken.csv")
	if !errors.Is(err, garmin.ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0 after parse failure", len(sessions))
	}
}

func TestSignature(t *testing.T) {
	got := Signature([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("Signature(abc) = %s, want %s", got, want)
	}

	if Signature([]byte("abc")) != got {
		t.Error("Signature is not deterministic")
	}
	if Signature([]byte("abd")) == got {
		t.Error("distinct inputs share a signature")
	}
}
