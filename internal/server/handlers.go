package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/claude/rangelog/internal/ingest"
	"github.com/claude/rangelog/internal/ingest/garmin"
	"github.com/claude/rangelog/internal/models"
	"github.com/claude/rangelog/internal/stats"
	"github.com/claude/rangelog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxUploadSize caps CSV uploads. Launch monitor exports are a few hundred KB
// at most.
const maxUploadSize = 16 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reading upload: " + err.Error()})
		return
	}

	session, err := s.ing.Ingest(r.Context(), data, header.Filename)
	if err != nil {
		var dup *ingest.DuplicateError
		switch {
		case errors.As(err, &dup):
			// Idempotent outcome: nothing was written, tell the client which
			// session already holds this file.
			writeJSON(w, http.StatusOK, map[string]any{
				"message":   "duplicate session, already exists",
				"duplicate": true,
				"existing":  dup.Existing,
			})
		case errors.Is(err, ingest.ErrEmptyFile), errors.Is(err, garmin.ErrMalformedInput):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			s.log.Error("upload failed", "file", header.Filename, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to process uploaded file"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "session uploaded",
		"session": session,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		s.log.Error("listing sessions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load sessions"})
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	session, err := s.store.GetSession(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		s.log.Error("loading session", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load session"})
		return
	}

	shots, err := s.store.SessionShots(r.Context(), id)
	if err != nil {
		s.log.Error("loading shots", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load session data"})
		return
	}
	if shots == nil {
		shots = []models.Shot{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"shots": shots,
		"units": session.Units,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	// Deleting an unknown id is a no-op, not an error.
	if err := s.store.DeleteSession(r.Context(), id); err != nil {
		s.log.Error("deleting session", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete session"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "metric parameter required"})
		return
	}
	clubs := splitClubs(r.URL.Query().Get("clubs"))

	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.log.Error("loading snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load sessions"})
		return
	}

	summary, err := stats.ProgressionSummary(snap.Sessions, snap.Shots, metric, clubs)
	if errors.Is(err, stats.ErrInvalidMetric) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.log.Error("computing progression", "metric", metric, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute progression"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.log.Error("loading snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load sessions"})
		return
	}
	writeJSON(w, http.StatusOK, stats.GlobalStats(snap.Shots))
}

func (s *Server) handleAllowlist(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		s.log.Error("listing sessions", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load sessions"})
		return
	}

	// Unit labels come from stored sessions; a metric never seen in any
	// upload has no label yet.
	units := make(map[string]string)
	for _, metric := range models.MetricAllowlist {
		for _, session := range sessions {
			if u := session.Units[metric]; u != "" {
				units[metric] = u
				break
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": models.MetricAllowlist,
		"units":   units,
	})
}

// splitClubs parses the comma-separated clubs query parameter. An absent or
// empty parameter means no filtering.
func splitClubs(raw string) []string {
	if raw == "" {
		return nil
	}
	var clubs []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			clubs = append(clubs, c)
		}
	}
	return clubs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
