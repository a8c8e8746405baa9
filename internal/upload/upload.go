// Package upload implements the client side of rangelog: it walks a launch
// monitor export directory, skips files already sent (tracked in a local
// SQLite state database), and POSTs the rest to a running server.
package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int // already in local state, or server-side duplicates
	FilesRejected int // server refused (malformed/empty)
	FilesErrored  int
}

// Uploader walks an export directory and sends new CSV files to the server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{client: client, state: state, dir: dir, dryRun: dryRun, log: log}
}

// Run executes the upload pipeline over every .csv file in the directory, in
// filename order. Per-file failures are counted and logged, never fatal.
func (u *Uploader) Run() (*Stats, error) {
	entries, err := os.ReadDir(u.dir)
	if err != nil {
		return &u.stats, fmt.Errorf("reading %s: %w", u.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		u.stats.FilesTotal++
		u.processFile(entry.Name())
	}

	return &u.stats, nil
}

func (u *Uploader) processFile(name string) {
	path := filepath.Join(u.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		u.stats.FilesErrored++
		u.log.Error("reading file", "file", name, "error", err)
		return
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	sent, err := u.state.IsUploaded(name, int64(len(data)), hash)
	if err != nil {
		u.stats.FilesErrored++
		u.log.Error("checking upload state", "file", name, "error", err)
		return
	}
	if sent {
		u.stats.FilesSkipped++
		return
	}

	if u.dryRun {
		u.log.Info("would upload", "file", name, "bytes", len(data))
		u.stats.FilesUploaded++
		return
	}

	outcome, err := u.client.SendFile(name, data)
	if err != nil {
		if strings.Contains(err.Error(), "upload rejected") {
			u.stats.FilesRejected++
			u.log.Warn("server rejected file", "file", name, "error", err)
			return
		}
		u.stats.FilesErrored++
		u.log.Error("uploading file", "file", name, "error", err)
		return
	}

	// Duplicates are still marked locally: the server already holds these
	// bytes, re-sending them can never do anything.
	if err := u.state.MarkUploaded(name, int64(len(data)), hash); err != nil {
		u.log.Warn("recording upload state", "file", name, "error", err)
	}

	if outcome.Duplicate {
		u.stats.FilesSkipped++
		u.log.Info("server already has file", "file", name)
		return
	}
	u.stats.FilesUploaded++
	u.log.Info("uploaded", "file", name)
}
