package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/rangelog/internal/config"
	rangelogmcp "github.com/claude/rangelog/internal/mcp"
	"github.com/claude/rangelog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Logs go to stderr: stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := ""
	if cfg.Storage.Backend == "postgres" {
		dsn = cfg.Storage.Database.DSN()
	}

	store, err := storage.Open(context.Background(), cfg.Storage.Backend, cfg.Storage.Path, dsn)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	s := rangelogmcp.New(store, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server exited", "error", err)
		os.Exit(1)
	}
}
