// Package main is the entry point for the linklair server.
//
// main stays minimal: load configuration, build the logger, create the
// server, run it. All real logic lives in internal/ packages so it can be
// constructed and tested without going through main.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/linklair/internal/config"
	"github.com/sakif/linklair/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger isn't configured yet — fall back to the default.
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	// Ensure the database directory exists before sqlite tries to create
	// the file (no-op for ":memory:" and for existing directories).
	if dir := filepath.Dir(cfg.DBPath); dir != "." && cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
