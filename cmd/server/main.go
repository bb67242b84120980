// Package main is the entry point for the practice tracker API server.
//
// main stays minimal: load config, build the logger, hand both to
// internal/server. All configuration comes from the environment; see
// internal/config for the variables and their defaults.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/practice-tracker/internal/config"
	"github.com/sakif/practice-tracker/internal/server"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// NewConfig has already validated the level.
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
