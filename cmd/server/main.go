// Package main implements the entry point for the circulation API server,
// which manages a small library's catalog, loans, fines and member accounts.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/weilandt/circ-api/internal/config"
	"github.com/weilandt/circ-api/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.Setup(cfg.Server)
	logg.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"storage_dir", cfg.Storage.Dir)

	app, err := newApplication(cfg, logg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatal(fmt.Errorf("server exited: %w", err))
	}
}
