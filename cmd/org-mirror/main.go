package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mr1hm/go-org-boundaries/internal/config"
	"github.com/mr1hm/go-org-boundaries/internal/logging"
	"github.com/mr1hm/go-org-boundaries/internal/repository"
	"github.com/mr1hm/go-org-boundaries/internal/source"
)

// org-mirror copies the remote data source into the SQLite file at DB_PATH
// so boundary-map can run with SOURCE_KIND=sqlite.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := source.NewClient(cfg.Source.BaseURL, cfg.Source.Token, cfg.Source.Timeout)
	defer client.Close()

	slog.Info("mirroring", "from", cfg.Source.BaseURL, "to", cfg.DB.Path)

	snap, err := source.Load(ctx, client, source.LoadOptions{
		PageSize:   cfg.Source.PageSize,
		ActiveOnly: cfg.Source.ActiveOnly,
		Types:      cfg.Source.Types,
	})
	if err != nil {
		logging.Fatalf("Failed to load from source: %v", err)
	}

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.SaveSnapshot(ctx, snap); err != nil {
		logging.Fatalf("Failed to save snapshot: %v", err)
	}

	slog.Info("mirror complete",
		"organizations", len(snap.Organizations),
		"locations", len(snap.Locations),
		"events", len(snap.Events),
	)
}
