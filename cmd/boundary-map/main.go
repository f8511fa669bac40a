package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mr1hm/go-org-boundaries/internal/api"
	"github.com/mr1hm/go-org-boundaries/internal/boundary"
	"github.com/mr1hm/go-org-boundaries/internal/config"
	"github.com/mr1hm/go-org-boundaries/internal/logging"
	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/repository"
	"github.com/mr1hm/go-org-boundaries/internal/session"
	"github.com/mr1hm/go-org-boundaries/internal/source"
	"github.com/mr1hm/go-org-boundaries/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "source", cfg.Source.Kind)

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		logging.Fatalf("Failed to open data source: %v", err)
	}
	defer closeSrc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loadOpts := source.LoadOptions{
		PageSize:   cfg.Source.PageSize,
		ActiveOnly: cfg.Source.ActiveOnly,
		Types:      cfg.Source.Types,
	}
	snap, err := source.Load(ctx, src, loadOpts)
	if err != nil {
		logging.Fatalf("Failed to load organizations: %v", err)
	}

	sess := session.New(snap, session.Options{
		Levels: cfg.Levels,
		Rules:  cfg.Rules,
		Boundary: boundary.Options{
			Anchor:       models.Point{Lat: cfg.Boundary.AnchorLat, Lng: cfg.Boundary.AnchorLng},
			StarRadius:   cfg.Boundary.StarRadius,
			StarPoints:   cfg.Boundary.StarPoints,
			CirclePoints: cfg.Boundary.CirclePoints,
			CircleRadius: cfg.Boundary.CircleRadius,
		},
	})

	broadcaster := stream.NewBroadcaster()

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(sess, broadcaster)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for s := range sig {
		if s != syscall.SIGHUP {
			break
		}
		// SIGHUP reloads the snapshot; the old one stays on failure.
		next, err := source.Load(ctx, src, loadOpts)
		if err != nil {
			slog.Error("reload failed", "error", err)
			continue
		}
		handler.Reload(next)
		slog.Info("snapshot reloaded", "organizations", len(next.Organizations))
	}

	slog.Info("shutting down...")

	cancel()
	broadcaster.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

func openSource(cfg *config.Config) (source.Source, func(), error) {
	switch cfg.Source.Kind {
	case "sqlite":
		db, err := repository.NewSQLiteDB(cfg.DB.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	default:
		client := source.NewClient(cfg.Source.BaseURL, cfg.Source.Token, cfg.Source.Timeout)
		return client, client.Close, nil
	}
}
