package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"officedesk/internal/config"
	"officedesk/internal/models"
	"officedesk/internal/refresh"
	"officedesk/internal/server"
	"officedesk/internal/session"
	"officedesk/internal/storage/sqlite"
	"officedesk/internal/upstream"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("officedesk starting",
		slog.String("upstream", cfg.UpstreamURL),
		slog.String("locale", string(cfg.Locale)),
		slog.String("timezone", cfg.Location.String()),
	)

	store, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	client, err := upstream.New(upstream.Config{BaseURL: cfg.UpstreamURL, Timeout: cfg.UpstreamTimeout}, logger)
	if err != nil {
		logger.Error("unable to create upstream client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sessions := session.NewParser(cfg.JWTSecret)
	srv := server.New(store, client, server.Options{
		Sessions:       sessions,
		Classifier:     cfg.Classifier(),
		Logger:         logger,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		startSync(ctx, cfg, client, store, logger)
	}()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	<-syncDone

	logger.Info("server stopped")
}

// startSync keeps the task snapshot fresh with the service token until ctx is
// cancelled. Without a service token the snapshot is only filled by requests.
func startSync(ctx context.Context, cfg *config.Config, client *upstream.Client, store *sqlite.Store, logger *slog.Logger) {
	if cfg.ServiceToken == "" {
		logger.Info("background sync disabled; no service token configured")
		return
	}

	svc := session.Session{Token: cfg.ServiceToken, UserID: "officedesk", Role: models.RoleAdmin}
	syncer := refresh.NewSyncer(client, store, svc, cfg.Classifier(), nil, logger)
	runner := &refresh.Runner{
		Name:     "task-snapshot",
		Interval: cfg.SyncInterval,
		Task:     syncer.Sync,
		Logger:   logger,
	}
	runner.Run(ctx)
}
