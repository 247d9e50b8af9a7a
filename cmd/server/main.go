package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/garnizeh/hikelog/api"
	hikedb "github.com/garnizeh/hikelog/db"
	"github.com/garnizeh/hikelog/internal/assistant"
	"github.com/garnizeh/hikelog/internal/auth"
	"github.com/garnizeh/hikelog/internal/config"
	"github.com/garnizeh/hikelog/internal/db"
	"github.com/garnizeh/hikelog/internal/journal"
	"github.com/garnizeh/hikelog/internal/repository/sqlite"
	"github.com/garnizeh/hikelog/internal/syncer"
	"github.com/garnizeh/hikelog/internal/weather"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a yaml config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn, hikedb.Migrations); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repo := sqlite.New(conn, logger)
	tokens := auth.NewLocalTokenSource(cfg.JWTSecret, cfg.TokenDuration)
	gateway := syncer.NewHTTPGateway(cfg.Sync.BaseURL, cfg.Sync.Timeout, logger)
	coordinator := syncer.NewCoordinator(repo, repo, tokens, gateway, logger)

	hikes := journal.NewHikeService(repo, repo, coordinator, cfg.Sync.Workers, logger)
	defer hikes.Close()
	observations := journal.NewObservationService(repo, hikes, logger)

	var assist assistant.Client
	if cfg.Assistant.BaseURL != "" {
		remote := assistant.NewRemoteClient(cfg.Assistant, nil, logger)
		defer remote.Close()
		assist = remote
	} else {
		local, err := assistant.NewLocalClient(cfg.Assistant, repo, repo, logger)
		if err != nil {
			return fmt.Errorf("assistant: %w", err)
		}
		assist = local
	}

	router := api.SetupRoutes(version, buildTime, &api.Deps{
		Cfg:          cfg,
		Users:        repo,
		Hikes:        hikes,
		Observations: observations,
		Chats:        repo,
		Reports:      repo,
		Assistant:    assist,
		Weather:      weather.New(cfg.Weather, logger),
		Tokens:       tokens,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  2 * cfg.APITimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	gateway.CloseIdleConnections()

	return nil
}
