package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlekseevDev/tapper-game/internal/config"
	"github.com/AlekseevDev/tapper-game/internal/handler"
	"github.com/AlekseevDev/tapper-game/internal/service"
	"github.com/AlekseevDev/tapper-game/internal/store"
	"github.com/AlekseevDev/tapper-game/internal/websocket"
	"github.com/AlekseevDev/tapper-game/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; config values reference env vars via ${VAR}
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the player-state store
	logger.Info("opening store", "dialect", cfg.Database.Dialect, "path", cfg.Database.Path)
	st, err := store.Open(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// WebSocket hub for leaderboard pushes
	hub := websocket.NewHub(logger)
	go hub.Run()

	gameService := service.NewGameService(st, &cfg.Leaderboard, logger)
	gameService.SetHub(hub)

	// Background retention sweep
	retentionWorker := worker.NewRetentionWorker(gameService, &cfg.Retention, logger)
	if cfg.Retention.Enabled {
		if err := retentionWorker.Start(ctx); err != nil {
			logger.Error("failed to start retention worker", "error", err)
			os.Exit(1)
		}
	}

	httpHandler := handler.NewHandler(gameService, hub, retentionWorker, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	hub.Stop()

	if cfg.Retention.Enabled {
		if err := retentionWorker.Stop(); err != nil {
			logger.Error("failed to stop retention worker", "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
