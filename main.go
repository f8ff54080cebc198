package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"studentrisk/config"
	shttp "studentrisk/http"
	"studentrisk/monitoring"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := monitoring.NewLogger(monitoring.LogConfig{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	state, err := shttp.NewServiceState(cfg.Model.Path, cfg.HTTP.CacheSize, logger)
	if err != nil {
		logger.Fatal("failed to initialize service state", zap.Error(err))
	}

	// A missing or broken artifact leaves the service degraded but serving:
	// health still answers, predictions return 503 until training runs.
	if err := state.LoadArtifact(); err != nil {
		logger.Warn("starting degraded", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := monitoring.NewHub(logger)
	go hub.Start(ctx)

	if cfg.Model.Watch {
		go func() {
			if err := state.WatchArtifact(ctx); err != nil {
				logger.Warn("artifact watcher stopped", zap.Error(err))
			}
		}()
	}

	server := shttp.NewServer(shttp.ServerConfig{
		Port:           cfg.HTTP.Port,
		Timeout:        time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		MaxRequestSize: 1 << 20,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, state, hub, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
