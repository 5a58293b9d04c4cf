package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airlock/internal/api"
	"airlock/internal/config"
	"airlock/internal/domain"
	"airlock/internal/service"
	"airlock/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Event recording is optional; leave RECORDER_PATH unset to run
	// fully in memory.
	var sinkFor service.SinkFactory
	if path := config.RecorderPath(); path != "" {
		recorder, err := store.Open(path)
		if err != nil {
			logger.Fatal("failed to open event recorder", zap.String("path", path), zap.Error(err))
		}
		defer func() { _ = recorder.Close() }()
		logger.Info("event recorder enabled", zap.String("path", path))
		sinkFor = func(id uuid.UUID) domain.EventSink {
			return recorder.Sink(id)
		}
	}

	app := api.NewApp(logger, sinkFor)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
