package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vytor/cftracker/internal/app"
	"github.com/vytor/cftracker/internal/config"
	"github.com/vytor/cftracker/internal/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("CF Tracker Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("cf_api_base=%s", cfg.APIBase)
	log.Debug("fetch_worker_count=%d", cfg.FetchWorkerCount)
	log.Debug("fetch_queue_size=%d", cfg.FetchQueueSize)
	log.Debug("cache_enabled=%t", cfg.RedisURL != "")

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Error("failed to initialise: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing storage")
		if err := a.Close(); err != nil {
			log.Warn("close: %v", err)
		}
	}()

	if err := a.Serve(ctx); err != nil {
		log.Error("server stopped: %v", err)
		return
	}

	log.Info("===========================================")
	log.Info("CF Tracker Server Stopped")
	log.Info("===========================================")
}
