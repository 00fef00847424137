package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/web3profile/internal/api"
	"github.com/vytor/web3profile/internal/app"
	"github.com/vytor/web3profile/internal/config"
	"github.com/vytor/web3profile/internal/jobs"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
		logger.WithRedact(cfg.Secrets()...),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("web3profile server starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("rpc_urls=%d", len(cfg.RPCURLs))
	log.Debug("cache_backend=%s", cfg.CacheBackend)
	log.Debug("cache_ttl=%s", cfg.CacheTTL)
	log.Debug("cache_purge_interval=%s", cfg.CachePurgeInterval)
	log.Debug("upstream_timeout=%s", cfg.UpstreamTimeout)
	log.Debug("refresh_worker_count=%d", cfg.RefreshWorkerCount)
	log.Debug("refresh_queue_size=%d", cfg.RefreshQueueSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database and cache")
		if err := a.Close(); err != nil {
			log.Warn("close failed: %v", err)
		}
	}()

	// Initialize worker pool
	refreshPool := worker.NewPool(cfg.RefreshWorkerCount, cfg.RefreshQueueSize)
	queue := jobs.NewWorkerQueue(refreshPool, a.Profiles, a.Cache)
	refreshPool.Start(ctx)

	srv := &api.Server{
		Profiles:       a.Profiles,
		Summaries:      a.Summaries,
		Searches:       a.Searches,
		Proxy:          a.Proxy,
		Jobs:           queue,
		Dependencies:   a.Dependencies(),
		RequestTimeout: 25 * time.Second,
	}

	if cfg.CachePurgeInterval > 0 && cfg.CacheBackend != config.CacheOff {
		go purgeLoop(ctx, log, queue, cfg.CachePurgeInterval)
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Let queued refreshes finish before cancelling their context
	log.Debug("stopping refresh pool")
	refreshPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("web3profile server stopped")
	log.Info("===========================================")
}

// purgeLoop enqueues a cache purge every interval until ctx is done.
func purgeLoop(ctx context.Context, log *logger.Logger, queue jobs.JobQueue, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := queue.EnqueuePurge(); err != nil {
				log.Warn("failed to enqueue cache purge: %v", err)
			}
		}
	}
}
