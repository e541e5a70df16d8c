package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tsachs/pacer/internal/adapters/http/api"
	"github.com/tsachs/pacer/internal/config"
	"github.com/tsachs/pacer/internal/engine"
	"github.com/tsachs/pacer/pkg/logger"
	"github.com/tsachs/pacer/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout          = 10 * time.Second
	writeTimeout         = 10 * time.Second
	idleTimeout          = 60 * time.Second
	readHeaderTimeout    = 5 * time.Second
	shutdownTimeout      = 30 * time.Second
	queueMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection; the engine registry carries
	// its own set.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env). An invalid
	// configuration is fatal; nothing runs with unchecked limits.
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	eng := engine.New(cfg, engine.WithLogger(log.Named("engine")))
	if err := eng.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start engine: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer eng.Stop()

	go startQueueMetricsUpdater(ctx, eng, cfg)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(eng, cfg, eng.Queue())
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startQueueMetricsUpdater periodically refreshes queue gauges that are
// not updated on the engine's tick path.
func startQueueMetricsUpdater(ctx context.Context, eng *engine.Engine, cfg *config.Config) {
	metrics.UpdateQueueCapacity(cfg.QueueSize)

	ticker := time.NewTicker(queueMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			size := eng.Queue().Len()
			metrics.UpdateQueueSize(size)
			if cfg.QueueSize > 0 {
				metrics.UpdateQueueUtilization(float64(size) / float64(cfg.QueueSize))
			}
		}
	}
}
