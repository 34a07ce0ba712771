package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-schedule/internal/logging"
	"github.com/iwvelando/loan-schedule/internal/metrics"
	"github.com/iwvelando/loan-schedule/internal/server"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"go.uber.org/zap"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override, e.g. :8080")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return 1
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := []server.Option{server.WithMetrics(metrics.New())}

	if c := cfg.Cache.Build(); c != nil {
		opts = append(opts, server.WithCache(c))
		if closer, ok := c.(io.Closer); ok {
			defer func() {
				_ = closer.Close()
			}()
		}
		if pinger, ok := c.(interface{ Ping(context.Context) error }); ok {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := pinger.Ping(pingCtx); err != nil {
				logger.Warn("schedule cache unreachable, requests will bypass it until it recovers",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
			cancel()
		}
		logger.Info("schedule cache enabled",
			zap.String("op", "main"),
			zap.String("redisAddress", cfg.Cache.RedisAddress),
			zap.Duration("ttl", cfg.Cache.TTLDuration()),
		)
	}

	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter := server.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		defer limiter.Stop()
		opts = append(opts, server.WithRateLimiter(limiter))
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      server.NewHandler(logger, cfg.UploadSizeBytes(), version, opts...),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if err := serve(logger, srv, quit); err != nil {
		logger.Error("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 1
	}
	return 0
}

// serve runs srv until it fails or a signal arrives on quit, then shuts it
// down gracefully. A listener failure is returned; a clean shutdown returns
// nil.
func serve(logger *zap.Logger, srv *http.Server, quit <-chan os.Signal) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main.serve"),
			zap.String("address", srv.Addr),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to serve on %s: %w", srv.Addr, err)
	case sig := <-quit:
		logger.Info("shutting down",
			zap.String("op", "main.serve"),
			zap.String("signal", sig.String()),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main.serve"),
			zap.Error(err),
		)
	}
	return nil
}
