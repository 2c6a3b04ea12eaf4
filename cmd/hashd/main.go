// Command hashd serves Argon2 password hashing and verification over HTTP.
//
// Configuration comes from HASHD_* environment variables, optionally loaded from
// a .env file in the working directory. See internal/server.Config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	goHash "github.com/MrEthical07/goHash"
	"github.com/MrEthical07/goHash/internal/server"
	otelexport "github.com/MrEthical07/goHash/metrics/export/otel"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hashd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := server.LoadConfig(os.LookupEnv)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb redis.UniversalClient
	if cfg.RedisAddr != "" {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{cfg.RedisAddr},
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
	}

	builder := goHash.New().
		WithConfig(cfg.EngineConfig()).
		WithLogger(logger.With(slog.String("component", "engine")))
	if rdb != nil {
		builder = builder.WithRedis(rdb)
	}
	if cfg.Audit {
		builder = builder.WithAuditSink(goHash.NewSlogSink(logger.With(slog.String("component", "audit"))))
	}
	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	// Instruments bind to the global meter provider; they stay no-ops until an
	// SDK provider is installed with otel.SetMeterProvider.
	if cfg.Metrics {
		exporter, err := otelexport.NewOTelExporter(otel.GetMeterProvider().Meter("github.com/MrEthical07/goHash"), engine)
		if err != nil {
			return err
		}
		defer exporter.Close()
	}

	srv, err := server.New(engine, rdb, cfg, logger.With(slog.String("component", "http")))
	if err != nil {
		return err
	}
	httpServer := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			slog.String("addr", cfg.Addr),
			slog.Uint64("memory_kib", uint64(cfg.MemoryKiB)),
			slog.Uint64("time", uint64(cfg.TimeCost)),
			slog.Uint64("parallelism", uint64(cfg.Parallelism)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
