// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/mcp-registry-proxy/pkg/auth"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/config"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/metrics"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/proxy"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/registry"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("invalid log level")
	}
	log.Logger = log.Level(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closeSource, err := buildBackendSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct backend source")
	}
	if closeSource != nil {
		defer closeSource()
	}

	m := metrics.New()
	cache := registry.New(log.Logger, m)
	cache.StartRefresher(ctx, cfg.RefreshPeriod, source)

	bus := registry.NewEventBus(cfg.EventBusCapacity)
	cache.AttachEvents(ctx, bus)

	if cfg.RedisAddr != "" {
		producer := registry.NewRedisEventProducer(cfg.RedisAddr, cfg.RedisChannel, log.Logger)
		go func() {
			if err := producer.Run(ctx, bus); err != nil {
				log.Error().Err(err).Msg("redis event producer stopped")
			}
		}()
		defer producer.Close()
	}

	handler := proxy.New(cfg, cache, m, log.Logger)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	go func() {
		log.Info().
			Str("listen_addr", cfg.ListenAddr).
			Str("backend_source", string(cfg.BackendSourceKind)).
			Dur("refresh_period", cfg.RefreshPeriod).
			Msg("starting MCP registry proxy")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("proxy server exited unexpectedly")
		}
	}()

	waitForShutdown(server, cfg.GracefulShutdownTimeout, cancel)
}

// buildBackendSource selects and constructs the BackendSource named by
// cfg.BackendSourceKind. The second return value, if non-nil, releases any
// resources the source holds (e.g. a database connection pool).
func buildBackendSource(cfg config.Config) (registry.BackendSource, func(), error) {
	switch cfg.BackendSourceKind {
	case config.BackendSourceTOML:
		return registry.NewTOMLSource(cfg.BackendSourceTOMLPath), nil, nil
	case config.BackendSourcePostgres:
		src, err := registry.NewPostgresSource(cfg.BackendSourceDSN)
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil
	case config.BackendSourceHTTP:
		var signer *auth.Signer
		if cfg.BackendSourceAPIKey != "" {
			signer = auth.NewSigner(cfg.BackendSourceAPIKey, cfg.BackendSourceAPISecret)
		}
		return registry.NewHTTPSource(cfg.BackendSourceURL, nil, signer), nil, nil
	default:
		return nil, nil, errors.New("unsupported backend source kind: " + string(cfg.BackendSourceKind))
	}
}

func waitForShutdown(srv *http.Server, timeout time.Duration, cancel context.CancelFunc) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	cancel()

	log.Info().Msg("shutting down MCP registry proxy")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed; forcing close")
		if closeErr := srv.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("forced close failed")
		}
	}

	log.Info().Msg("proxy stopped")
}
