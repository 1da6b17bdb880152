// Package main runs the trade analytics HTTP service: schema validation,
// metric derivation and the pattern/behavior analyzers behind a small API.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"trade-analytics/internal/config"
	"trade-analytics/internal/infra/logger"
	httptransport "trade-analytics/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info")
		fallback.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(cfg.Logging.Level)
	log.Info().Str("level", cfg.Logging.Level).Msg("logger initialized")

	router := httptransport.New(log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting HTTP server")
		errCh <- router.App().Listen(":" + cfg.Server.Port)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := router.App().ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}

	log.Info().Msg("shutdown complete")
}
