package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := NewServer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	errc := make(chan error, 2)
	if err := srv.Start(ctx, errc); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
	log.Info().Str("env", cfg.Environment).Msg("poker platform started")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errc:
		log.Error().Err(err).Msg("listener failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("unclean shutdown")
		os.Exit(1)
	}
	log.Info().Msg("stopped")
}

func setupLogging(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Environment != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
