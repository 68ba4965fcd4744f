package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	inbox "github.com/NextMind-AI/inbox-analytics"
	"github.com/NextMind-AI/inbox-analytics/config"
	"github.com/NextMind-AI/inbox-analytics/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Setup(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty}); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logger")
	}

	app, err := inbox.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise inbox")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}
