package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gokatarajesh/wikiquiz/internal/cli"
	"github.com/gokatarajesh/wikiquiz/internal/config"
	"github.com/gokatarajesh/wikiquiz/internal/logging"
	"github.com/gokatarajesh/wikiquiz/internal/metrics"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Name, cfg.Env)

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
				logger.Warn().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	if err := cli.Execute(logging.IntoContext(ctx, logger), cfg, logger); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
