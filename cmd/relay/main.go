package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivanwe2/battleships/internal/config"
	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/network/relay"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	envPath := flag.String("env", ".env", "env file path")
	flag.Parse()

	if err := config.LoadEnvFile(*envPath); err != nil {
		log.Fatalf("failed to load env file: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("failed to load config, using defaults: %v", err)
		cfg = config.Default()
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := relay.NewServer(ctx, cfg.Relay)
	if err != nil {
		logger.LogError("failed to create relay: %v", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.LogError("relay failed: %v", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.LogInfo("shutting down relay...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.LogError("relay shutdown: %v", err)
		}
	}
}
