// Package main provides the gridfall binary: it loads configuration and a
// battle scenario, wires a session, and runs the battle to completion.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/torvik/gridfall/internal/config"
	"github.com/torvik/gridfall/internal/observability"
	"github.com/torvik/gridfall/internal/scenario"
	"github.com/torvik/gridfall/internal/session"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "content/scenarios/skirmish.yaml", "path to battle scenario YAML")
	seed := flag.Int64("seed", 0, "dice seed override; 0 keeps the configured source")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	sc, err := scenario.LoadFile(*scenarioPath)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}

	sess, err := session.New(cfg, sc, logger)
	if err != nil {
		logger.Fatal("building session", zap.Error(err))
	}
	defer sess.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting battle",
		zap.String("scenario", sc.Name),
		zap.Int("units", len(sess.Units())),
	)

	result, err := sess.Run(ctx)
	if err != nil {
		logger.Warn("battle interrupted", zap.Error(err))
		return
	}

	logger.Info("battle finished",
		zap.Bool("victory", result.Victory),
		zap.Int("rounds", result.Rounds),
		zap.Duration("elapsed", time.Since(start)),
	)
	if !result.Victory {
		os.Exit(1)
	}
}
