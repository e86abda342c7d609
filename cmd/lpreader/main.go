// cmd/lpreader/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/lp-reader/internal/app"
	"github.com/rovshanmuradov/lp-reader/internal/config"
	"github.com/rovshanmuradov/lp-reader/internal/utils/logger"
)

func main() {
	flags := config.NewFlagSet(os.Args[0])
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig("", flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := log.TrackPerformance("bootstrap")
	runner, err := app.NewRunner(cfg, log)
	done()
	if err != nil {
		log.Fatal("Failed to initialize service", zap.Error(err))
	}

	if err := runner.Run(ctx); err != nil {
		log.LogError("Service stopped with error", err, zap.Int("port", cfg.Port))
		os.Exit(1)
	}
}
