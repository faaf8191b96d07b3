package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quote-drafter/internal/adapters/cli"
	"quote-drafter/internal/app"
	"quote-drafter/internal/config"
	"quote-drafter/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, open, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func open(ctx context.Context, storeDriver string) (app.ApplicationService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)
	return app.Build(ctx, cfg, log)
}
