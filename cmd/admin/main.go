package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vedran77/skillshare/internal/admincli"
	"github.com/vedran77/skillshare/internal/app"
	"github.com/vedran77/skillshare/internal/config"
	"github.com/vedran77/skillshare/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, admincli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	log := logging.New(os.Stderr, cfg.LogLevel)

	store, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	return admincli.Run(ctx, os.Args[1:], store, os.Stdout)
}
