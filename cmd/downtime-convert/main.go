package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/awiddersheim/thruk-downtimes/internal/config"
	"github.com/awiddersheim/thruk-downtimes/internal/convert"
	"github.com/awiddersheim/thruk-downtimes/internal/logger"
	"github.com/awiddersheim/thruk-downtimes/internal/sigctx"
	"go.uber.org/multierr"
)

func main() {
	log := logger.Default()
	exitCode := 0
	if err := run(); err != nil {
		exitCode = handleErrors(err, log)
	}
	os.Exit(exitCode)
}

func run() error {
	ctx, cancel := sigctx.New(context.Background())
	defer cancel()

	cfg, err := config.LoadConvert(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, nil)
	if err != nil {
		return err
	}

	log.Info("Starting up")
	if err := convert.New(cfg, log).Run(ctx); err != nil {
		return err
	}
	log.Info("All done", "simulation", cfg.Simulation)
	return nil
}

func handleErrors(err error, log *slog.Logger) int {
	if err == nil {
		return 0
	}
	var exitCode int
	errs := []error{}
	for _, mErr := range multierr.Errors(err) {
		var sigErr *sigctx.SignalError
		switch {
		case errors.As(mErr, &sigErr):
			exitCode = sigErr.SigNum()
		case errors.Is(mErr, config.ErrUsage):
			// Usage already printed by the flag set.
			exitCode = 1
		case !errors.Is(mErr, context.Canceled):
			errs = append(errs, mErr)
		}
	}
	if len(errs) > 0 {
		for _, err := range errs {
			log.Error("error occurred", "error", err, "stack", fmt.Sprintf("%+v", err))
		}
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}
