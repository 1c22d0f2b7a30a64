package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/awiddersheim/thruk-downtimes/internal/config"
	"github.com/awiddersheim/thruk-downtimes/internal/logger"
	"github.com/awiddersheim/thruk-downtimes/internal/pump"
	"github.com/awiddersheim/thruk-downtimes/internal/report"
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

	cfg, err := config.LoadPump(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, nil)
	if err != nil {
		return err
	}

	log.Info("Starting up")

	summary, runErr := pump.New(cfg, log).Run(ctx)
	if summary != nil {
		log.Info("Run summary",
			"prepared", summary.Prepared,
			"submitted", summary.Submitted,
			"simulated", summary.Simulated,
			"failures", len(summary.Failures),
		)
		if cfg.Email.To != "" {
			if mailErr := report.Send(cfg.Email, summary); mailErr != nil {
				runErr = multierr.Append(runErr, mailErr)
			} else {
				log.Info("Report emailed", "to", cfg.Email.To)
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	if cfg.Simulation {
		log.Info("All done running in simulation mode where no action was taken")
	} else {
		log.Info("All done")
	}
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
