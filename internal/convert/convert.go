// Package convert turns a directory of .tsk downtime definitions into a
// single JSON array on disk.
package convert

import (
	"context"
	"log/slog"
	"os"

	"github.com/awiddersheim/thruk-downtimes/internal/config"
	"github.com/awiddersheim/thruk-downtimes/internal/loader"
	"github.com/awiddersheim/thruk-downtimes/internal/tsk"
	"github.com/pkg/errors"
)

type Converter struct {
	cfg *config.Convert
	log *slog.Logger
}

func New(cfg *config.Convert, log *slog.Logger) *Converter {
	return &Converter{
		cfg: cfg,
		log: log.With("component", "converter"),
	}
}

// Run executes one conversion pass. Any unreadable or unparsable file aborts
// the run before the output file is touched.
func (c *Converter) Run(ctx context.Context) error {
	paths, err := loader.Resolve(c.cfg.Dir, c.cfg.Single)
	if err != nil {
		return err
	}
	c.log.Info("Resolved downtime files", "dir", c.cfg.Dir, "count", len(paths))

	sources, err := loader.ReadFiles(paths)
	if err != nil {
		return err
	}

	records := make([]any, 0, len(sources))
	for _, src := range sources {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}

		c.log.Debug("Parsing downtime file", "path", src.Path)
		record, err := tsk.Parse(src.Content)
		if err != nil {
			return &ParseError{Path: src.Path, Err: err}
		}
		records = append(records, record)
	}

	data, err := Encode(records)
	if err != nil {
		return err
	}

	if c.cfg.Simulation {
		c.log.Info("Simulation mode, not writing output", "path", c.cfg.Output)
		c.log.Debug("Generated document", "json", string(data))
		return nil
	}

	if err := os.WriteFile(c.cfg.Output, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", c.cfg.Output)
	}
	c.log.Info("Wrote downtime collection", "path", c.cfg.Output, "records", len(records))
	return nil
}
