// Package logger provides the slog handle used across both commands.
// Lines go to stderr so JSON output on stdout stays clean in simulation mode.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
)

type Config struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// New builds a logger from cfg. A nil cfg means info-level text logging.
// out overrides the destination, mainly for tests.
func New(cfg *Config, out io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if out == nil {
		out = os.Stderr
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}

	return slog.New(handler), nil
}

// Default returns an info-level text logger for use before config is loaded.
func Default() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Errorf("unknown log level %q", s)
}
