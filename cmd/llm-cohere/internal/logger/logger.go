// Package logger builds the CLI's slog logger from configuration.
package logger

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/accudio/llm-cohere/pkg/engine"
)

// New returns a logger writing to w. Verbose forces the debug level; a
// non-empty format overrides cfg.Format.
func New(w io.Writer, cfg engine.LogConfig, verbose bool, format string) (*slog.Logger, error) {
	level := slog.LevelWarn
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("logger: level %q: %w", cfg.Level, err)
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	if format == "" {
		format = cfg.Format
	}

	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("logger: format %q must be text or json", format)
	}
}
