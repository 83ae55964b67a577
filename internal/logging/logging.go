// Package logging builds the zerolog logger shared by every component.
//
// The terminal belongs to the TUI, so logs are written to a file. The
// returned logger is also installed as zerolog.DefaultContextLogger and
// attached to the context handed back to the caller.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Options configure Setup.
type Options struct {
	// Path is the log file. Empty discards output.
	Path  string
	Debug bool
	// Console writes human-readable lines to this writer instead of JSON to
	// Path. Used by non-interactive subcommands.
	Console io.Writer
}

// Setup opens the log sink and returns the logger, a context carrying it,
// and a close function for the file.
func Setup(ctx context.Context, opts Options) (zerolog.Logger, context.Context, func() error, error) {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	var (
		out     io.Writer = io.Discard
		closeFn           = func() error { return nil }
	)
	switch {
	case opts.Console != nil:
		out = zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.Kitchen}
	case opts.Path != "":
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return zerolog.Nop(), ctx, closeFn, errors.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), ctx, closeFn, errors.Errorf("open log file: %w", err)
		}
		out = file
		closeFn = file.Close
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger, logger.WithContext(ctx), closeFn, nil
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) *zerolog.Logger {
	child := logger.With().Str("component", name).Logger()
	return &child
}
