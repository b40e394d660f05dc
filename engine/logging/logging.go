// Package logging builds the zerolog loggers shared by the engine components and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-rig/config"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New creates a logger writing to out (console or JSON per cfg.Format) and, if cfg.File is set,
// appending JSON lines to that file as well. Unknown levels fall back to info.
//
// Parameters:
//   - cfg: the log section of the configuration
//   - out: the console or JSON destination, usually os.Stderr
//
// Returns:
//   - zerolog.Logger: the logger, tagged with app=oxy-rig and a timestamp
//   - func() error: closes the log file; a no-op when no file is configured
//   - error: error if the log file cannot be opened
func New(cfg config.LogConfig, out io.Writer) (zerolog.Logger, func() error, error) {
	closer := func() error { return nil }

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: !isTerminal(out)}
	}

	writers := []io.Writer{out}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f.Close
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", "oxy-rig").
		Logger()
	return logger, closer, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// ParseLevel parses a zerolog level name, falling back to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
