// Package logging builds the root zerolog logger from configuration.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to out. format is "json" or "console"; level
// is any zerolog level name and defaults to info when empty.
func New(out io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: %w", err)
		}
		lvl = parsed
	}

	var writer io.Writer
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		writer = out
	case "console":
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", format)
	}

	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger(), nil
}
