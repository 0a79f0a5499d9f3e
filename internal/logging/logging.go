// Package logging builds the zerolog logger used by the CLI and the
// pipeline. Terminals get the console writer, everything else gets JSON.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the given level. format is one of
// "console", "json" or "auto".
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl := ParseLevel(level)

	if resolveFormat(w, format) == "console" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	if lvl <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// ParseLevel falls back to info for unknown names.
func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(level); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

func resolveFormat(w io.Writer, format string) string {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return "console"
	case "json":
		return "json"
	}
	f, ok := w.(*os.File)
	if !ok {
		return "json"
	}
	info, err := f.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return "json"
	}
	return "console"
}
