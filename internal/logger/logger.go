// Package logger builds the application's zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // human-readable console output
	// File is the rotated log file; empty logs to the console only.
	File string
	// MaxSizeMB rotates File once it would grow past this size.
	// Zero or less never rotates.
	MaxSizeMB int
	// MaxBackups is how many rotated files (File.1, File.2, ...) to keep.
	// Zero discards the old contents on rotation.
	MaxBackups int
	// Console defaults to stderr so logs never mix with command output.
	Console io.Writer
}

// New creates the logger. The returned Closer releases the log file.
func New(cfg Config) (zerolog.Logger, io.Closer) {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	raw := console
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	out := console
	var closer io.Closer = nopCloser{}
	var fileErr error
	if cfg.File != "" {
		file, err := newRotator(cfg, raw)
		if err != nil {
			fileErr = err
		} else {
			out = zerolog.MultiLevelWriter(console, file)
			closer = file
		}
	}

	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	if fileErr != nil {
		l.Warn().Err(fileErr).Str("file", cfg.File).Msg("failed to open log file, using console only")
	}
	return l, closer
}

// ParseLevel maps a level name to zerolog, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
