package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LoggingConfig is the logging section of the configuration.
type LoggingConfig struct {
	// Level is a zerolog level name; empty means info.
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic"`

	// File receives a copy of the log stream when set. The console always
	// gets one.
	File string `yaml:"file"`
}

// NewLogger builds the process logger: a human-readable console writer on
// stderr, plus the configured log file when one is set. debug forces the
// level down to debug regardless of the configured value. The returned
// closer releases the file handle and is safe to call when no file is open.
func NewLogger(cfg LoggingConfig, debug bool) (zerolog.Logger, func(), error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), func() {}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if debug {
		level = zerolog.DebugLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}}
	closer := func() {}

	if cfg.File != "" {
		logFile, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return zerolog.Nop(), func() {}, fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}
		writers = append(writers, logFile)
		closer = func() { _ = logFile.Close() }
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger, closer, nil
}
