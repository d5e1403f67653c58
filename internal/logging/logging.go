// Package logging provides the server's structured logging facility: a
// logrus-based logger with automatic stdout/stderr stream routing, so
// error-level entries reach stderr for alerting while everything else goes
// to stdout for general log processing.
package logging

import (
	"bytes"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes a formatted log line to stderr when it carries
// "level=error", and to stdout otherwise.
type OutputSplitter struct{}

func (OutputSplitter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("level=error")) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Config controls how NewLogger builds a *logrus.Logger.
type Config struct {
	Level      string // "debug", "info", "warn", "error"
	Format     string // "json" or "text"
	AddCaller  bool
	TimeFormat string
}

// DefaultConfig returns sane defaults for local development.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text", TimeFormat: time.RFC3339}
}

// New builds a logger per cfg, always routed through OutputSplitter.
func New(cfg Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: cfg.TimeFormat})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: cfg.TimeFormat, FullTimestamp: true})
	}
	logger.SetReportCaller(cfg.AddCaller)
	logger.SetOutput(OutputSplitter{})
	return logger
}
