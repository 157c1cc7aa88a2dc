// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jjenkins/agencydash/internal/config"
)

// Setup applies cfg to the standard logrus logger and returns it. When a log
// file is configured, output goes to both stdout and a rotating file; the
// returned closer flushes and closes that file.
func Setup(cfg config.LogConfig) (*log.Logger, io.Closer, error) {
	logger := log.StandardLogger()

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.File == "" {
		logger.SetOutput(os.Stdout)
		return logger, nopCloser{}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))

	return logger, rotator, nil
}

// Component returns an entry tagged with the component name
func Component(logger *log.Logger, name string) *log.Entry {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return logger.WithField("component", name)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
