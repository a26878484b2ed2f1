// Package util provides shared helpers for the newsquant binaries.
package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a structured logger at the specified level writing to
// out. Supported levels: "debug", "info", "warn", "error". Defaults to "info"
// if the level string is not recognised. Format "text" selects the text
// formatter; anything else logs JSON.
func NewLogger(level, format string, out io.Writer) *logrus.Logger {
	var llevel logrus.Level
	switch strings.ToLower(level) {
	case "debug":
		llevel = logrus.DebugLevel
	case "info":
		llevel = logrus.InfoLevel
	case "warn", "warning":
		llevel = logrus.WarnLevel
	case "error":
		llevel = logrus.ErrorLevel
	default:
		llevel = logrus.InfoLevel
	}

	logger := logrus.New()
	logger.SetLevel(llevel)
	if out == nil {
		out = os.Stdout
	}
	logger.SetOutput(out)

	if strings.ToLower(format) == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// OpenLogFile opens path for appending, creating parent directories as
// needed.
func OpenLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
