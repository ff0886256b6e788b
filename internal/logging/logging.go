// Package logging configures the process-wide log sink. The TUI owns the
// terminal, so logs always go to a rotated file, never stdout.
package logging

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logrus logger writing to <logDir>/folio.log with rotation.
func New(logDir string, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "folio.log"),
		MaxSize:    5, // megabytes
		MaxBackups: 2,
		MaxAge:     14, // days
		Compress:   false,
	})
	return logger
}

// Discard returns a logger that drops everything, for tests and callers
// that pass no logger.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	logger.SetOutput(nullWriter{})
	return logger
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
