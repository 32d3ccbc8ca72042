package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the standard logrus logger: JSON lines on stdout and,
// when cfg.LogFile is set, a size-rotated copy on disk. The returned func
// flushes and closes the file and must be called on shutdown.
func Setup(cfg config.ServerConfig) (func() error, error) {
	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.LogFile == "" {
		logrus.SetOutput(os.Stdout)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    50, // megabytes
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, rotator))

	return func() error {
		logrus.SetOutput(os.Stdout)
		return rotator.Close()
	}, nil
}
