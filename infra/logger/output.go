package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where loggers built by New write.
type Options struct {
	// Level is used when LOG_LEVEL is unset.
	Level string
	// File additionally writes JSON lines to a rotating log file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	outputMu sync.RWMutex
	output   Options
	file     io.Writer
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup configures the output of loggers created afterwards. The returned
// closer releases the log file; an empty File only resets to stderr.
func Setup(opts Options) (io.Closer, error) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output, file = opts, nil
	if opts.File == "" {
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	file = lj
	return lj, nil
}

// writer returns stderr, in console form when APP_ENV=dev, joined with the
// configured log file, and the level to apply.
func writer() (io.Writer, string) {
	outputMu.RLock()
	defer outputMu.RUnlock()
	var w io.Writer = os.Stderr
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	if file != nil {
		w = zerolog.MultiLevelWriter(w, file)
	}
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = output.Level
	}
	return w, level
}
