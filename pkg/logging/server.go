package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures the server logger.
type Options struct {
	Level  string
	Format string
	// File, when set, receives a copy of every record with size-based rotation.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewServerLogger returns a structured logger for long-running commands.
// The returned closer releases the log file, if any.
func NewServerLogger(w io.Writer, o Options) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}
	if o.File != "" {
		lj := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
		}
		w = io.MultiWriter(w, lj)
		closer = lj
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLogLevel(o.Level),
		AddSource: ParseLogLevel(o.Level) == slog.LevelDebug,
	}

	var h slog.Handler
	if o.Format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), closer
}

// SetDefaultServerLogger installs the server logger writing to stderr.
func SetDefaultServerLogger(o Options) io.Closer {
	l, c := NewServerLogger(os.Stderr, o)
	slog.SetDefault(l)
	return c
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
