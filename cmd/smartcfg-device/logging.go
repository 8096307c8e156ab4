package main

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/smartcfg/smartcfg-go/pkg/config"
	"github.com/smartcfg/smartcfg-go/pkg/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the operational logger. With cfg.File set, records are
// also written to a size-rotated file.
func newLogger(cfg config.LogConfig, console io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w                = console
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,  // megabytes
			MaxBackups: cfg.MaxBackups, // number of backups
			MaxAge:     cfg.MaxAgeDays, // days
			Compress:   cfg.Compress,
		}
		w = io.MultiWriter(console, file)
		closer = file
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closer, nil
}

// newTrace builds the protocol trace: a CBOR file when cfg.Trace is set, and
// the slog adapter so debug logging shows every event.
func newTrace(cfg config.LogConfig, logger *slog.Logger) (log.Logger, io.Closer, error) {
	adapter := log.NewSlogAdapter(logger)
	if cfg.Trace == "" {
		return adapter, nopCloser{}, nil
	}

	file, err := log.NewRotatingFileLogger(log.RotationConfig{
		Path:       cfg.Trace,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
	if err != nil {
		return nil, nil, err
	}
	return log.NewMultiLogger(adapter, file), file, nil
}
