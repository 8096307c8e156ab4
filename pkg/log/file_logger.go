package log

import (
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileLogger writes trace events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	w       io.WriteCloser
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger creates a FileLogger that appends to path, creating it with
// permissions 0644 if needed.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return newFileLogger(f), nil
}

// RotationConfig configures a size-rotated trace file.
type RotationConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewRotatingFileLogger creates a FileLogger that rotates by size.
// Rotated files are complete CBOR streams and can be read independently.
func NewRotatingFileLogger(cfg RotationConfig) (*FileLogger, error) {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	// Open eagerly so a bad path fails here instead of on the first event.
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	_ = f.Close()

	return newFileLogger(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}), nil
}

func newFileLogger(w io.WriteCloser) *FileLogger {
	return &FileLogger{w: w, encoder: NewEncoder(w)}
}

// Log writes an event. Encoding errors are dropped; tracing never disrupts
// provisioning.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	_ = l.encoder.Encode(event)
}

// Close closes the file. It is safe to call Close multiple times; later Log
// calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.w.Close()
}

var _ Logger = (*FileLogger)(nil)
