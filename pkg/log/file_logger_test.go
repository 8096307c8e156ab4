package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(Event{
		Timestamp: time.Now(),
		SessionID: "conn-123",
		Layer:     LayerLink,
		Category:  CategoryPayload,
		Payload:   &PayloadEvent{Size: 18},
	})
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.SessionID != "conn-123" {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, "conn-123")
	}
	if decoded.Payload == nil || decoded.Payload.Size != 18 {
		t.Errorf("Payload = %+v", decoded.Payload)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatal(err)
		}
		logger.Log(Event{Timestamp: time.Now(), Layer: LayerStation})
		logger.Close()
	}

	if n := countEvents(t, path); n != 2 {
		t.Errorf("got %d events, want 2", n)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "test.plog"))
	if err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	logger.Log(Event{}) // ignored after close
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.plog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				logger.Log(Event{Timestamp: time.Now(), Layer: LayerUplink})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if n := countEvents(t, path); n != 200 {
		t.Errorf("got %d events, want 200", n)
	}
}

func TestRotatingFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.plog")

	logger, err := NewRotatingFileLogger(RotationConfig{Path: path, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewRotatingFileLogger failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		logger.Log(Event{Timestamp: time.Now(), Layer: LayerController, Category: CategoryState,
			StateChange: &StateChangeEvent{Entity: StateEntityProvision, NewState: "IDLE"}})
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if n := countEvents(t, path); n != 5 {
		t.Errorf("got %d events, want 5", n)
	}
}

func TestRotatingFileLoggerBadPath(t *testing.T) {
	_, err := NewRotatingFileLogger(RotationConfig{Path: filepath.Join(t.TempDir(), "missing", "x.plog")})
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func countEvents(t *testing.T, path string) int {
	t.Helper()
	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	n := 0
	for {
		_, err := r.Next()
		if err == io.EOF {
			return n
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		n++
	}
}
