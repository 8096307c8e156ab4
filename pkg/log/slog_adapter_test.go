package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func adapterOutput(t *testing.T, e Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	adapter.Log(e)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterPayload(t *testing.T) {
	entry := adapterOutput(t, Event{
		Timestamp: time.Now(),
		SessionID: "conn-1",
		Direction: DirectionIn,
		Layer:     LayerIntake,
		Category:  CategoryPayload,
		Payload:   &PayloadEvent{Size: 18, Checksum: 0x7A, Result: PayloadAccepted, Network: "homenet"},
	})

	if entry["msg"] != "trace" {
		t.Errorf("msg = %v, want trace", entry["msg"])
	}
	if entry["session_id"] != "conn-1" {
		t.Errorf("session_id = %v", entry["session_id"])
	}
	if entry["result"] != "ACCEPTED" {
		t.Errorf("result = %v", entry["result"])
	}
	if entry["network"] != "homenet" {
		t.Errorf("network = %v", entry["network"])
	}
	if entry["size"] != float64(18) {
		t.Errorf("size = %v", entry["size"])
	}
}

func TestSlogAdapterJoinAndUplink(t *testing.T) {
	entry := adapterOutput(t, Event{
		Layer:    LayerStation,
		Category: CategoryJoin,
		Join:     &JoinEvent{Network: "homenet", Attempt: 1, Outcome: "TIMED_OUT"},
	})
	if entry["outcome"] != "TIMED_OUT" || entry["layer"] != "STATION" {
		t.Errorf("join entry = %v", entry)
	}

	entry = adapterOutput(t, Event{
		Layer:    LayerUplink,
		Category: CategoryUplink,
		Uplink:   &UplinkEvent{Action: UplinkConnect, ClientID: "SmartConfigClient-1a2b", Attempt: 3},
	})
	if entry["action"] != "CONNECT" || entry["client_id"] != "SmartConfigClient-1a2b" {
		t.Errorf("uplink entry = %v", entry)
	}
	if entry["success"] != false {
		t.Errorf("success = %v", entry["success"])
	}
}

func TestSlogAdapterNeverLogsSecrets(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	adapter.Log(Event{
		Layer:    LayerIntake,
		Category: CategoryPayload,
		Payload:  &PayloadEvent{Size: 18, Result: PayloadAccepted, Network: "homenet"},
	})
	if strings.Contains(buf.String(), "secret") {
		t.Errorf("output leaked payload content: %s", buf.String())
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	adapter.Log(Event{Layer: LayerLink})
	if buf.Len() != 0 {
		t.Errorf("debug trace emitted at info level: %s", buf.String())
	}
}
