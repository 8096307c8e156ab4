package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.plog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func TestFormatPayloadEvent(t *testing.T) {
	ts := time.Date(2026, 3, 2, 10, 15, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp: ts,
		SessionID: "abc12345-6789-0123-4567-890abcdef012",
		Direction: log.DirectionIn,
		Layer:     log.LayerIntake,
		Category:  log.CategoryPayload,
		Payload: &log.PayloadEvent{
			Size:     24,
			Checksum: 0x5a,
			Result:   log.PayloadAccepted,
			Network:  "homenet",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{
		"2026-03-02T10:15:32.123456Z",
		"[session:abc12345]",
		"IN",
		"INTAKE Payload",
		"Size: 24 bytes",
		"Result: ACCEPTED",
		"Checksum: 0x5a",
		"Network: homenet",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatRawPayloadOmitsResult(t *testing.T) {
	event := log.Event{
		Layer:    log.LayerLink,
		Category: log.CategoryPayload,
		Payload:  &log.PayloadEvent{Size: 8},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)

	if strings.Contains(buf.String(), "Result:") {
		t.Errorf("raw write should not print a result:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "[session:-]") {
		t.Errorf("missing session placeholder:\n%s", buf.String())
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	event := log.Event{
		Direction: log.DirectionNone,
		Layer:     log.LayerController,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityProvision,
			OldState: "AWAITING_PAYLOAD",
			NewState: "PROVISIONING",
			Reason:   "credential accepted",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{"LOCAL", "CONTROLLER State", "Entity: PROVISION", "AWAITING_PAYLOAD -> PROVISIONING", "Reason: credential accepted"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatJoinEvent(t *testing.T) {
	event := log.Event{
		Layer:    log.LayerStation,
		Category: log.CategoryJoin,
		Join: &log.JoinEvent{
			Network: "homenet",
			Attempt: 2,
			Outcome: "JOINED",
			Elapsed: 1500 * time.Millisecond,
			Addr:    "192.168.1.50",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{"STATION Join", "Network: homenet (attempt 2)", "Outcome: JOINED after 1.500s", "Addr: 192.168.1.50"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatUplinkEvent(t *testing.T) {
	event := log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerUplink,
		Category:  log.CategoryUplink,
		Uplink: &log.UplinkEvent{
			Action:   log.UplinkConnect,
			Server:   "localhost:1883",
			ClientID: "SmartConfig-1a2b",
			Attempt:  3,
			Success:  false,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{"UPLINK Uplink", "Action: CONNECT (failed)", "Server: localhost:1883", "ClientID: SmartConfig-1a2b", "Attempt: 3"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatErrorEvent(t *testing.T) {
	event := log.Event{
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerLink,
			Message: "frame too large",
			Context: "read",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{"Error", "Layer: LINK", "Message: frame too large", "Context: read"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0.500us"},
		{1500 * time.Microsecond, "1.500ms"},
		{15 * time.Second, "15.000s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLayerFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Layer
		wantErr  bool
	}{
		{"link", log.LayerLink, false},
		{"INTAKE", log.LayerIntake, false},
		{"station", log.LayerStation, false},
		{"uplink", log.LayerUplink, false},
		{"Controller", log.LayerController, false},
		{"wire", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLayerFlag(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLayerFlag(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLayerFlag(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseLayerFlag(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseDirectionFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Direction
		wantErr  bool
	}{
		{"in", log.DirectionIn, false},
		{"OUT", log.DirectionOut, false},
		{"local", log.DirectionNone, false},
		{"sideways", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDirectionFlag(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDirectionFlag(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDirectionFlag(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseDirectionFlag(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseCategoryFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Category
		wantErr  bool
	}{
		{"payload", log.CategoryPayload, false},
		{"state", log.CategoryState, false},
		{"JOIN", log.CategoryJoin, false},
		{"uplink", log.CategoryUplink, false},
		{"error", log.CategoryError, false},
		{"message", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCategoryFlag(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCategoryFlag(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCategoryFlag(%q) unexpected error: %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseCategoryFlag(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestRunViewFilters(t *testing.T) {
	ts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	join := log.CategoryJoin
	events := []log.Event{
		{Timestamp: ts, SessionID: "aaaa1111-x", Layer: log.LayerLink, Category: log.CategoryPayload, Payload: &log.PayloadEvent{Size: 4}},
		{Timestamp: ts, SessionID: "aaaa1111-x", Layer: log.LayerStation, Category: log.CategoryJoin, Join: &log.JoinEvent{Network: "first", Attempt: 1, Outcome: "JOINED"}},
		{Timestamp: ts, SessionID: "bbbb2222-y", Layer: log.LayerStation, Category: log.CategoryJoin, Join: &log.JoinEvent{Network: "second", Attempt: 1, Outcome: "TIMED_OUT"}},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{Category: &join, SessionID: "aaaa"}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Network: first") {
		t.Errorf("expected matching join event:\n%s", output)
	}
	if strings.Contains(output, "second") || strings.Contains(output, "Payload") {
		t.Errorf("filter let through other events:\n%s", output)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	err := RunView(filepath.Join(t.TempDir(), "missing.plog"), log.Filter{}, &bytes.Buffer{})
	if err == nil {
		t.Error("expected error for missing file")
	}
}
