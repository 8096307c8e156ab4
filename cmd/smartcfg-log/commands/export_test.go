package commands

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/log"
)

func exportEvents() []log.Event {
	ts := time.Date(2026, 3, 2, 10, 15, 32, 123456000, time.UTC)
	return []log.Event{
		{
			Timestamp: ts,
			SessionID: "abc12345",
			Direction: log.DirectionIn,
			Layer:     log.LayerIntake,
			Category:  log.CategoryPayload,
			DeviceID:  "dev-1",
			Payload:   &log.PayloadEvent{Size: 20, Result: log.PayloadFormatRejected},
		},
		{
			Timestamp: ts.Add(time.Second),
			Direction: log.DirectionOut,
			Layer:     log.LayerUplink,
			Category:  log.CategoryUplink,
			Uplink:    &log.UplinkEvent{Action: log.UplinkPublish, Topic: "smartconfig", Size: 35, Success: true},
		},
	}
}

func TestExportToJSONL(t *testing.T) {
	path := createTestLogFile(t, exportEvents())
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first["SessionID"] != "abc12345" {
		t.Errorf("SessionID = %v, want abc12345", first["SessionID"])
	}
	if _, ok := first["Payload"].(map[string]any); !ok {
		t.Errorf("expected Payload object, got %v", first["Payload"])
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestLogFile(t, exportEvents())
	outPath := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}

	want := []string{"2026-03-02T10:15:32.123456Z", "abc12345", "IN", "INTAKE", "PAYLOAD", "dev-1", "Payload", "FORMAT_REJECTED", "20"}
	if strings.Join(rows[1], ",") != strings.Join(want, ",") {
		t.Errorf("row 1 = %v, want %v", rows[1], want)
	}
	if rows[2][7] != "PUBLISH" || rows[2][8] != "35" {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, exportEvents())

	err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out.xml"))
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected 'unknown format' error, got: %v", err)
	}
}
