package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// RunExport exports the trace file to the specified format. An empty output
// writes to stdout.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

var csvHeader = []string{"timestamp", "session_id", "direction", "layer", "category", "device_id", "type", "detail", "size"}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		detail, size := csvDetail(event)
		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			event.DeviceID,
			typeLabel(event),
			detail,
			size,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return cw.Error()
}

// csvDetail returns the one-word summary and size column for an event.
func csvDetail(event log.Event) (string, string) {
	switch {
	case event.Payload != nil:
		return event.Payload.Result.String(), strconv.Itoa(event.Payload.Size)
	case event.StateChange != nil:
		return event.StateChange.NewState, ""
	case event.Join != nil:
		return event.Join.Outcome, ""
	case event.Uplink != nil:
		size := ""
		if event.Uplink.Size > 0 {
			size = strconv.Itoa(event.Uplink.Size)
		}
		return event.Uplink.Action.String(), size
	case event.Error != nil:
		return event.Error.Message, ""
	}
	return "", ""
}
