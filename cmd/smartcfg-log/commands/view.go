// Package commands implements the smartcfg-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// typeLabel names the populated event body.
func typeLabel(event log.Event) string {
	switch {
	case event.Payload != nil:
		return "Payload"
	case event.StateChange != nil:
		return "State"
	case event.Join != nil:
		return "Join"
	case event.Uplink != nil:
		return "Uplink"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSessionID(event.SessionID)
	if session == "" {
		session = "-"
	}

	fmt.Fprintf(w, "%s [session:%s] %-5s %s %s\n", ts, session, event.Direction, event.Layer, typeLabel(event))

	if event.RemoteAddr != "" {
		fmt.Fprintf(w, "  Remote: %s\n", event.RemoteAddr)
	}

	switch {
	case event.Payload != nil:
		formatPayloadDetails(w, event.Payload)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Join != nil:
		formatJoinDetails(w, event.Join)
	case event.Uplink != nil:
		formatUplinkDetails(w, event.Uplink)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatPayloadDetails(w io.Writer, p *log.PayloadEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", p.Size)
	if p.Result != log.PayloadReceived {
		fmt.Fprintf(w, "  Result: %s\n", p.Result)
	}
	if p.Checksum != 0 {
		fmt.Fprintf(w, "  Checksum: 0x%02x\n", p.Checksum)
	}
	if p.Network != "" {
		fmt.Fprintf(w, "  Network: %s\n", p.Network)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatJoinDetails(w io.Writer, j *log.JoinEvent) {
	fmt.Fprintf(w, "  Network: %s (attempt %d)\n", j.Network, j.Attempt)
	fmt.Fprintf(w, "  Outcome: %s", j.Outcome)
	if j.Elapsed > 0 {
		fmt.Fprintf(w, " after %s", formatDuration(j.Elapsed))
	}
	fmt.Fprintln(w)
	if j.Addr != "" {
		fmt.Fprintf(w, "  Addr: %s\n", j.Addr)
	}
}

func formatUplinkDetails(w io.Writer, u *log.UplinkEvent) {
	result := "ok"
	if !u.Success {
		result = "failed"
	}
	fmt.Fprintf(w, "  Action: %s (%s)\n", u.Action, result)
	if u.Server != "" {
		fmt.Fprintf(w, "  Server: %s\n", u.Server)
	}
	if u.ClientID != "" {
		fmt.Fprintf(w, "  ClientID: %s", u.ClientID)
		if u.Attempt > 0 {
			fmt.Fprintf(w, "  Attempt: %d", u.Attempt)
		}
		fmt.Fprintln(w)
	}
	if u.Topic != "" {
		fmt.Fprintf(w, "  Topic: %s\n", u.Topic)
	}
	if u.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", u.Size)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer name (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	if l, ok := log.ParseLayer(strings.ToUpper(s)); ok {
		return l, nil
	}
	return 0, fmt.Errorf("invalid layer: %s (must be link, intake, station, uplink or controller)", s)
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	case "local":
		return log.DirectionNone, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in, out or local)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	if c, ok := log.ParseCategory(strings.ToUpper(s)); ok {
		return c, nil
	}
	return 0, fmt.Errorf("invalid category: %s (must be payload, state, join, uplink or error)", s)
}

// RunView prints every event matching filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for event, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}
