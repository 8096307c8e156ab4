package uplink

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/credential"
)

// Format selects the confirmation message encoding.
type Format uint8

const (
	// FormatText is the human-readable confirmation sentence.
	FormatText Format = iota

	// FormatJSON is a device envelope.
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unknown message format %q (supported: text, json)", s)
	}
}

// ConfirmationPrefix starts every text confirmation.
const ConfirmationPrefix = "SmartConfig successful. Device connected to Wi-Fi network with IP address "

// EventProvisioned is the envelope type of a confirmation.
const EventProvisioned = "provisioned"

// Envelope is the JSON confirmation.
type Envelope struct {
	DeviceID  string         `json:"device_id"`
	Timestamp int64          `json:"timestamp"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
}

// BuildMessage renders the confirmation for addr. The secret never appears in
// the message.
func BuildMessage(format Format, deviceID string, addr netip.Addr, cred credential.Credential, now time.Time) ([]byte, error) {
	if format != FormatJSON {
		return []byte(ConfirmationPrefix + addr.String()), nil
	}
	return json.Marshal(Envelope{
		DeviceID:  deviceID,
		Timestamp: now.Unix(),
		Type:      EventProvisioned,
		Payload: map[string]any{
			"ip":   addr.String(),
			"ssid": cred.Name,
		},
	})
}

// ParseConfirmation extracts the device address from a confirmation in
// either format.
func ParseConfirmation(msg []byte) (netip.Addr, error) {
	s := string(msg)
	if rest, ok := strings.CutPrefix(s, ConfirmationPrefix); ok {
		return netip.ParseAddr(strings.TrimSpace(rest))
	}

	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return netip.Addr{}, fmt.Errorf("not a confirmation: %w", err)
	}
	if env.Type != EventProvisioned {
		return netip.Addr{}, fmt.Errorf("unexpected envelope type %q", env.Type)
	}
	ip, _ := env.Payload["ip"].(string)
	return netip.ParseAddr(ip)
}
