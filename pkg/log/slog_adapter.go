package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}

	switch {
	case event.Payload != nil:
		attrs = append(attrs,
			slog.Int("size", event.Payload.Size),
			slog.String("result", event.Payload.Result.String()),
		)
		if event.Payload.Result != PayloadReceived {
			attrs = append(attrs, slog.Int("checksum", int(event.Payload.Checksum)))
		}
		if event.Payload.Network != "" {
			attrs = append(attrs, slog.String("network", event.Payload.Network))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Join != nil:
		attrs = append(attrs,
			slog.String("network", event.Join.Network),
			slog.Int("attempt", event.Join.Attempt),
			slog.String("outcome", event.Join.Outcome),
			slog.Duration("elapsed", event.Join.Elapsed),
		)
		if event.Join.Addr != "" {
			attrs = append(attrs, slog.String("addr", event.Join.Addr))
		}
	case event.Uplink != nil:
		attrs = append(attrs,
			slog.String("action", event.Uplink.Action.String()),
			slog.Bool("success", event.Uplink.Success),
		)
		if event.Uplink.Server != "" {
			attrs = append(attrs, slog.String("server", event.Uplink.Server))
		}
		if event.Uplink.ClientID != "" {
			attrs = append(attrs, slog.String("client_id", event.Uplink.ClientID))
		}
		if event.Uplink.Topic != "" {
			attrs = append(attrs, slog.String("topic", event.Uplink.Topic))
		}
		if event.Uplink.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", event.Uplink.Attempt))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
