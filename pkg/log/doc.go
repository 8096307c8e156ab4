// Package log provides a structured provisioning trace.
//
// This package defines the Logger interface and Event types for capturing
// provisioning events at each layer (link, intake, station, uplink,
// controller). It is separate from operational logging (slog): the trace is a
// complete machine-readable record of every provisioning cycle for debugging
// field failures.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: trace to console via slog
//	cfg.Trace = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to a rotating binary file
//	cfg.Trace, _ = log.NewRotatingFileLogger(log.RotationConfig{Path: "/var/log/smartcfg/device.plog"})
//
//	// Both: use MultiLogger
//	cfg.Trace = log.NewMultiLogger(console, file)
//
// # Event Types
//
//   - Link: client attach/detach and payload writes (PayloadEvent)
//   - Intake: decode, verify and parse results (PayloadEvent)
//   - Station: join attempts and outcomes (JoinEvent)
//   - Uplink: connect, subscribe, publish and teardown (UplinkEvent)
//   - Controller: state machine transitions (StateChangeEvent)
//
// Payload bytes are never traced. Only their size and checksum are recorded,
// together with the network name once a payload parsed.
//
// # File Format
//
// Trace files are a stream of CBOR-encoded events with the .plog extension.
// The smartcfg-log tool provides viewing, statistics and export.
package log
