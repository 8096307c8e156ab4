// Package connection provides uplink session lifecycle and retry pacing.
//
// This package handles:
//   - Backoff delays between connection attempts, fixed or exponential
//   - Session state tracking with change callbacks
//   - A dial loop that retries until connected, cancelled or exhausted
//
// # Retry Pacing
//
// The provisioning uplink retries at a fixed interval:
//
//	delay(n) = RetryInterval    (multiplier 1, no jitter)
//
// Exponential pacing with jitter is also available for callers that need it:
//
//	delay(n) = min(Initial * Multiplier^n, Max) + random(0, delay * Jitter)
//
// # Session Lifetime
//
// A session is dialed on demand and never redialed automatically after it is
// lost or closed. The next Connect call starts a fresh dial loop with the
// backoff reset.
package connection
