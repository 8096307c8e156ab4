// Package transport provides the short-range links that carry credential
// payloads to the device.
//
// A Link models a single writable characteristic: one client at a time
// attaches, writes a payload that replaces the previous value, and detaches.
// Consumers see presence edges and writes as Events on one channel and read
// the current value with LatestPayload.
//
// # Implementations
//
//   - Characteristic: in-memory link, driven by tests and the interactive
//     console.
//   - Server: LAN intake over TCP. Each connection is one client session and
//     each length-prefixed frame is one write.
//
// # Framing
//
//	┌────────────────────────────────┐
//	│   obfuscated payload (≤512B)   │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// Payload bytes are never logged. Traces carry sizes only.
package transport
