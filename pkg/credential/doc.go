// Package credential turns raw provisioning payloads into network credentials.
//
// Parse splits a decoded payload at the first comma into a network name and a
// secret. Empty halves are accepted; only a missing delimiter is an error.
//
// Intake is the single decode → verify → parse pipeline. The provisioning
// controller and the join orchestrator's re-prompt path both use it, so a
// payload is accepted or rejected identically regardless of where it arrives.
//
// # Integrity Modes
//
//   - IntegrityTrailer: the last payload byte is the sender's checksum of the
//     plaintext. The body is decoded, then the checksum is verified.
//   - IntegrityLegacy: no trailer. The checksum is computed and compared on the
//     same bytes, which always passes. Only for senders that cannot append a
//     trailer.
package credential
