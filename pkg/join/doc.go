// Package join drives the Wi-Fi station onto the network named by a
// credential.
//
// # Attempt
//
// Each attempt resets the outcome to pending, asks the station to associate,
// and polls its status every PollInterval. The attempt ends as soon as the
// station reports connected, or once Timeout has elapsed (so at most one poll
// interval late).
//
// # Re-prompt
//
// A timed-out attempt enters the re-prompt sub-state. Fresh payloads are
// pulled from a PayloadSource and run through the credential intake:
//
//   - a valid credential starts a new attempt with a fresh Timeout
//   - a format error or empty payload is ignored and the wait continues
//   - an integrity error ends this re-prompt; after one PollInterval the
//     station is checked again (a late association counts as joined) and a
//     new re-prompt begins
//
// Re-prompting is unbounded unless Config.MaxReprompts is set. Join returns
// only when the station is connected, the context is done, or re-prompts are
// exhausted.
package join
