// Package provision implements the top-level provisioning state machine.
//
// A Controller consumes the event queue of a transport.Link and drives every
// accepted payload through the join orchestrator and the uplink reporter.
//
// # States
//
//	DISCONNECTED     --attach-->            AWAITING_PAYLOAD
//	AWAITING_PAYLOAD --valid payload-->     PROVISIONING
//	PROVISIONING     --joined + reported--> IDLE
//	AWAITING_PAYLOAD --detach-->            DISCONNECTED (or IDLE once provisioned)
//	IDLE             --attach-->            AWAITING_PAYLOAD
//
// Payloads that fail integrity or format checks are counted and discarded
// without a state change. The sender receives no negative acknowledgement.
//
// # Idle Teardown
//
// Once the uplink is established, no client is attached and nothing is being
// provisioned, the uplink session is closed after IdleTimeout without link
// activity. It is not reopened until the next provisioning cycle.
//
// # Concurrency
//
// Run is the only writer of pipeline state. While a join re-prompts for new
// credentials, the orchestrator reads from the same event queue through the
// controller, so presence edges are never lost.
package provision
