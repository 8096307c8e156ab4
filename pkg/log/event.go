package log

import "time"

// Event represents a provisioning trace event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the short-range client connection or provisioning
	// cycle (UUID).
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates data flow relative to the device.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the peer address, if any.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// DeviceID identifies the device emitting the trace.
	DeviceID string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Payload     *PayloadEvent     `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Join        *JoinEvent        `cbor:"12,keyasint,omitempty"`
	Uplink      *UplinkEvent      `cbor:"13,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"`
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data received by the device.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent by the device.
	DirectionOut Direction = 1
	// DirectionNone indicates a local event.
	DirectionNone Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionNone:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which pipeline stage captured the event.
type Layer uint8

const (
	// LayerLink is the short-range link carrying payloads.
	LayerLink Layer = 0
	// LayerIntake is payload decode, verify and parse.
	LayerIntake Layer = 1
	// LayerStation is the Wi-Fi join.
	LayerStation Layer = 2
	// LayerUplink is the publish/subscribe uplink.
	LayerUplink Layer = 3
	// LayerController is the provisioning state machine.
	LayerController Layer = 4
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerLink:
		return "LINK"
	case LayerIntake:
		return "INTAKE"
	case LayerStation:
		return "STATION"
	case LayerUplink:
		return "UPLINK"
	case LayerController:
		return "CONTROLLER"
	default:
		return "UNKNOWN"
	}
}

// ParseLayer parses a layer name as printed by String.
func ParseLayer(s string) (Layer, bool) {
	for l := LayerLink; l <= LayerController; l++ {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPayload indicates a payload write or intake result.
	CategoryPayload Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryJoin indicates a network join attempt.
	CategoryJoin Category = 2
	// CategoryUplink indicates an uplink operation.
	CategoryUplink Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPayload:
		return "PAYLOAD"
	case CategoryState:
		return "STATE"
	case CategoryJoin:
		return "JOIN"
	case CategoryUplink:
		return "UPLINK"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name as printed by String.
func ParseCategory(s string) (Category, bool) {
	for c := CategoryPayload; c <= CategoryError; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// PayloadEvent describes a payload without its content.
type PayloadEvent struct {
	// Size is the payload size in bytes.
	Size int `cbor:"1,keyasint"`

	// Checksum is the XOR-fold checksum of the decoded payload.
	Checksum uint8 `cbor:"2,keyasint,omitempty"`

	// Result of the intake pipeline (unset for raw link writes).
	Result PayloadResult `cbor:"3,keyasint,omitempty"`

	// Network is the parsed network name, set only when accepted.
	Network string `cbor:"4,keyasint,omitempty"`
}

// PayloadResult is the outcome of running a payload through intake.
type PayloadResult uint8

const (
	// PayloadReceived indicates the payload was written but not yet processed.
	PayloadReceived PayloadResult = 0
	// PayloadAccepted indicates a valid credential.
	PayloadAccepted PayloadResult = 1
	// PayloadIntegrityRejected indicates a checksum failure.
	PayloadIntegrityRejected PayloadResult = 2
	// PayloadFormatRejected indicates a missing delimiter.
	PayloadFormatRejected PayloadResult = 3
	// PayloadEmpty indicates nothing was written.
	PayloadEmpty PayloadResult = 4
)

// String returns the result name.
func (r PayloadResult) String() string {
	switch r {
	case PayloadReceived:
		return "RECEIVED"
	case PayloadAccepted:
		return "ACCEPTED"
	case PayloadIntegrityRejected:
		return "INTEGRITY_REJECTED"
	case PayloadFormatRejected:
		return "FORMAT_REJECTED"
	case PayloadEmpty:
		return "EMPTY"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures lifecycle transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityLink indicates a short-range client presence change.
	StateEntityLink StateEntity = 0
	// StateEntityProvision indicates a provisioning state machine change.
	StateEntityProvision StateEntity = 1
	// StateEntityJoin indicates a join orchestrator change.
	StateEntityJoin StateEntity = 2
	// StateEntityUplink indicates an uplink session change.
	StateEntityUplink StateEntity = 3
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityLink:
		return "LINK"
	case StateEntityProvision:
		return "PROVISION"
	case StateEntityJoin:
		return "JOIN"
	case StateEntityUplink:
		return "UPLINK"
	default:
		return "UNKNOWN"
	}
}

// JoinEvent captures one network join attempt.
type JoinEvent struct {
	// Network is the network name (never the secret).
	Network string `cbor:"1,keyasint"`

	// Attempt counts joins within one provisioning cycle, starting at 1.
	Attempt int `cbor:"2,keyasint"`

	// Outcome is JOINED, TIMED_OUT or PENDING.
	Outcome string `cbor:"3,keyasint"`

	// Elapsed is the time spent waiting for association.
	Elapsed time.Duration `cbor:"4,keyasint,omitempty"`

	// Addr is the assigned address when joined.
	Addr string `cbor:"5,keyasint,omitempty"`
}

// UplinkEvent captures one uplink operation.
type UplinkEvent struct {
	// Action performed.
	Action UplinkAction `cbor:"1,keyasint"`

	// Server is the broker host:port.
	Server string `cbor:"2,keyasint,omitempty"`

	// ClientID used for the connection attempt.
	ClientID string `cbor:"3,keyasint,omitempty"`

	// Topic for subscribe and publish.
	Topic string `cbor:"4,keyasint,omitempty"`

	// Attempt number for connect actions.
	Attempt int `cbor:"5,keyasint,omitempty"`

	// Size of the published message.
	Size int `cbor:"6,keyasint,omitempty"`

	// Success reports whether the action succeeded.
	Success bool `cbor:"7,keyasint"`
}

// UplinkAction indicates the type of uplink operation.
type UplinkAction uint8

const (
	// UplinkConnect indicates a broker connection attempt.
	UplinkConnect UplinkAction = 0
	// UplinkSubscribe indicates a topic subscription.
	UplinkSubscribe UplinkAction = 1
	// UplinkPublish indicates a confirmation publish.
	UplinkPublish UplinkAction = 2
	// UplinkDisconnect indicates a session teardown.
	UplinkDisconnect UplinkAction = 3
)

// String returns the action name.
func (a UplinkAction) String() string {
	switch a {
	case UplinkConnect:
		return "CONNECT"
	case UplinkSubscribe:
		return "SUBSCRIBE"
	case UplinkPublish:
		return "PUBLISH"
	case UplinkDisconnect:
		return "DISCONNECT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
