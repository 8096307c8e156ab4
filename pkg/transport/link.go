package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// Identity of the intake link.
const (
	// DeviceName is the advertised device name.
	DeviceName = "SmartConfig"

	// ServiceUUID identifies the provisioning service.
	ServiceUUID = "4fafc201-1fb5-459e-8fcc-c5c9c331914b"

	// CharacteristicUUID identifies the writable credential characteristic.
	CharacteristicUUID = "beb5483e-36e1-4688-b7f5-ea07361b26a8"

	// MaxPayloadSize is the largest payload a client may write.
	MaxPayloadSize = 512

	// DefaultEventBuffer is the default capacity of the event channel.
	DefaultEventBuffer = 16
)

// Link errors.
var (
	ErrClientAttached = errors.New("a client is already attached")
	ErrNotAttached    = errors.New("no client attached")
	ErrNotAdvertising = errors.New("link is not advertising")
	ErrLinkClosed     = errors.New("link closed")
)

// EventKind classifies link events.
type EventKind uint8

const (
	// EventAttached indicates a client attached (rising presence edge).
	EventAttached EventKind = iota

	// EventDetached indicates the client detached (falling presence edge).
	EventDetached

	// EventWrite indicates the client wrote a new payload.
	EventWrite
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventAttached:
		return "ATTACHED"
	case EventDetached:
		return "DETACHED"
	case EventWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// Event is a presence edge or a write on a link.
type Event struct {
	Kind       EventKind
	SessionID  string
	RemoteAddr string

	// Payload is a copy of the written bytes for EventWrite.
	Payload []byte

	// Size is the payload size for EventWrite.
	Size int

	Time time.Time
}

// Link is a short-range link carrying credential payloads.
type Link interface {
	// Events returns the channel of presence edges and writes. The channel
	// is closed when the link is closed.
	Events() <-chan Event

	// LatestPayload returns a copy of the most recently written payload.
	// Consumers of EventWrite read Event.Payload instead.
	LatestPayload() []byte

	// StartAdvertising makes the link discoverable.
	StartAdvertising(ctx context.Context) error

	// StopAdvertising withdraws the advertisement.
	StopAdvertising() error
}

// hub holds the state shared by all link implementations: the current value,
// the attached session and the event channel.
type hub struct {
	mu      sync.Mutex
	value   []byte
	session string
	remote  string

	events    chan Event
	emitMu    sync.RWMutex
	done      chan struct{}
	closeOnce sync.Once

	trace log.Logger
}

func newHub(buffer int, trace log.Logger) *hub {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &hub{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
		trace:  log.OrNoop(trace),
	}
}

// attach registers a new session. Only one session may be attached.
func (h *hub) attach(remote string) (string, error) {
	h.mu.Lock()
	if h.isClosed() {
		h.mu.Unlock()
		return "", ErrLinkClosed
	}
	if h.session != "" {
		h.mu.Unlock()
		return "", ErrClientAttached
	}
	h.session = uuid.New().String()
	h.remote = remote
	session := h.session
	h.mu.Unlock()

	h.traceState(session, remote, "DETACHED", "ATTACHED")
	h.emit(Event{Kind: EventAttached, SessionID: session, RemoteAddr: remote, Time: time.Now()})
	return session, nil
}

// detach ends the given session. An empty session detaches whatever is
// attached.
func (h *hub) detach(session string) error {
	h.mu.Lock()
	if h.session == "" || (session != "" && session != h.session) {
		h.mu.Unlock()
		return ErrNotAttached
	}
	session, remote := h.session, h.remote
	h.session, h.remote = "", ""
	h.mu.Unlock()

	h.traceState(session, remote, "ATTACHED", "DETACHED")
	h.emit(Event{Kind: EventDetached, SessionID: session, RemoteAddr: remote, Time: time.Now()})
	return nil
}

// write replaces the value. An empty session writes to whatever is attached.
func (h *hub) write(session string, data []byte) error {
	if len(data) > MaxPayloadSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), MaxPayloadSize)
	}

	h.mu.Lock()
	if h.session == "" || (session != "" && session != h.session) {
		h.mu.Unlock()
		return ErrNotAttached
	}
	h.value = append(h.value[:0:0], data...)
	session, remote := h.session, h.remote
	h.mu.Unlock()

	h.trace.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  session,
		Direction:  log.DirectionIn,
		Layer:      log.LayerLink,
		Category:   log.CategoryPayload,
		RemoteAddr: remote,
		Payload:    &log.PayloadEvent{Size: len(data), Result: log.PayloadReceived},
	})
	h.emit(Event{
		Kind:       EventWrite,
		SessionID:  session,
		RemoteAddr: remote,
		Payload:    append([]byte(nil), data...),
		Size:       len(data),
		Time:       time.Now(),
	})
	return nil
}

func (h *hub) latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.value == nil {
		return nil
	}
	return append([]byte(nil), h.value...)
}

func (h *hub) attached() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session, h.session != ""
}

func (h *hub) reset() {
	h.mu.Lock()
	h.value = nil
	h.mu.Unlock()
}

// emit delivers ev unless the hub is closed. Blocks while the buffer is full.
func (h *hub) emit(ev Event) {
	h.emitMu.RLock()
	defer h.emitMu.RUnlock()

	if h.isClosed() {
		return
	}
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

// close stops event delivery and closes the events channel once no emit is
// in flight.
func (h *hub) close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.emitMu.Lock()
		close(h.events)
		h.emitMu.Unlock()
	})
}

func (h *hub) isClosed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *hub) traceState(session, remote, oldState, newState string) {
	h.trace.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  session,
		Direction:  log.DirectionNone,
		Layer:      log.LayerLink,
		Category:   log.CategoryState,
		RemoteAddr: remote,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityLink,
			OldState: oldState,
			NewState: newState,
		},
	})
}
