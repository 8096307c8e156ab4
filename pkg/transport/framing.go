package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/log"
)

// A LAN intake frame is a 2-byte big-endian payload length followed by the
// payload. Each frame carries exactly one characteristic write.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 2

	// DefaultMaxMessageSize is the default maximum payload size.
	DefaultMaxMessageSize = MaxPayloadSize
)

// Framing errors.
var (
	// ErrMessageTooLarge indicates the payload exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMessageEmpty indicates a zero-length frame.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrFrameTruncated indicates the stream ended inside a frame.
	ErrFrameTruncated = errors.New("frame truncated")
)

// FrameSize returns the size of a frame carrying payloadSize bytes.
func FrameSize(payloadSize int) int {
	return LengthPrefixSize + payloadSize
}

// AppendFrame appends the frame for payload to dst.
func AppendFrame(dst, payload []byte) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(payload)))
	return append(dst, payload...)
}

func checkSize(n int, maxSize uint32) error {
	if n == 0 {
		return ErrMessageEmpty
	}
	if uint32(n) > maxSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, n, maxSize)
	}
	return nil
}

// frameTrace records frame sizes to an optional trace logger.
type frameTrace struct {
	logger  log.Logger
	session string
}

func (t *frameTrace) record(size int, dir log.Direction) {
	if t.logger == nil {
		return
	}
	t.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: t.session,
		Direction: dir,
		Layer:     log.LayerLink,
		Category:  log.CategoryPayload,
		Payload:   &log.PayloadEvent{Size: size, Result: log.PayloadReceived},
	})
}

// FrameWriter writes payloads as frames. It is safe for concurrent use.
type FrameWriter struct {
	w       io.Writer
	maxSize uint32
	trace   frameTrace
	mu      sync.Mutex
}

// NewFrameWriter creates a frame writer accepting payloads up to maxSize bytes.
// A zero maxSize selects DefaultMaxMessageSize.
func NewFrameWriter(w io.Writer, maxSize uint32) *FrameWriter {
	if maxSize == 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &FrameWriter{w: w, maxSize: maxSize}
}

// SetTrace records the size of every written frame under session.
// Pass nil to disable.
func (fw *FrameWriter) SetTrace(logger log.Logger, session string) {
	fw.trace = frameTrace{logger: logger, session: session}
}

// WriteFrame writes payload as one frame with a single Write call.
func (fw *FrameWriter) WriteFrame(payload []byte) error {
	if err := checkSize(len(payload), fw.maxSize); err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	frame := AppendFrame(make([]byte, 0, FrameSize(len(payload))), payload)
	if _, err := fw.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	fw.trace.record(len(payload), log.DirectionOut)
	return nil
}

// FrameReader reads frames from a stream.
type FrameReader struct {
	r       io.Reader
	maxSize uint32
	trace   frameTrace
	hdr     [LengthPrefixSize]byte
}

// NewFrameReader creates a frame reader rejecting payloads over maxSize bytes.
// A zero maxSize selects DefaultMaxMessageSize.
func NewFrameReader(r io.Reader, maxSize uint32) *FrameReader {
	if maxSize == 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &FrameReader{r: r, maxSize: maxSize}
}

// SetTrace records the size of every read frame under session.
// Pass nil to disable.
func (fr *FrameReader) SetTrace(logger log.Logger, session string) {
	fr.trace = frameTrace{logger: logger, session: session}
}

// ReadFrame returns the next payload. A stream that ends cleanly between
// frames returns io.EOF. An oversized length is rejected before the payload
// is read.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.hdr[:]); err != nil {
		switch {
		case err == io.EOF:
			return nil, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, ErrFrameTruncated
		default:
			return nil, fmt.Errorf("failed to read length prefix: %w", err)
		}
	}

	n := int(binary.BigEndian.Uint16(fr.hdr[:]))
	if err := checkSize(n, fr.maxSize); err != nil {
		return nil, err
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	fr.trace.record(n, log.DirectionIn)
	return payload, nil
}
