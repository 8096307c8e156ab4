package log

import (
	"errors"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects trace events. Zero-valued fields match everything.
type Filter struct {
	// SessionID matches events whose session starts with this value, so the
	// 8-character ids printed by the viewer can be pasted back.
	SessionID string
	DeviceID  string

	Direction *Direction
	Layer     *Layer
	Category  *Category

	// TimeStart is inclusive, TimeEnd exclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time
}

// Match reports whether event passes every set criterion.
func (f Filter) Match(event Event) bool {
	switch {
	case f.SessionID != "" && !strings.HasPrefix(event.SessionID, f.SessionID):
		return false
	case f.DeviceID != "" && event.DeviceID != f.DeviceID:
		return false
	case f.Direction != nil && event.Direction != *f.Direction:
		return false
	case f.Layer != nil && event.Layer != *f.Layer:
		return false
	case f.Category != nil && event.Category != *f.Category:
		return false
	case f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart):
		return false
	case f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	}
	return true
}

// Reader streams trace events from a .plog file.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader creates a Reader over every event in path.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader returning only events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{file: f, decoder: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF at the end of the file.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		if r.filter.Match(event) {
			return event, nil
		}
	}
}

// All yields the remaining matching events. Iteration stops after the
// first decode error, which is yielded with a zero Event.
func (r *Reader) All() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			event, err := r.Next()
			if err == io.EOF {
				return
			}
			if !yield(event, err) || err != nil {
				return
			}
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
