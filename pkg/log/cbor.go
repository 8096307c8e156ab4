package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Trace files are written canonically with RFC3339Nano timestamps so two
// traces of the same cycle compare byte for byte.
var (
	traceEncMode cbor.EncMode
	traceDecMode cbor.DecMode
)

func init() {
	var err error

	traceEncMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace CBOR encoder mode: %v", err))
	}

	traceDecMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("trace CBOR decoder mode: %v", err))
	}
}

// EncodeEvent encodes an Event to CBOR.
func EncodeEvent(event Event) ([]byte, error) {
	return traceEncMode.Marshal(event)
}

// DecodeEvent decodes a single CBOR-encoded Event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := traceDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns a streaming trace encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return traceEncMode.NewEncoder(w)
}

// NewDecoder returns a streaming trace decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return traceDecMode.NewDecoder(r)
}
