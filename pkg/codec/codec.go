package codec

import (
	"errors"
	"fmt"
)

// ChecksumSize is the size of the checksum trailer in a sealed frame.
const ChecksumSize = 1

// DefaultKey is the obfuscation key shared with companion apps.
var DefaultKey = []byte{0x01, 0x02, 0x03}

// Codec errors.
var (
	ErrEmptyKey         = errors.New("obfuscation key is empty")
	ErrFrameTooShort    = errors.New("frame shorter than checksum trailer")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Obfuscator applies a repeating XOR key to payloads.
// It is immutable and safe for concurrent use.
type Obfuscator struct {
	key []byte
}

// NewObfuscator creates an obfuscator for the given key.
// The key is copied.
func NewObfuscator(key []byte) (*Obfuscator, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Obfuscator{key: k}, nil
}

// NewDefaultObfuscator returns an obfuscator using DefaultKey.
func NewDefaultObfuscator() *Obfuscator {
	o, _ := NewObfuscator(DefaultKey)
	return o
}

// KeyLen returns the key length in bytes.
func (o *Obfuscator) KeyLen() int {
	return len(o.key)
}

// Encode obfuscates b and returns a new slice. b is not modified.
func (o *Obfuscator) Encode(b []byte) []byte {
	return o.apply(b)
}

// Decode reverses Encode and returns a new slice. b is not modified.
func (o *Obfuscator) Decode(b []byte) []byte {
	return o.apply(b)
}

func (o *Obfuscator) apply(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = c ^ o.key[i%len(o.key)]
	}
	return out
}

// Seal obfuscates plain and appends the checksum of plain.
func (o *Obfuscator) Seal(plain []byte) []byte {
	frame := o.apply(plain)
	return append(frame, Checksum(plain))
}

// Open splits a sealed frame, decodes the body and verifies the trailer.
// The decoded plaintext and the received checksum are returned even when the
// checksum does not match, so callers can log what they got.
func (o *Obfuscator) Open(frame []byte) (plain []byte, sum byte, err error) {
	if len(frame) < ChecksumSize {
		return nil, 0, ErrFrameTooShort
	}
	body := frame[:len(frame)-ChecksumSize]
	sum = frame[len(frame)-ChecksumSize]

	plain = o.apply(body)
	if !Verify(plain, sum) {
		return plain, sum, fmt.Errorf("%w: got 0x%02x, want 0x%02x", ErrChecksumMismatch, sum, Checksum(plain))
	}
	return plain, sum, nil
}

// Checksum returns the XOR-fold of all bytes in b. The checksum of an empty
// slice is zero.
func Checksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum ^= c
	}
	return sum
}

// Verify reports whether sum is the checksum of b.
func Verify(b []byte, sum byte) bool {
	return Checksum(b) == sum
}
