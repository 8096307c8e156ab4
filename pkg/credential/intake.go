package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smartcfg/smartcfg-go/pkg/codec"
)

// Intake errors.
var (
	ErrEmptyPayload     = errors.New("payload is empty")
	ErrTruncated        = errors.New("payload shorter than checksum trailer")
	ErrChecksumMismatch = errors.New("payload checksum mismatch")
)

// IntegrityMode selects how the payload checksum is obtained.
type IntegrityMode uint8

const (
	// IntegrityTrailer expects the plaintext checksum as the last payload byte.
	IntegrityTrailer IntegrityMode = iota

	// IntegrityLegacy has no trailer; the self-computed checksum always matches.
	IntegrityLegacy
)

// String returns the mode name as used in configuration files.
func (m IntegrityMode) String() string {
	switch m {
	case IntegrityTrailer:
		return "trailer"
	case IntegrityLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// ParseIntegrityMode parses a mode name.
func ParseIntegrityMode(s string) (IntegrityMode, error) {
	switch strings.ToLower(s) {
	case "", "trailer":
		return IntegrityTrailer, nil
	case "legacy":
		return IntegrityLegacy, nil
	default:
		return 0, fmt.Errorf("unknown integrity mode %q (supported: trailer, legacy)", s)
	}
}

// IsIntegrityError reports whether err means the payload failed its checksum.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrChecksumMismatch) || errors.Is(err, ErrTruncated)
}

// IsFormatError reports whether err means the payload decoded but could not be
// split into a credential.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrNoDelimiter)
}

// Intake decodes, verifies and parses raw payloads.
type Intake struct {
	obf  *codec.Obfuscator
	mode IntegrityMode
}

// NewIntake creates an intake pipeline.
func NewIntake(obf *codec.Obfuscator, mode IntegrityMode) *Intake {
	return &Intake{obf: obf, mode: mode}
}

// Mode returns the configured integrity mode.
func (in *Intake) Mode() IntegrityMode {
	return in.mode
}

// Accept runs raw through decode, checksum verification and parsing, in that
// order. raw is not retained.
func (in *Intake) Accept(raw []byte) (Credential, error) {
	if len(raw) == 0 {
		return Credential{}, ErrEmptyPayload
	}

	var (
		plain []byte
		sum   byte
	)
	switch in.mode {
	case IntegrityLegacy:
		plain = in.obf.Decode(raw)
		sum = codec.Checksum(plain)
	default:
		if len(raw) <= codec.ChecksumSize {
			return Credential{}, ErrTruncated
		}
		body := raw[:len(raw)-codec.ChecksumSize]
		sum = raw[len(raw)-codec.ChecksumSize]
		plain = in.obf.Decode(body)
	}

	if !codec.Verify(plain, sum) {
		return Credential{}, fmt.Errorf("%w: trailer 0x%02x, computed 0x%02x",
			ErrChecksumMismatch, sum, codec.Checksum(plain))
	}

	cred, err := Parse(plain)
	if err != nil {
		return Credential{}, fmt.Errorf("decoded %d bytes: %w", len(plain), err)
	}
	return cred, nil
}

// Encode builds the wire payload for c, as a companion app would send it.
func (in *Intake) Encode(c Credential) []byte {
	plain := Format(c)
	if in.mode == IntegrityLegacy {
		return in.obf.Encode(plain)
	}
	return in.obf.Seal(plain)
}
