// Package version provides wire-format version parsing and comparison.
//
// The credential payload format is versioned as "major.minor". Version 1.0 is
// the bare obfuscated "name,secret" payload. Version 1.1 appends a one-byte
// plaintext checksum trailer. Devices advertise the version they accept so
// that senders can pick the matching encoding.
package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

const (
	// Current is the wire version implemented by this library.
	Current = "1.1"

	// Legacy is the wire version without a checksum trailer.
	Legacy = "1.0"
)

// Build identifies the binary. Overridden at link time with
// -ldflags "-X github.com/smartcfg/smartcfg-go/pkg/version.Build=...".
var Build = "dev"

// WireVersion represents a parsed "major.minor" wire version.
type WireVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (WireVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return WireVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return WireVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return WireVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return WireVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// MustParse is like Parse but panics on error. For constants only.
func MustParse(s string) WireVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor".
func (v WireVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0 or +1 depending on whether v is older than, equal to
// or newer than other.
func (v WireVersion) Compare(other WireVersion) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	return cmp.Compare(v.Minor, other.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v WireVersion) Compatible(other WireVersion) bool {
	return v.Major == other.Major
}

// HasTrailer reports whether payloads of this version carry a checksum trailer.
func (v WireVersion) HasTrailer() bool {
	return v.Compare(MustParse(Current)) >= 0
}

// ForTrailer returns the wire version string matching an integrity mode:
// Current when a trailer is sent, Legacy otherwise.
func ForTrailer(trailer bool) string {
	if trailer {
		return Current
	}
	return Legacy
}
