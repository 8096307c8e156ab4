package credential

import (
	"bytes"
	"errors"
)

// Delimiter separates the network name from the secret.
const Delimiter = ','

// Parse errors.
var (
	ErrNoDelimiter = errors.New("payload has no delimiter")
)

// Credential is a network name and secret pair.
type Credential struct {
	Name   string
	Secret string
}

// String returns the network name with the secret redacted.
func (c Credential) String() string {
	if c.Secret == "" {
		return c.Name + " (no secret)"
	}
	return c.Name + " (secret redacted)"
}

// IsZero reports whether both fields are empty.
func (c Credential) IsZero() bool {
	return c.Name == "" && c.Secret == ""
}

// Parse splits a decoded payload at the first delimiter.
// Everything after the first delimiter, including further commas, is the secret.
func Parse(decoded []byte) (Credential, error) {
	i := bytes.IndexByte(decoded, Delimiter)
	if i < 0 {
		return Credential{}, ErrNoDelimiter
	}
	return Credential{
		Name:   string(decoded[:i]),
		Secret: string(decoded[i+1:]),
	}, nil
}

// Format joins a credential into the plaintext wire form.
func Format(c Credential) []byte {
	out := make([]byte, 0, len(c.Name)+1+len(c.Secret))
	out = append(out, c.Name...)
	out = append(out, Delimiter)
	return append(out, c.Secret...)
}
