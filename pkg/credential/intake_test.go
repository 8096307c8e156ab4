package credential

import (
	"errors"
	"testing"

	"github.com/smartcfg/smartcfg-go/pkg/codec"
)

func TestIntakeLegacy(t *testing.T) {
	in := NewIntake(codec.NewDefaultObfuscator(), IntegrityLegacy)

	t.Run("Accepts", func(t *testing.T) {
		raw := codec.NewDefaultObfuscator().Encode([]byte("homenet,secret123"))
		got, err := in.Accept(raw)
		if err != nil {
			t.Fatalf("Accept() error = %v", err)
		}
		if got.Name != "homenet" || got.Secret != "secret123" {
			t.Errorf("Accept() = %+v", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, err := in.Accept(nil); !errors.Is(err, ErrEmptyPayload) {
			t.Errorf("Accept(nil) error = %v, want %v", err, ErrEmptyPayload)
		}
	})

	t.Run("FormatError", func(t *testing.T) {
		raw := codec.NewDefaultObfuscator().Encode([]byte("noDelimiterHere"))
		_, err := in.Accept(raw)
		if !IsFormatError(err) {
			t.Errorf("Accept() error = %v, want format error", err)
		}
		if IsIntegrityError(err) {
			t.Error("format error must not classify as integrity error")
		}
	})

	t.Run("EncodeMatchesWire", func(t *testing.T) {
		raw := in.Encode(Credential{Name: "ssid", Secret: "pw"})
		if string(raw) != string(codec.NewDefaultObfuscator().Encode([]byte("ssid,pw"))) {
			t.Errorf("Encode() = %x", raw)
		}
	})
}

func TestIntakeTrailer(t *testing.T) {
	obf := codec.NewDefaultObfuscator()
	in := NewIntake(obf, IntegrityTrailer)

	t.Run("Accepts", func(t *testing.T) {
		got, err := in.Accept(obf.Seal([]byte("ssid,pw")))
		if err != nil {
			t.Fatalf("Accept() error = %v", err)
		}
		if got != (Credential{Name: "ssid", Secret: "pw"}) {
			t.Errorf("Accept() = %+v", got)
		}
	})

	t.Run("CorruptTrailer", func(t *testing.T) {
		raw := obf.Seal([]byte("ssid,pw"))
		raw[len(raw)-1] ^= 0xFF
		_, err := in.Accept(raw)
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Fatalf("Accept() error = %v, want %v", err, ErrChecksumMismatch)
		}
		if !IsIntegrityError(err) {
			t.Error("IsIntegrityError() = false, want true")
		}
	})

	t.Run("CorruptBody", func(t *testing.T) {
		raw := obf.Seal([]byte("ssid,pw"))
		raw[0] ^= 0x10
		if _, err := in.Accept(raw); !IsIntegrityError(err) {
			t.Errorf("Accept() error = %v, want integrity error", err)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		if _, err := in.Accept([]byte{0x00}); !errors.Is(err, ErrTruncated) {
			t.Errorf("Accept() error = %v, want %v", err, ErrTruncated)
		}
	})

	t.Run("VerifiedButMalformed", func(t *testing.T) {
		_, err := in.Accept(obf.Seal([]byte("noDelimiterHere")))
		if !IsFormatError(err) {
			t.Errorf("Accept() error = %v, want format error", err)
		}
	})

	t.Run("EncodeRoundTrip", func(t *testing.T) {
		c := Credential{Name: "homenet", Secret: "a,b"}
		got, err := in.Accept(in.Encode(c))
		if err != nil {
			t.Fatalf("Accept(Encode()) error = %v", err)
		}
		if got != c {
			t.Errorf("Accept(Encode()) = %+v, want %+v", got, c)
		}
	})

	t.Run("InputNotRetained", func(t *testing.T) {
		raw := obf.Seal([]byte("ssid,pw"))
		got, err := in.Accept(raw)
		if err != nil {
			t.Fatal(err)
		}
		for i := range raw {
			raw[i] = 0
		}
		if got.Name != "ssid" || got.Secret != "pw" {
			t.Errorf("credential changed after input mutation: %+v", got)
		}
	})
}

func TestParseIntegrityMode(t *testing.T) {
	tests := []struct {
		in      string
		want    IntegrityMode
		wantErr bool
	}{
		{"", IntegrityTrailer, false},
		{"trailer", IntegrityTrailer, false},
		{"Legacy", IntegrityLegacy, false},
		{"crc32", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseIntegrityMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseIntegrityMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseIntegrityMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if IntegrityTrailer.String() != "trailer" || IntegrityLegacy.String() != "legacy" {
		t.Error("unexpected IntegrityMode names")
	}
}
