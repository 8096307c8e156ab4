package log

import "testing"

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{DirectionIn.String(), "IN"},
		{DirectionOut.String(), "OUT"},
		{DirectionNone.String(), "LOCAL"},
		{Direction(9).String(), "UNKNOWN"},
		{LayerLink.String(), "LINK"},
		{LayerIntake.String(), "INTAKE"},
		{LayerStation.String(), "STATION"},
		{LayerUplink.String(), "UPLINK"},
		{LayerController.String(), "CONTROLLER"},
		{CategoryPayload.String(), "PAYLOAD"},
		{CategoryJoin.String(), "JOIN"},
		{CategoryError.String(), "ERROR"},
		{PayloadIntegrityRejected.String(), "INTEGRITY_REJECTED"},
		{PayloadFormatRejected.String(), "FORMAT_REJECTED"},
		{StateEntityProvision.String(), "PROVISION"},
		{UplinkSubscribe.String(), "SUBSCRIBE"},
		{UplinkDisconnect.String(), "DISCONNECT"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParseLayerAndCategory(t *testing.T) {
	for l := LayerLink; l <= LayerController; l++ {
		got, ok := ParseLayer(l.String())
		if !ok || got != l {
			t.Errorf("ParseLayer(%q) = %v, %v", l.String(), got, ok)
		}
	}
	if _, ok := ParseLayer("WIRE"); ok {
		t.Error("ParseLayer(WIRE) should fail")
	}

	for c := CategoryPayload; c <= CategoryError; c++ {
		got, ok := ParseCategory(c.String())
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCategory("CONTROL"); ok {
		t.Error("ParseCategory(CONTROL) should fail")
	}
}
