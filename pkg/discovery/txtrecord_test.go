package discovery

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeIntakeTXT(t *testing.T) {
	info := &IntakeInfo{
		DeviceName:    "SmartConfig",
		DeviceID:      "a1b2c3",
		IntegrityMode: "trailer",
		Version:       "1.1",
	}

	txt := EncodeIntakeTXT(info)
	if txt[TXTKeyDeviceName] != "SmartConfig" {
		t.Errorf("DN = %q, want SmartConfig", txt[TXTKeyDeviceName])
	}
	if txt[TXTKeyIntegrityMode] != "trailer" {
		t.Errorf("IM = %q, want trailer", txt[TXTKeyIntegrityMode])
	}

	got, err := DecodeIntakeTXT(txt)
	if err != nil {
		t.Fatalf("DecodeIntakeTXT() error = %v", err)
	}
	if *got != *info {
		t.Errorf("DecodeIntakeTXT() = %+v, want %+v", got, info)
	}
}

func TestEncodeIntakeTXTOmitsEmptyID(t *testing.T) {
	txt := EncodeIntakeTXT(&IntakeInfo{DeviceName: "SmartConfig", IntegrityMode: "legacy", Version: "1.0"})
	if _, ok := txt[TXTKeyDeviceID]; ok {
		t.Error("ID present for empty device id")
	}
}

func TestDecodeIntakeTXTErrors(t *testing.T) {
	valid := func() TXTRecordMap {
		return TXTRecordMap{
			TXTKeyDeviceName:    "SmartConfig",
			TXTKeyIntegrityMode: "legacy",
			TXTKeyVersion:       "1.0",
		}
	}

	tests := []struct {
		name   string
		modify func(TXTRecordMap)
		want   error
	}{
		{"missing name", func(m TXTRecordMap) { delete(m, TXTKeyDeviceName) }, ErrMissingRequired},
		{"empty name", func(m TXTRecordMap) { m[TXTKeyDeviceName] = "" }, ErrMissingRequired},
		{"missing mode", func(m TXTRecordMap) { delete(m, TXTKeyIntegrityMode) }, ErrMissingRequired},
		{"bad mode", func(m TXTRecordMap) { m[TXTKeyIntegrityMode] = "aes" }, ErrInvalidTXTRecord},
		{"missing version", func(m TXTRecordMap) { delete(m, TXTKeyVersion) }, ErrMissingRequired},
		{"bad version", func(m TXTRecordMap) { m[TXTKeyVersion] = "one" }, ErrInvalidTXTRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txt := valid()
			tt.modify(txt)
			_, err := DecodeIntakeTXT(txt)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeIntakeTXT() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTXTStringsRoundTrip(t *testing.T) {
	txt := TXTRecordMap{"DN": "Smart=Config", "IM": "trailer", "flag": ""}
	strs := TXTRecordsToStrings(txt)
	if strs[0] != "DN=Smart=Config" {
		t.Errorf("TXTRecordsToStrings()[0] = %q, want sorted DN first", strs[0])
	}

	got := StringsToTXTRecords(append(strs, "bare", ""))
	if got["DN"] != "Smart=Config" {
		t.Errorf("DN = %q, want value split at first '='", got["DN"])
	}
	if v, ok := got["bare"]; !ok || v != "" {
		t.Errorf("bare flag = %q, %v", v, ok)
	}
	if _, ok := got[""]; ok {
		t.Error("empty string produced a key")
	}
}

func TestValidateInstanceName(t *testing.T) {
	if err := ValidateInstanceName(""); err == nil {
		t.Error("ValidateInstanceName(\"\") should fail")
	}
	if err := ValidateInstanceName(strings.Repeat("a", MaxInstanceNameLen+1)); !errors.Is(err, ErrInstanceNameTooLong) {
		t.Errorf("ValidateInstanceName(long) = %v, want %v", err, ErrInstanceNameTooLong)
	}
	if err := ValidateInstanceName("SmartConfig-01"); err != nil {
		t.Errorf("ValidateInstanceName() = %v", err)
	}
}

func TestValidateTXTSize(t *testing.T) {
	if err := ValidateTXTSize(TXTRecordMap{"DN": "x"}); err != nil {
		t.Errorf("ValidateTXTSize(small) = %v", err)
	}
	if err := ValidateTXTSize(TXTRecordMap{"DN": strings.Repeat("x", MaxTXTRecordSize)}); !errors.Is(err, ErrInvalidTXTRecord) {
		t.Errorf("ValidateTXTSize(large) = %v, want %v", err, ErrInvalidTXTRecord)
	}
}

func TestInstanceName(t *testing.T) {
	tests := []struct {
		info IntakeInfo
		want string
	}{
		{IntakeInfo{DeviceName: "SmartConfig"}, "SmartConfig"},
		{IntakeInfo{DeviceName: "SmartConfig", DeviceID: "ab12"}, "SmartConfig-ab12"},
		{IntakeInfo{DeviceName: strings.Repeat("n", 70)}, strings.Repeat("n", MaxInstanceNameLen)},
	}
	for _, tt := range tests {
		if got := tt.info.InstanceName(); got != tt.want {
			t.Errorf("InstanceName() = %q, want %q", got, tt.want)
		}
	}
}
