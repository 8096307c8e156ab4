package discovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/version"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeIntakeTXT creates TXT records for intake discovery.
func EncodeIntakeTXT(info *IntakeInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyDeviceName] = info.DeviceName
	txt[TXTKeyIntegrityMode] = info.IntegrityMode
	txt[TXTKeyVersion] = info.Version

	if info.DeviceID != "" {
		txt[TXTKeyDeviceID] = info.DeviceID
	}

	return txt
}

// DecodeIntakeTXT parses TXT records from intake discovery.
func DecodeIntakeTXT(txt TXTRecordMap) (*IntakeInfo, error) {
	info := &IntakeInfo{}

	var ok bool
	info.DeviceName, ok = txt[TXTKeyDeviceName]
	if !ok || info.DeviceName == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDeviceName)
	}

	info.IntegrityMode, ok = txt[TXTKeyIntegrityMode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyIntegrityMode)
	}
	if _, err := credential.ParseIntegrityMode(info.IntegrityMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTXTRecord, err)
	}

	info.Version, ok = txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	if _, err := version.Parse(info.Version); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTXTRecord, err)
	}

	info.DeviceID = txt[TXTKeyDeviceID]

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings, sorted
// by key.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}

// ValidateTXTSize checks that the encoded records fit in a TXT record.
func ValidateTXTSize(txt TXTRecordMap) error {
	size := 0
	for k, v := range txt {
		// One length byte per string plus "key=value".
		size += 1 + len(k) + 1 + len(v)
	}
	if size > MaxTXTRecordSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidTXTRecord, size, MaxTXTRecordSize)
	}
	return nil
}
