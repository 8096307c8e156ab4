package discovery

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestServiceEntryToIntakeService(t *testing.T) {
	tests := []struct {
		name    string
		entry   ServiceEntry
		want    *IntakeService
		wantErr error
	}{
		{
			name: "ValidWithAllFields",
			entry: ServiceEntry{
				Instance: "SmartConfig-ab12",
				Service:  ServiceTypeIntake,
				Domain:   Domain,
				Host:     "smartconfig.local",
				Port:     5050,
				Text:     []string{"DN=SmartConfig", "ID=ab12", "IM=trailer", "VER=1.1"},
				Addrs:    []string{"192.168.1.50", "fe80::1"},
			},
			want: &IntakeService{
				InstanceName:  "SmartConfig-ab12",
				Host:          "smartconfig.local",
				Port:          5050,
				Addresses:     []string{"192.168.1.50", "fe80::1"},
				DeviceName:    "SmartConfig",
				DeviceID:      "ab12",
				IntegrityMode: "trailer",
				Version:       "1.1",
			},
		},
		{
			name: "MissingVersion",
			entry: ServiceEntry{
				Instance: "SmartConfig",
				Text:     []string{"DN=SmartConfig", "IM=legacy"},
			},
			wantErr: ErrMissingRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.entry.ToIntakeService()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ToIntakeService() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToIntakeService() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToIntakeService() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeAndRemoveAddresses(t *testing.T) {
	addrs := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "fe80::1"})
	if !reflect.DeepEqual(addrs, []string{"10.0.0.1", "fe80::1"}) {
		t.Errorf("mergeAddresses() = %v", addrs)
	}

	addrs = removeAddresses(addrs, []string{"10.0.0.1"})
	if !reflect.DeepEqual(addrs, []string{"fe80::1"}) {
		t.Errorf("removeAddresses() = %v", addrs)
	}
}

func TestDefaultConfigs(t *testing.T) {
	if got := DefaultBrowserConfig().BrowseTimeout; got != BrowseTimeout {
		t.Errorf("BrowseTimeout = %v, want %v", got, BrowseTimeout)
	}
	if got := DefaultAdvertiserConfig().TTL; got != DefaultTTL {
		t.Errorf("TTL = %v, want %v", got, DefaultTTL)
	}
}

func TestBrowserStoppedRefusesBrowse(t *testing.T) {
	b, err := NewMDNSBrowser(DefaultBrowserConfig())
	if err != nil {
		t.Fatalf("NewMDNSBrowser() error = %v", err)
	}
	b.Stop()

	if _, err := b.BrowseIntake(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("BrowseIntake() after Stop error = %v, want %v", err, context.Canceled)
	}
}

func TestAdvertiserStopWithoutRegistration(t *testing.T) {
	a, err := NewMDNSAdvertiser(DefaultAdvertiserConfig())
	if err != nil {
		t.Fatalf("NewMDNSAdvertiser() error = %v", err)
	}
	if err := a.StopIntake(); err != nil {
		t.Errorf("StopIntake() error = %v", err)
	}
	if a.Advertising() {
		t.Error("Advertising() = true before registration")
	}
}

func TestAdvertiserRejectsUnknownInterface(t *testing.T) {
	cfg := DefaultAdvertiserConfig()
	cfg.Interface = "does-not-exist0"
	if _, err := NewMDNSAdvertiser(cfg); err == nil {
		t.Error("NewMDNSAdvertiser() with unknown interface should fail")
	}
}
