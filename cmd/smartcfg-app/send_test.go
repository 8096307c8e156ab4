package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/codec"
	"github.com/smartcfg/smartcfg-go/pkg/connection"
	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/discovery"
	"github.com/smartcfg/smartcfg-go/pkg/transport"
	"github.com/smartcfg/smartcfg-go/pkg/uplink"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name     string
		svc      *discovery.IntakeService
		override string
		want     credential.IntegrityMode
		wantErr  bool
	}{
		{"no service defaults to trailer", nil, "", credential.IntegrityTrailer, false},
		{"override wins", &discovery.IntakeService{IntegrityMode: "trailer", Version: "1.1"}, "legacy", credential.IntegrityLegacy, false},
		{"advertised trailer", &discovery.IntakeService{IntegrityMode: "trailer", Version: "1.1"}, "", credential.IntegrityTrailer, false},
		{"advertised legacy", &discovery.IntakeService{IntegrityMode: "legacy", Version: "1.0"}, "", credential.IntegrityLegacy, false},
		{"wire 1.0 implies legacy", &discovery.IntakeService{IntegrityMode: "trailer", Version: "1.0"}, "", credential.IntegrityLegacy, false},
		{"incompatible major", &discovery.IntakeService{IntegrityMode: "trailer", Version: "2.0"}, "", 0, true},
		{"bad version", &discovery.IntakeService{Version: "x"}, "", 0, true},
		{"bad override", nil, "rot13", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectMode(tt.svc, tt.override)
			if (err != nil) != tt.wantErr {
				t.Fatalf("selectMode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("selectMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetAddr(t *testing.T) {
	tests := []struct {
		name    string
		svc     *discovery.IntakeService
		want    string
		wantErr bool
	}{
		{
			name: "prefers IPv4",
			svc:  &discovery.IntakeService{Port: 5050, Addresses: []string{"fe80::1", "192.168.4.1"}},
			want: "192.168.4.1:5050",
		},
		{
			name: "IPv6 fallback",
			svc:  &discovery.IntakeService{Port: 5050, Addresses: []string{"fe80::1"}},
			want: "[fe80::1]:5050",
		},
		{
			name: "host fallback",
			svc:  &discovery.IntakeService{Port: 5050, Host: "smartconfig.local"},
			want: "smartconfig.local:5050",
		},
		{
			name:    "no address",
			svc:     &discovery.IntakeService{InstanceName: "SmartConfig-1", Port: 5050},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := targetAddr(tt.svc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("targetAddr() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("targetAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunSendsFrameToIntakeServer(t *testing.T) {
	srv, err := transport.NewServer(transport.ServerConfig{Address: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer srv.Stop()

	cfg := Config{
		Addr:      srv.Addr().String(),
		Network:   "homenet",
		Secret:    "secret123",
		Integrity: "trailer",
		Key:       "010203",
		Timeout:   2 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), cfg, logger); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-srv.Events():
			if ev.Kind != transport.EventWrite {
				continue
			}
			want := codec.NewDefaultObfuscator().Seal([]byte("homenet,secret123"))
			if got := srv.LatestPayload(); !bytes.Equal(got, want) {
				t.Errorf("payload = %x, want %x", got, want)
			}
			return
		case <-deadline:
			t.Fatal("no write event received")
		}
	}
}

// freeAddr returns a loopback address nothing listens on.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestSendRetriesUntilIntakeIsUp(t *testing.T) {
	addr := freeAddr(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	started := make(chan *transport.Server, 1)
	go func() {
		time.Sleep(200 * time.Millisecond)
		srv, err := transport.NewServer(transport.ServerConfig{Address: addr})
		if err != nil {
			t.Errorf("NewServer() error = %v", err)
			started <- nil
			return
		}
		if err := srv.Start(context.Background()); err != nil {
			t.Errorf("Start() error = %v", err)
			started <- nil
			return
		}
		started <- srv
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	payload := []byte("hnmfnfu-rfdrfu")
	if err := send(ctx, addr, payload, time.Second, 5, logger); err != nil {
		t.Fatalf("send() error = %v", err)
	}

	srv := <-started
	if srv == nil {
		return
	}
	defer srv.Stop()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-srv.Events():
			if ev.Kind != transport.EventWrite {
				continue
			}
			if !bytes.Equal(ev.Payload, payload) {
				t.Errorf("payload = %q, want %q", ev.Payload, payload)
			}
			return
		case <-deadline:
			t.Fatal("no write event received")
		}
	}
}

func TestSendGivesUpAfterAttempts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := send(context.Background(), freeAddr(t), []byte("x"), time.Second, 1, logger)
	if !errors.Is(err, connection.ErrAttemptsExhausted) {
		t.Errorf("send() error = %v, want %v", err, connection.ErrAttemptsExhausted)
	}
}

func TestRunRequiresNetwork(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), Config{Addr: "127.0.0.1:1"}, logger); err == nil {
		t.Error("run() should fail without -network")
	}
}

func TestConfirmationHandler(t *testing.T) {
	w := &confirmationWatch{addrs: make(chan netip.Addr, 1)}
	handle := w.handle(slog.New(slog.NewTextHandler(io.Discard, nil)))

	handle("smartconfig", []byte("hello"))
	handle("smartconfig", []byte(uplink.ConfirmationPrefix+"192.168.1.50"))
	handle("smartconfig", []byte(uplink.ConfirmationPrefix+"192.168.1.51"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ip, err := w.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if ip != netip.MustParseAddr("192.168.1.50") {
		t.Errorf("Wait() = %v, want 192.168.1.50", ip)
	}
}
