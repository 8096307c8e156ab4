package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/connection"
	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/discovery"
	"github.com/smartcfg/smartcfg-go/pkg/transport"
	"github.com/smartcfg/smartcfg-go/pkg/uplink"
	"github.com/smartcfg/smartcfg-go/pkg/version"
)

// selectMode picks the integrity mode: the override when given, otherwise
// what the device advertises. Devices without a checksum trailer advertise
// wire 1.0.
func selectMode(svc *discovery.IntakeService, override string) (credential.IntegrityMode, error) {
	if override != "" {
		return credential.ParseIntegrityMode(override)
	}
	if svc == nil {
		return credential.IntegrityTrailer, nil
	}

	if svc.Version != "" {
		v, err := version.Parse(svc.Version)
		if err != nil {
			return 0, err
		}
		if !v.Compatible(version.MustParse(version.Current)) {
			return 0, fmt.Errorf("device speaks wire %s, want %s", v, version.Current)
		}
		if !v.HasTrailer() {
			return credential.IntegrityLegacy, nil
		}
	}
	return credential.ParseIntegrityMode(svc.IntegrityMode)
}

// targetAddr returns the dial address of a discovered service, preferring
// IPv4.
func targetAddr(svc *discovery.IntakeService) (string, error) {
	port := strconv.Itoa(int(svc.Port))

	var fallback string
	for _, a := range svc.Addresses {
		ip, err := netip.ParseAddr(a)
		if err != nil {
			continue
		}
		if ip.Is4() {
			return net.JoinHostPort(ip.String(), port), nil
		}
		if fallback == "" {
			fallback = net.JoinHostPort(ip.String(), port)
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	if svc.Host != "" {
		return net.JoinHostPort(svc.Host, port), nil
	}
	return "", fmt.Errorf("device %s has no address", svc.InstanceName)
}

// send writes payload as one frame and closes the connection. Failed
// attempts are redialed with exponential backoff, up to attempts in total.
func send(ctx context.Context, addr string, payload []byte, timeout time.Duration, attempts int, logger *slog.Logger) error {
	client := transport.NewClient(transport.ClientConfig{ConnectTimeout: timeout})

	session := connection.NewManager(func(ctx context.Context, _ int) error {
		conn, err := client.Connect(ctx, addr)
		if err != nil {
			return err
		}
		defer conn.Close()
		return conn.Send(payload)
	}, nil)
	session.SetMaxAttempts(attempts)
	session.OnRetry(func(attempt int, delay time.Duration, err error) {
		logger.Warn("send failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", delay),
			slog.Any("error", err))
	})
	return session.Connect(ctx)
}

// confirmationWatch waits for the device's confirmation on the broker.
type confirmationWatch struct {
	broker *uplink.MQTTBroker
	once   sync.Once
	addrs  chan netip.Addr
}

func watchConfirmation(ctx context.Context, cfg Config, logger *slog.Logger) (*confirmationWatch, error) {
	w := &confirmationWatch{
		broker: uplink.NewMQTTBroker(uplink.MQTTOptions{Logger: logger}),
		addrs:  make(chan netip.Addr, 1),
	}

	opts := uplink.ConnectOptions{
		Server:   cfg.Broker,
		Port:     cfg.Port,
		ClientID: uplink.NewClientID("SmartConfigApp-"),
	}
	if err := w.broker.Connect(ctx, opts); err != nil {
		return nil, fmt.Errorf("%w: %w", uplink.ErrBrokerUnavailable, err)
	}
	if err := w.broker.SubscribeFunc(cfg.Topic, w.handle(logger)); err != nil {
		w.broker.Disconnect()
		return nil, err
	}
	return w, nil
}

func (w *confirmationWatch) handle(logger *slog.Logger) uplink.MessageHandler {
	return func(topic string, payload []byte) {
		ip, err := uplink.ParseConfirmation(payload)
		if err != nil {
			logger.Debug("ignoring message", slog.String("topic", topic), slog.Any("error", err))
			return
		}
		w.once.Do(func() { w.addrs <- ip })
	}
}

// Wait blocks until a confirmation arrives.
func (w *confirmationWatch) Wait(ctx context.Context) (netip.Addr, error) {
	select {
	case ip := <-w.addrs:
		return ip, nil
	case <-ctx.Done():
		return netip.Addr{}, ctx.Err()
	}
}

func (w *confirmationWatch) Close() {
	w.broker.Disconnect()
}
