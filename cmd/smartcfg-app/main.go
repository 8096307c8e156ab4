// Command smartcfg-app sends Wi-Fi credentials to a smartcfg device.
//
// It plays the companion app: it finds the device over mDNS, encodes the
// credentials in the integrity mode the device advertises, writes them to
// the LAN intake and optionally waits for the confirmation on the broker.
//
// Usage:
//
//	smartcfg-app -network <name> -secret <secret> [flags]
//
// Flags:
//
//	-device string     Device id to look for (default: first device found)
//	-addr string       Intake address; skips discovery
//	-integrity string  Override the advertised integrity mode: trailer, legacy
//	-key string        Obfuscation key as hex (default "010203")
//	-timeout duration  Discovery and send timeout (default 10s)
//	-retries int       Send attempts before giving up (default 3)
//	-broker string     Wait for the confirmation on this MQTT broker
//	-topic string      Confirmation topic (default "smartconfig")
//
// Examples:
//
//	smartcfg-app -network homenet -secret secret123
//	smartcfg-app -addr 192.168.4.1:5050 -integrity legacy -network homenet -secret pw
//	smartcfg-app -device 3f2a9c1b -network homenet -secret pw -broker localhost
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/smartcfg/smartcfg-go/pkg/codec"
	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/discovery"
)

// Config holds the command line options.
type Config struct {
	DeviceID  string
	Addr      string
	Network   string
	Secret    string
	Integrity string
	Key       string
	Timeout   time.Duration
	Retries   int
	Broker    string
	Port      int
	Topic     string
	Verbose   bool
}

var config Config

func init() {
	flag.StringVar(&config.DeviceID, "device", "", "Device id to look for (default: first device found)")
	flag.StringVar(&config.Addr, "addr", "", "Intake address; skips discovery")
	flag.StringVar(&config.Network, "network", "", "Network name")
	flag.StringVar(&config.Secret, "secret", "", "Network secret")
	flag.StringVar(&config.Integrity, "integrity", "", "Override the advertised integrity mode: trailer, legacy")
	flag.StringVar(&config.Key, "key", "010203", "Obfuscation key as hex")
	flag.DurationVar(&config.Timeout, "timeout", 10*time.Second, "Discovery and send timeout")
	flag.IntVar(&config.Retries, "retries", 3, "Send attempts before giving up, 0 retries until cancelled")
	flag.StringVar(&config.Broker, "broker", "", "Wait for the confirmation on this MQTT broker")
	flag.IntVar(&config.Port, "port", 1883, "MQTT broker port")
	flag.StringVar(&config.Topic, "topic", "smartconfig", "Confirmation topic")
	flag.BoolVar(&config.Verbose, "v", false, "Verbose logging")
}

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if config.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(context.Background(), config, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if cfg.Network == "" {
		return fmt.Errorf("-network is required")
	}

	key, err := hex.DecodeString(cfg.Key)
	if err != nil {
		return fmt.Errorf("invalid -key: %w", err)
	}
	obf, err := codec.NewObfuscator(key)
	if err != nil {
		return err
	}

	addr := cfg.Addr
	var svc *discovery.IntakeService
	if addr == "" {
		svc, err = discover(ctx, cfg, logger)
		if err != nil {
			return err
		}
		addr, err = targetAddr(svc)
		if err != nil {
			return err
		}
	}

	mode, err := selectMode(svc, cfg.Integrity)
	if err != nil {
		return err
	}
	logger.Info("sending credentials",
		slog.String("addr", addr),
		slog.String("network", cfg.Network),
		slog.String("integrity", mode.String()))

	var watch *confirmationWatch
	if cfg.Broker != "" {
		watch, err = watchConfirmation(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer watch.Close()
	}

	payload := credential.NewIntake(obf, mode).Encode(credential.Credential{Name: cfg.Network, Secret: cfg.Secret})
	if err := send(ctx, addr, payload, cfg.Timeout, cfg.Retries, logger); err != nil {
		return err
	}
	fmt.Printf("Sent %d bytes to %s\n", len(payload), addr)

	if watch == nil {
		return nil
	}

	// A join may need the full join budget plus broker retries.
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	ip, err := watch.Wait(waitCtx)
	if err != nil {
		return fmt.Errorf("no confirmation: %w", err)
	}
	fmt.Printf("Device joined %s with address %s\n", cfg.Network, ip)
	return nil
}

func discover(ctx context.Context, cfg Config, logger *slog.Logger) (*discovery.IntakeService, error) {
	browser, err := discovery.NewMDNSBrowser(discovery.BrowserConfig{BrowseTimeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	defer browser.Stop()

	if cfg.DeviceID != "" {
		logger.Debug("looking for device", slog.String("id", cfg.DeviceID))
		return browser.FindByDeviceID(ctx, cfg.DeviceID)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	services, err := browser.BrowseIntake(ctx)
	if err != nil {
		return nil, err
	}
	for svc := range services {
		logger.Debug("found device",
			slog.String("instance", svc.InstanceName),
			slog.String("id", svc.DeviceID),
			slog.String("version", svc.Version))
		return svc, nil
	}
	return nil, discovery.ErrNotFound
}
