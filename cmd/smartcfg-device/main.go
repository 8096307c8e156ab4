// Command smartcfg-device runs the provisioning daemon.
//
// The daemon accepts Wi-Fi credentials from a companion app, joins the
// network through a simulated station, reports success to an MQTT broker and
// closes the broker session after five idle minutes.
//
// Usage:
//
//	smartcfg-device [flags]
//
// Flags:
//
//	-config string      Configuration file path
//	-listen string      LAN intake address (overrides intake.listen)
//	-broker string      MQTT broker host (overrides uplink.server)
//	-log-level string   Log level: debug, info, warn, error
//	-metrics string     Prometheus listen address (overrides metrics.listen)
//	-interactive        Use the in-memory link driven from a console
//	-print-config       Print the effective configuration and exit
//
// Examples:
//
//	# Start with defaults, LAN intake on :5050, broker on localhost
//	smartcfg-device
//
//	# Drive the link by hand
//	smartcfg-device -interactive -log-level debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartcfg/smartcfg-go/cmd/smartcfg-device/interactive"
	"github.com/smartcfg/smartcfg-go/pkg/codec"
	"github.com/smartcfg/smartcfg-go/pkg/config"
	"github.com/smartcfg/smartcfg-go/pkg/credential"
	"github.com/smartcfg/smartcfg-go/pkg/discovery"
	"github.com/smartcfg/smartcfg-go/pkg/join"
	"github.com/smartcfg/smartcfg-go/pkg/log"
	"github.com/smartcfg/smartcfg-go/pkg/metrics"
	"github.com/smartcfg/smartcfg-go/pkg/provision"
	"github.com/smartcfg/smartcfg-go/pkg/station"
	"github.com/smartcfg/smartcfg-go/pkg/transport"
	"github.com/smartcfg/smartcfg-go/pkg/uplink"
	"github.com/smartcfg/smartcfg-go/pkg/version"
)

// Flags holds the command line overrides.
type Flags struct {
	ConfigFile  string
	Listen      string
	Broker      string
	LogLevel    string
	Metrics     string
	Interactive bool
	PrintConfig bool
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.Listen, "listen", "", "LAN intake address (overrides intake.listen)")
	flag.StringVar(&flags.Broker, "broker", "", "MQTT broker host (overrides uplink.server)")
	flag.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.Metrics, "metrics", "", "Prometheus listen address (overrides metrics.listen)")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Use the in-memory link driven from a console")
	flag.BoolVar(&flags.PrintConfig, "print-config", false, "Print the effective configuration and exit")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if flags.PrintConfig {
		out, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode configuration: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	if err := run(cfg, flags.Interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(f Flags) (*config.Config, error) {
	cfg := config.Default()
	if f.ConfigFile != "" {
		loaded, err := config.Load(f.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.Listen != "" {
		cfg.Intake.Listen = f.Listen
	}
	if f.Broker != "" {
		cfg.Uplink.Server = f.Broker
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.Metrics != "" {
		cfg.Metrics.Listen = f.Metrics
	}
	if cfg.Device.ID == "" {
		cfg.Device.ID = uuid.NewString()[:8]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config, useConsole bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obf, err := codec.NewObfuscator(cfg.KeyBytes())
	if err != nil {
		return err
	}
	mode, err := credential.ParseIntegrityMode(cfg.Intake.Integrity)
	if err != nil {
		return err
	}
	intake := credential.NewIntake(obf, mode)

	// The console owns stdout while it runs, so it is created before logging.
	var (
		console *interactive.Console
		out     io.Writer = os.Stderr
		local   *transport.Characteristic
	)
	if useConsole {
		local = transport.NewCharacteristic(transport.CharacteristicConfig{})
		console, err = interactive.New(interactive.Options{Link: local, Intake: intake})
		if err != nil {
			return err
		}
		defer console.Close()
		out = console.Stdout()
	}

	logger, logCloser, err := newLogger(cfg.Log, out)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger = logger.With(slog.String("device", cfg.Device.ID))

	trace, traceCloser, err := newTrace(cfg.Log, logger)
	if err != nil {
		return err
	}
	defer traceCloser.Close()

	if mode == credential.IntegrityLegacy {
		logger.Warn("legacy integrity mode: payload checksums are not verified against the sender")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Listen != "" {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path, reg, logger)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			_ = srv.Stop(stopCtx)
		}()
	}

	addr, err := netip.ParseAddr(cfg.Station.Addr)
	if err != nil {
		return fmt.Errorf("station address: %w", err)
	}
	sim := station.NewSimulator(station.SimulatorConfig{
		JoinDelay: cfg.Station.JoinDelay,
		Networks:  cfg.Station.Networks,
		Addr:      addr,
		Logger:    logger,
	})
	defer sim.Close()

	reporter := newReporter(cfg, logger, trace, m)
	defer reporter.Close()

	var link transport.Link
	if local != nil {
		link = local
		defer local.Close()
	} else {
		srv, err := newIntakeServer(cfg, mode, logger, trace)
		if err != nil {
			return err
		}
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop()
		link = srv
	}

	ctrl := provision.New(provision.Config{
		IdleTimeout:   cfg.Provision.IdleTimeout,
		CheckInterval: cfg.Provision.CheckInterval,
		Join: join.Config{
			Timeout:      cfg.Join.Timeout,
			PollInterval: cfg.Join.PollInterval,
			MaxReprompts: cfg.Join.MaxReprompts,
		},
		DeviceID: cfg.Device.ID,
		Logger:   logger,
		Trace:    trace,
		Metrics:  m,
	}, link, sim, intake, reporter)
	ctrl.OnStateChange(func(old, new provision.State) {
		logger.Info("provisioning state", slog.String("from", old.String()), slog.String("to", new.String()))
	})

	printBanner(logger, cfg, mode)

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	if console != nil {
		console.Bind(ctrl, sim)
		go console.Run(ctx, cancel)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
	case <-ctx.Done():
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newReporter(cfg *config.Config, logger *slog.Logger, trace log.Logger, m *metrics.Metrics) *uplink.Reporter {
	format, _ := uplink.ParseFormat(cfg.Uplink.Format)

	broker := uplink.NewMQTTBroker(uplink.MQTTOptions{
		Username: cfg.Uplink.Username,
		Password: cfg.Uplink.Password,
		QoS:      byte(cfg.Uplink.QoS),
		Logger:   logger,
	})

	reporter := uplink.NewReporter(uplink.Config{
		Server:         cfg.Uplink.Server,
		Port:           cfg.Uplink.Port,
		Topic:          cfg.Uplink.Topic,
		ClientIDPrefix: cfg.Uplink.ClientIDPrefix,
		RetryInterval:  cfg.Uplink.RetryInterval,
		MaxAttempts:    cfg.Uplink.MaxAttempts,
		Format:         format,
		DeviceID:       cfg.Device.ID,
		Logger:         logger,
		Trace:          trace,
	}, broker)
	reporter.OnConnectAttempt(func(_ int, err error) {
		m.ObserveConnectAttempt(err)
	})
	reporter.OnSessionEnd(func(lost bool) {
		if lost {
			m.ObserveSessionLost()
		}
	})
	return reporter
}

func newIntakeServer(cfg *config.Config, mode credential.IntegrityMode, logger *slog.Logger, trace log.Logger) (*transport.Server, error) {
	scfg := transport.ServerConfig{
		Address:     cfg.Intake.Listen,
		IdleTimeout: cfg.Intake.ClientIdleTimeout,
		Intake: discovery.IntakeInfo{
			DeviceName:    cfg.Device.Name,
			DeviceID:      cfg.Device.ID,
			IntegrityMode: mode.String(),
			Version:       version.ForTrailer(mode == credential.IntegrityTrailer),
		},
		Logger: logger,
		Trace:  trace,
	}

	if cfg.Intake.Advertise {
		adv, err := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
			Interface: cfg.Intake.Interface,
			TTL:       discovery.DefaultTTL,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		scfg.Advertiser = adv
	}

	return transport.NewServer(scfg)
}

func printBanner(logger *slog.Logger, cfg *config.Config, mode credential.IntegrityMode) {
	logger.Info("smartcfg device",
		slog.String("name", cfg.Device.Name),
		slog.String("build", version.Build),
		slog.String("wire", version.ForTrailer(mode == credential.IntegrityTrailer)),
		slog.String("integrity", mode.String()),
		slog.String("service_uuid", transport.ServiceUUID),
		slog.String("characteristic_uuid", transport.CharacteristicUUID),
		slog.String("broker", fmt.Sprintf("%s:%d", cfg.Uplink.Server, cfg.Uplink.Port)),
		slog.String("topic", cfg.Uplink.Topic))
}
