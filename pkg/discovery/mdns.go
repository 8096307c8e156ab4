package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// MDNSAdvertiser implements the Advertiser interface using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) (*MDNSAdvertiser, error) {
	if config.Interface != "" {
		if _, err := net.InterfaceByName(config.Interface); err != nil {
			return nil, fmt.Errorf("interface %q: %w", config.Interface, err)
		}
	}
	return &MDNSAdvertiser{config: config}, nil
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// AdvertiseIntake starts advertising the intake service.
func (a *MDNSAdvertiser) AdvertiseIntake(ctx context.Context, info *IntakeInfo) error {
	instanceName := info.InstanceName()
	if err := ValidateInstanceName(instanceName); err != nil {
		return err
	}

	txtRecords := EncodeIntakeTXT(info)
	if err := ValidateTXTSize(txtRecords); err != nil {
		return err
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceTypeIntake,
		Domain,
		port,
		TXTRecordsToStrings(txtRecords),
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register intake service: %w", err)
	}

	a.server = server
	if a.config.Logger != nil {
		a.config.Logger.Info("intake service registered",
			"instance", instanceName, "service", ServiceTypeIntake, "port", port)
	}
	return nil
}

// StopIntake stops advertising the intake service.
func (a *MDNSAdvertiser) StopIntake() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
		if a.config.Logger != nil {
			a.config.Logger.Info("intake service withdrawn")
		}
	}
	return nil
}

// Advertising reports whether the intake service is registered.
func (a *MDNSAdvertiser) Advertising() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	stopped bool
	cancels []context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{
		config: config,
	}, nil
}

// BrowseIntake searches for devices accepting credentials.
// Services are aggregated by instance name - addresses from multiple interfaces
// are combined into a single entry. Each service is emitted once.
func (b *MDNSBrowser) BrowseIntake(ctx context.Context) (<-chan *IntakeService, error) {
	ctx, cancel := context.WithCancel(ctx)
	if !b.track(cancel) {
		cancel()
		return nil, context.Canceled
	}

	out := make(chan *IntakeService)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(out)

		services := make(map[string]*IntakeService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc, err := fromZeroconf(entry).ToIntakeService()
				if err != nil {
					continue
				}

				if existing, found := services[svc.InstanceName]; found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}
				services[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, fromZeroconf(entry).Addrs)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeIntake, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindByDeviceID searches for a specific device. An empty id matches the
// first device found.
func (b *MDNSBrowser) FindByDeviceID(ctx context.Context, deviceID string) (*IntakeService, error) {
	timeout := b.config.BrowseTimeout
	if timeout <= 0 {
		timeout = BrowseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := b.BrowseIntake(ctx)
	if err != nil {
		return nil, err
	}

	for svc := range results {
		if deviceID == "" || svc.DeviceID == deviceID {
			return svc, nil
		}
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, ErrBrowseTimeout
	}
	return nil, ErrNotFound
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

func (b *MDNSBrowser) track(cancel context.CancelFunc) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return false
	}
	b.cancels = append(b.cancels, cancel)
	return true
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// fromZeroconf converts a zeroconf entry to a ServiceEntry.
func fromZeroconf(entry *zeroconf.ServiceEntry) *ServiceEntry {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	return &ServiceEntry{
		Instance: entry.Instance,
		Service:  ServiceTypeIntake,
		Domain:   Domain,
		Host:     entry.HostName,
		Port:     uint16(entry.Port),
		Text:     entry.Text,
		Addrs:    addrs,
	}
}

// mergeAddresses adds addresses not yet present.
func mergeAddresses(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range added {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses drops the given addresses from the list.
func removeAddresses(addresses, gone []string) []string {
	toRemove := make(map[string]bool, len(gone))
	for _, addr := range gone {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSAdvertiser implements Advertiser interface.
var _ Advertiser = (*MDNSAdvertiser)(nil)

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
