package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// Advertiser announces a timer server via mDNS.
type Advertiser struct {
	config Config
	logger *slog.Logger

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates an advertiser. A nil logger means slog.Default().
func NewAdvertiser(config Config, logger *slog.Logger) *Advertiser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advertiser{
		config: config,
		logger: logger.With(slog.String("component", "discovery")),
	}
}

// Advertise starts advertising info, replacing any previous advertisement.
func (a *Advertiser) Advertise(info *ServerInfo) error {
	if err := ValidateInstanceName(info.Name); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		info.Name,
		ServiceType,
		Domain,
		port,
		TXTRecordsToStrings(EncodeServerTXT(info)),
		interfaces(a.config.Interface),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register timer service: %w", err)
	}

	a.server = server
	a.logger.Info("advertising", slog.String("name", info.Name), slog.Int("port", port))
	return nil
}

// Update replaces the TXT records of the running advertisement.
func (a *Advertiser) Update(info *ServerInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return fmt.Errorf("update %q: not advertising", info.Name)
	}
	a.server.SetText(TXTRecordsToStrings(EncodeServerTXT(info)))
	return nil
}

// Stop stops advertising. It is safe to call more than once.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
		a.logger.Info("advertising stopped")
	}
}

// Browse collects the timer servers that answer before ctx ends or the
// browse timeout elapses. Entries seen on several interfaces are merged.
func Browse(ctx context.Context, config Config) ([]*Server, error) {
	if _, ok := ctx.Deadline(); !ok && config.BrowseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.BrowseTimeout)
		defer cancel()
	}

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if ifaces := interfaces(config.Interface); ifaces != nil {
		opts = append(opts, zeroconf.SelectIfaces(ifaces))
	}

	errc := make(chan error, 1)
	go func() {
		errc <- zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	var (
		order   []string
		servers = make(map[string]*Server)
	)
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			srv := entryToServer(entry)
			if srv == nil {
				continue
			}
			if existing, found := servers[srv.Name]; found {
				existing.Addresses = mergeAddresses(existing.Addresses, srv.Addresses)
				continue
			}
			servers[srv.Name] = srv
			order = append(order, srv.Name)

		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			if existing, found := servers[entry.Instance]; found {
				existing.Addresses = removeAddresses(existing.Addresses, entry)
			}

		case err := <-errc:
			if err != nil && ctx.Err() == nil {
				return nil, fmt.Errorf("browse %s: %w", ServiceType, err)
			}
			errc = nil

		case <-ctx.Done():
			return collect(order, servers), nil
		}
	}
}

func collect(order []string, servers map[string]*Server) []*Server {
	out := make([]*Server, 0, len(order))
	for _, name := range order {
		if srv := servers[name]; srv != nil && (len(srv.Addresses) > 0 || srv.Host != "") {
			out = append(out, srv)
		}
	}
	return out
}

// interfaces returns the network interfaces to use, nil for all.
func interfaces(name string) []net.Interface {
	if name == "" {
		return nil
	}
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// entryToServer converts a zeroconf entry to a Server. Entries with
// unusable TXT records are skipped.
func entryToServer(entry *zeroconf.ServiceEntry) *Server {
	info, err := DecodeServerTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}
	info.Name = entry.Instance
	info.Port = uint16(entry.Port)

	return &Server{
		ServerInfo: *info,
		Host:       entry.HostName,
		Addresses:  entryAddresses(entry),
	}
}

func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
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

// removeAddresses removes the addresses of a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, addr := range entryAddresses(entry) {
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
