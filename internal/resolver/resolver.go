// Package resolver looks up the PTR names of discovered hosts.
package resolver

import (
	"context"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/logging"
	"github.com/anstrom/hostsweep/internal/workers"
)

const (
	// DefaultTimeout bounds one PTR query.
	DefaultTimeout = 2 * time.Second

	resolvConfPath   = "/etc/resolv.conf"
	defaultDNSPort   = "53"
	maxParallelQuery = 16
	jobTypeLookup    = "ptr"
)

// Resolver sends PTR queries to a single DNS server.
type Resolver struct {
	server string
	client *dns.Client
	logger *logging.Logger
}

// New creates a resolver for server ("host" or "host:port"). An empty server
// uses the first nameserver of /etc/resolv.conf.
func New(server string, timeout time.Duration, logger *logging.Logger) (*Resolver, error) {
	if server == "" {
		cfg, err := dns.ClientConfigFromFile(resolvConfPath)
		if err != nil {
			return nil, errors.WrapConfigError(errors.CodeConfiguration, "cannot read system resolver configuration", err)
		}
		if len(cfg.Servers) == 0 {
			return nil, errors.ErrConfigMissing("resolver.server")
		}
		server = net.JoinHostPort(cfg.Servers[0], cfg.Port)
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, defaultDNSPort)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Resolver{
		server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
		logger: logger.WithComponent("resolver"),
	}, nil
}

// Server returns the host:port queries are sent to.
func (r *Resolver) Server() string {
	return r.server
}

// LookupAddr returns the PTR names of addr without the trailing dot. A name
// error yields no names and no error.
func (r *Resolver) LookupAddr(ctx context.Context, addr netip.Addr) ([]string, error) {
	name, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return nil, errors.ErrInvalidTarget(addr.String())
	}

	msg := new(dns.Msg)
	msg.SetQuestion(name, dns.TypePTR)

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, errors.WrapScanErrorWithTarget(errors.CodeTimeout, "PTR lookup failed", addr.String(), err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, nil
	}

	var names []string
	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			names = append(names, strings.TrimSuffix(ptr.Ptr, "."))
		}
	}
	return names, nil
}

// Annotate resolves addrs concurrently and returns the first name found for
// each address that has one. Failed lookups are logged and skipped.
func (r *Resolver) Annotate(ctx context.Context, addrs []netip.Addr) map[netip.Addr]string {
	jobs := make([]workers.Job[[]string], len(addrs))
	for i, addr := range addrs {
		jobs[i] = workers.Job[[]string]{
			ID:   addr.String(),
			Type: jobTypeLookup,
			Execute: func(ctx context.Context) ([]string, error) {
				return r.LookupAddr(ctx, addr)
			},
		}
	}

	results := workers.Run(ctx, workers.Config{Size: maxParallelQuery, Logger: r.logger}, jobs)

	names := make(map[netip.Addr]string, len(addrs))
	for i, res := range results {
		if res.Error != nil {
			r.logger.Debug("Reverse lookup failed", "address", res.JobID, "error", res.Error)
			continue
		}
		if len(res.Value) > 0 {
			names[addrs[i]] = res.Value[0]
		}
	}
	return names
}
