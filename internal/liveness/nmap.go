// Package liveness decides whether a single address answers ICMP echo
// requests by running an nmap ping scan against it.
package liveness

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/Ullaakut/nmap/v3"

	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/logging"
)

const hostStateUp = "up"

// runFunc executes one nmap invocation. Replaced in tests.
type runFunc func(ctx context.Context, opts ...nmap.Option) (*nmap.Run, []string, error)

// HostScanner probes addresses from a fixed source address.
type HostScanner struct {
	source      netip.Addr
	hostTimeout time.Duration
	binaryPath  string
	logger      *logging.Logger
	run         runFunc
}

// Option configures a HostScanner.
type Option func(*HostScanner)

// WithHostTimeout gives up on a target after d. Zero leaves nmap's default.
func WithHostTimeout(d time.Duration) Option {
	return func(s *HostScanner) { s.hostTimeout = d }
}

// WithBinaryPath uses the nmap binary at path instead of looking it up in PATH.
func WithBinaryPath(path string) Option {
	return func(s *HostScanner) { s.binaryPath = path }
}

// WithLogger sets the scanner logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *HostScanner) { s.logger = l }
}

// NewHostScanner returns a scanner that sends its probes from source.
func NewHostScanner(source string, opts ...Option) (*HostScanner, error) {
	addr, err := netip.ParseAddr(source)
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "invalid source address", err)
	}

	s := &HostScanner{
		source: addr.Unmap(),
		logger: logging.Default(),
		run:    runNmap,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("liveness")
	return s, nil
}

// Source returns the address probes are sent from.
func (s *HostScanner) Source() netip.Addr {
	return s.source
}

// Probe sends ICMP echo requests to target and returns the addresses nmap
// reports as up. An unreachable target yields an empty slice and no error.
func (s *HostScanner) Probe(ctx context.Context, target netip.Addr) ([]netip.Addr, error) {
	result, warnings, err := s.run(ctx, s.options(target)...)
	if err != nil {
		return nil, errors.ErrProbeFailed(target.String(), err)
	}
	if len(warnings) > 0 {
		s.logger.Debug("Ping scan completed with warnings",
			"target", target.String(),
			"warnings", warnings)
	}
	return upHosts(result), nil
}

// options builds the arguments of a single-target ICMP echo ping scan.
func (s *HostScanner) options(target netip.Addr) []nmap.Option {
	opts := []nmap.Option{
		nmap.WithTargets(target.String()),
		nmap.WithPingScan(),
		nmap.WithICMPEchoDiscovery(),
		nmap.WithDisabledDNSResolution(),
		nmap.WithSpoofIPAddress(s.source.String()),
	}
	if s.hostTimeout > 0 {
		opts = append(opts, nmap.WithHostTimeout(s.hostTimeout))
	}
	if s.binaryPath != "" {
		opts = append(opts, nmap.WithBinaryPath(s.binaryPath))
	}
	return opts
}

// upHosts extracts the addresses of hosts whose state is up.
func upHosts(result *nmap.Run) []netip.Addr {
	if result == nil {
		return nil
	}

	var up []netip.Addr
	for i := range result.Hosts {
		host := &result.Hosts[i]
		if host.Status.State != hostStateUp {
			continue
		}
		for _, a := range host.Addresses {
			if a.AddrType == "mac" {
				continue
			}
			if addr, err := netip.ParseAddr(a.Addr); err == nil {
				up = append(up, addr.Unmap())
				break
			}
		}
	}
	return up
}

func runNmap(ctx context.Context, opts ...nmap.Option) (*nmap.Run, []string, error) {
	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create nmap scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	var w []string
	if warnings != nil {
		w = *warnings
	}
	if err != nil {
		return result, w, fmt.Errorf("nmap ping scan failed: %w", err)
	}
	return result, w, nil
}
