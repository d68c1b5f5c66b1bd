package scanning

import (
	"context"
	"net"
	"net/netip"
	"slices"
	"time"

	"github.com/anstrom/hostsweep/internal/logging"
	"github.com/anstrom/hostsweep/internal/metrics"
	"github.com/anstrom/hostsweep/internal/workers"
)

const jobTypePort = "port"

// Engine probes TCP ports with plain connect attempts.
type Engine struct {
	dialer  Dialer
	config  EngineConfig
	logger  *logging.Logger
	metrics metrics.Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithDialer replaces the default *net.Dialer.
func WithDialer(d Dialer) Option {
	return func(e *Engine) { e.dialer = d }
}

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// NewEngine validates cfg and returns an Engine.
func NewEngine(cfg EngineConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	e := &Engine{
		dialer:  &net.Dialer{},
		config:  cfg,
		logger:  logging.Default(),
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("portscan")
	e.metrics = metrics.OrNop(e.metrics)
	return e, nil
}

// ScanCatalog probes every catalog port on target.
func (e *Engine) ScanCatalog(ctx context.Context, target netip.Addr) PortResultMap {
	return e.scanPorts(ctx, ModeCatalog, target, Catalog())
}

// ScanRange probes every port in [start, end] on target. An inverted range
// probes nothing and returns an empty map.
func (e *Engine) ScanRange(ctx context.Context, target netip.Addr, start, end uint16) PortResultMap {
	if start > end {
		return PortResultMap{}
	}
	ports := make([]uint16, 0, int(end)-int(start)+1)
	for p := uint32(start); p <= uint32(end); p++ {
		ports = append(ports, uint16(p))
	}
	return e.scanPorts(ctx, ModeRange, target, ports)
}

// scanPorts runs one connect attempt per port and waits for all of them.
func (e *Engine) scanPorts(ctx context.Context, mode string, target netip.Addr, ports []uint16) PortResultMap {
	start := time.Now()

	jobs := make([]workers.Job[bool], len(ports))
	for i, port := range ports {
		addr := netip.AddrPortFrom(target, port)
		jobs[i] = workers.Job[bool]{
			ID:   addr.String(),
			Type: jobTypePort,
			Execute: func(ctx context.Context) (bool, error) {
				return e.probe(ctx, addr), nil
			},
		}
	}

	results := workers.Run(ctx, workers.Config{
		Size:    e.config.MaxConcurrentConnects,
		Logger:  e.logger.WithTarget(target.String()),
		Metrics: e.metrics,
	}, jobs)

	// A failed unit counts as closed.
	var open []uint16
	for i, r := range results {
		if r.Error == nil && r.Value {
			open = append(open, ports[i])
		}
	}

	e.metrics.ObservePortScan(mode, len(open), len(ports)-len(open), time.Since(start))
	e.logger.InfoScan("Port scan complete", target.String(),
		"mode", mode,
		"probed", len(ports),
		"open", len(open),
		"duration", time.Since(start))

	result := PortResultMap{}
	result.Set(target, open)
	return result
}

// probe reports whether a TCP connection to addr could be established.
func (e *Engine) probe(ctx context.Context, addr netip.AddrPort) bool {
	ctx, cancel := context.WithTimeout(ctx, e.config.ConnectTimeout)
	defer cancel()

	conn, err := e.dialer.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// sortedUnique returns the distinct ports in ascending order.
func sortedUnique(ports []uint16) []uint16 {
	out := slices.Clone(ports)
	slices.Sort(out)
	return slices.Compact(out)
}
