// Package discovery finds the reachable hosts of an address block. The block
// is split into batches; batches are probed concurrently while the addresses
// inside one batch are probed one after another through a Prober.
package discovery

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/netip"
	"slices"
	"sync"
	"time"

	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/logging"
	"github.com/anstrom/hostsweep/internal/metrics"
	"github.com/anstrom/hostsweep/internal/network"
	"github.com/anstrom/hostsweep/internal/session"
	"github.com/anstrom/hostsweep/internal/workers"
)

const (
	// Default discovery configuration values.
	defaultMaxConcurrentBatches = 0
	defaultMaxProbesPerBatch    = 1

	jobTypeBatch = "batch"
	jobTypeProbe = "liveness"
)

//go:generate mockgen -destination=../mocks/mock_prober.go -package=mocks github.com/anstrom/hostsweep/internal/discovery Prober

// Prober runs one single-target liveness probe and returns the addresses it
// judged reachable.
type Prober interface {
	Probe(ctx context.Context, target netip.Addr) ([]netip.Addr, error)
}

// Config represents discovery configuration.
type Config struct {
	// MaxConcurrentBatches caps batches probed at once (0 = one unit per batch)
	MaxConcurrentBatches int
	// MaxProbesPerBatch caps probes in flight inside one batch (1 = sequential)
	MaxProbesPerBatch int
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentBatches: defaultMaxConcurrentBatches,
		MaxProbesPerBatch:    defaultMaxProbesPerBatch,
	}
}

// HostSet is a set of reachable addresses.
type HostSet map[netip.Addr]struct{}

// Add inserts addrs into the set.
func (s HostSet) Add(addrs ...netip.Addr) {
	for _, a := range addrs {
		s[a] = struct{}{}
	}
}

// Contains reports whether addr is in the set.
func (s HostSet) Contains(addr netip.Addr) bool {
	_, ok := s[addr]
	return ok
}

// Sorted returns the members in ascending order.
func (s HostSet) Sorted() []netip.Addr {
	return slices.SortedFunc(maps.Keys(s), netip.Addr.Compare)
}

// Engine handles network discovery operations.
type Engine struct {
	prober   Prober
	config   Config
	logger   *logging.Logger
	metrics  metrics.Recorder
	progress io.Writer
	mu       sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithProgress prints "Host IP: <addr>" to w for every reachable host as
// soon as it is found.
func WithProgress(w io.Writer) Option {
	return func(e *Engine) { e.progress = w }
}

// NewEngine creates a new discovery engine.
func NewEngine(prober Prober, cfg Config, opts ...Option) (*Engine, error) {
	if prober == nil {
		return nil, errors.ErrConfigMissing("prober")
	}
	if cfg.MaxConcurrentBatches < 0 {
		return nil, errors.ErrConfigInvalid("max_concurrent_batches", cfg.MaxConcurrentBatches)
	}
	if cfg.MaxProbesPerBatch < 0 {
		return nil, errors.ErrConfigInvalid("max_probes_per_batch", cfg.MaxProbesPerBatch)
	}

	e := &Engine{
		prober:  prober,
		config:  cfg,
		logger:  logging.Default(),
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("discovery")
	e.metrics = metrics.OrNop(e.metrics)
	return e, nil
}

// Discover probes every address of the session's block and returns the
// union of everything the prober reported reachable. Failed probes count as
// unreachable. It returns only after every batch has finished.
func (e *Engine) Discover(ctx context.Context, sess *session.Session) (HostSet, error) {
	block := sess.Block()
	logger := e.logger.WithSession(sess.ID().String())

	batches, err := network.Batch(block.Enumerate(), sess.BatchSize())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger.InfoDiscovery("Starting discovery", block.String(),
		"addresses", block.Size(),
		"batches", len(batches),
		"batch_size", sess.BatchSize())

	jobs := make([]workers.Job[[]netip.Addr], len(batches))
	for i, batch := range batches {
		jobs[i] = workers.Job[[]netip.Addr]{
			ID:   fmt.Sprintf("batch-%d:%s", i, batch[0]),
			Type: jobTypeBatch,
			Execute: func(ctx context.Context) ([]netip.Addr, error) {
				return e.probeBatch(ctx, logger, batch), nil
			},
		}
	}

	results := workers.Run(ctx, workers.Config{
		Size:    e.config.MaxConcurrentBatches,
		Logger:  logger,
		Metrics: e.metrics,
	}, jobs)

	hosts := HostSet{}
	for _, found := range workers.Values(results) {
		hosts.Add(found...)
	}

	duration := time.Since(start)
	e.metrics.ObserveDiscovery(block.String(), len(hosts), duration)
	logger.InfoDiscovery("Discovery finished", block.String(),
		"reachable", len(hosts),
		"duration", duration)

	if err := ctx.Err(); err != nil {
		logger.ErrorDiscovery("Discovery interrupted", block.String(), err, "reachable", len(hosts))
		return hosts, errors.WrapScanErrorWithTarget(errors.CodeCanceled, "Discovery interrupted", block.String(), err)
	}
	return hosts, nil
}

// probeBatch probes the addresses of one batch and returns the reachable ones.
func (e *Engine) probeBatch(ctx context.Context, logger *logging.Logger, batch []netip.Addr) []netip.Addr {
	jobs := make([]workers.Job[[]netip.Addr], len(batch))
	for i, addr := range batch {
		jobs[i] = workers.Job[[]netip.Addr]{
			ID:   addr.String(),
			Type: jobTypeProbe,
			Execute: func(ctx context.Context) ([]netip.Addr, error) {
				return e.probe(ctx, logger, addr)
			},
		}
	}

	results := workers.Run(ctx, workers.Config{
		Size:    e.config.MaxProbesPerBatch,
		Logger:  logger,
		Metrics: e.metrics,
	}, jobs)

	var reachable []netip.Addr
	for _, r := range results {
		switch {
		case r.Error == nil:
			reachable = append(reachable, r.Value...)
		case !errors.IsCode(r.Error, errors.CodeCanceled):
			e.metrics.ObserveProbe(metrics.ProbeError)
		}
	}
	return reachable
}

// probe runs the prober against a single address.
func (e *Engine) probe(ctx context.Context, logger *logging.Logger, addr netip.Addr) ([]netip.Addr, error) {
	found, err := e.prober.Probe(ctx, addr)
	if err != nil {
		logger.Warn("Liveness probe failed", "address", addr.String(), "error", err)
		if errors.IsCode(err, errors.CodeProbeFailed) {
			return nil, err
		}
		return nil, errors.ErrProbeFailed(addr.String(), err)
	}

	if len(found) == 0 {
		e.metrics.ObserveProbe(metrics.ProbeDown)
		return nil, nil
	}

	e.metrics.ObserveProbe(metrics.ProbeUp)
	e.reportProgress(found)
	return found, nil
}

func (e *Engine) reportProgress(found []netip.Addr) {
	if e.progress == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, addr := range found {
		_, _ = fmt.Fprintf(e.progress, "Host IP: %s\n", addr)
	}
}
