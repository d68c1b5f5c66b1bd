// Package metrics provides Prometheus-based metrics collection for hostsweep.
// Discovery, port scanning and the bounded job runner report through a
// Recorder; PrometheusMetrics is the production implementation.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all hostsweep metrics
	namespace = "hostsweep"

	// Subsystems
	subsystemScan      = "scan"
	subsystemDiscovery = "discovery"
	subsystemJobs      = "jobs"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	// Job runner metrics
	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	activeJobs  *prometheus.GaugeVec

	// Discovery metrics
	probesTotal       *prometheus.CounterVec
	hostsDiscovered   *prometheus.CounterVec
	discoveryDuration *prometheus.HistogramVec

	// Scan metrics
	portsScanned *prometheus.CounterVec
	scansTotal   *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec

	startTime time.Time
	registry  *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		startTime: time.Now(),
		registry:  registry,
	}

	pm.initJobMetrics()
	pm.initDiscoveryMetrics()
	pm.initScanMetrics()

	pm.registerMetrics()

	// Register standard Go and process collectors for runtime visibility
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

// initJobMetrics initializes metrics for units of work run by the job runner
func (pm *PrometheusMetrics) initJobMetrics() {
	pm.jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemJobs,
			Name:      "total",
			Help:      "Total number of units of work by type and outcome",
		},
		[]string{LabelJobType, LabelStatus},
	)

	pm.jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemJobs,
			Name:      "duration_seconds",
			Help:      "Duration of units of work in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{LabelJobType},
	)

	pm.activeJobs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemJobs,
			Name:      "active",
			Help:      "Number of units of work currently running",
		},
		[]string{LabelJobType},
	)
}

// initDiscoveryMetrics initializes discovery-related metrics
func (pm *PrometheusMetrics) initDiscoveryMetrics() {
	pm.probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "probes_total",
			Help:      "Total number of liveness probes by outcome",
		},
		[]string{LabelStatus},
	)

	pm.hostsDiscovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "hosts_total",
			Help:      "Total number of reachable hosts discovered",
		},
		[]string{LabelNetwork},
	)

	pm.discoveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "duration_seconds",
			Help:      "Duration of discovery runs in seconds",
			Buckets:   []float64{1.0, 5.0, 10.0, 30.0, 60.0, 300.0, 600.0, 1800.0},
		},
		[]string{LabelNetwork},
	)
}

// initScanMetrics initializes port scan metrics
func (pm *PrometheusMetrics) initScanMetrics() {
	pm.portsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "ports_total",
			Help:      "Total number of ports probed by scan mode and state",
		},
		[]string{LabelScanMode, LabelPortState},
	)

	pm.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "total",
			Help:      "Total number of per-host port scans by scan mode",
		},
		[]string{LabelScanMode},
	)

	pm.scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemScan,
			Name:      "duration_seconds",
			Help:      "Duration of per-host port scans in seconds",
			Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{LabelScanMode},
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() {
	pm.registry.MustRegister(pm.jobsTotal)
	pm.registry.MustRegister(pm.jobDuration)
	pm.registry.MustRegister(pm.activeJobs)

	pm.registry.MustRegister(pm.probesTotal)
	pm.registry.MustRegister(pm.hostsDiscovered)
	pm.registry.MustRegister(pm.discoveryDuration)

	pm.registry.MustRegister(pm.portsScanned)
	pm.registry.MustRegister(pm.scansTotal)
	pm.registry.MustRegister(pm.scanDuration)
}

// GetRegistry returns the Prometheus registry for HTTP handler
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// GetUptime returns the time since the metrics instance was created
func (pm *PrometheusMetrics) GetUptime() time.Duration {
	return time.Since(pm.startTime)
}

// Job runner

// JobStarted increments the active gauge for jobType
func (pm *PrometheusMetrics) JobStarted(jobType string) {
	pm.activeJobs.WithLabelValues(jobType).Inc()
}

// JobFinished records the outcome and duration of one unit of work
func (pm *PrometheusMetrics) JobFinished(jobType, status string, duration time.Duration) {
	pm.activeJobs.WithLabelValues(jobType).Dec()
	pm.jobsTotal.WithLabelValues(jobType, status).Inc()
	pm.jobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// Discovery

// ObserveProbe counts one liveness probe by outcome
func (pm *PrometheusMetrics) ObserveProbe(status string) {
	pm.probesTotal.WithLabelValues(status).Inc()
}

// ObserveDiscovery records a finished discovery run
func (pm *PrometheusMetrics) ObserveDiscovery(network string, hosts int, duration time.Duration) {
	pm.hostsDiscovered.WithLabelValues(network).Add(float64(hosts))
	pm.discoveryDuration.WithLabelValues(network).Observe(duration.Seconds())
}

// Port scanning

// ObservePortScan records a finished scan of one host
func (pm *PrometheusMetrics) ObservePortScan(mode string, open, closed int, duration time.Duration) {
	pm.scansTotal.WithLabelValues(mode).Inc()
	pm.portsScanned.WithLabelValues(mode, PortOpen).Add(float64(open))
	pm.portsScanned.WithLabelValues(mode, PortClosed).Add(float64(closed))
	pm.scanDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// Global instance for easy access
var globalMetrics *PrometheusMetrics
var metricsOnce sync.Once

// GetGlobalMetrics returns the global Prometheus metrics instance
func GetGlobalMetrics() *PrometheusMetrics {
	metricsOnce.Do(func() {
		globalMetrics = NewPrometheusMetrics()
	})
	return globalMetrics
}
