package metrics

import "time"

//go:generate mockgen -destination=../mocks/mock_recorder.go -package=mocks github.com/anstrom/hostsweep/internal/metrics Recorder

// Recorder is the set of measurements emitted while a sweep runs.
// This interface allows components to run without a Prometheus registry.
type Recorder interface {
	JobStarted(jobType string)
	JobFinished(jobType, status string, duration time.Duration)
	ObserveProbe(status string)
	ObserveDiscovery(network string, hosts int, duration time.Duration)
	ObservePortScan(mode string, open, closed int, duration time.Duration)
}

// Ensure that both implementations satisfy Recorder.
var (
	_ Recorder = (*PrometheusMetrics)(nil)
	_ Recorder = Nop{}
)
