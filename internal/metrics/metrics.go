package metrics

import "time"

// Common label keys.
const (
	LabelJobType   = "job_type"
	LabelStatus    = "status"
	LabelNetwork   = "network"
	LabelScanMode  = "scan_mode"
	LabelPortState = "port_state"
)

// Job outcomes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusPanic   = "panic"
)

// Liveness probe outcomes.
const (
	ProbeUp    = "up"
	ProbeDown  = "down"
	ProbeError = "error"
)

// Port states.
const (
	PortOpen   = "open"
	PortClosed = "closed"
)

// Nop discards every measurement.
type Nop struct{}

func (Nop) JobStarted(string) {}
func (Nop) JobFinished(string, string, time.Duration) {}
func (Nop) ObserveProbe(string) {}
func (Nop) ObserveDiscovery(string, int, time.Duration) {}
func (Nop) ObservePortScan(string, int, int, time.Duration) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
