package scanning

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/anstrom/hostsweep/internal/errors"
)

const (
	// DefaultConnectTimeout bounds a single TCP connect attempt.
	DefaultConnectTimeout = 100 * time.Millisecond
	// DefaultMaxConcurrentConnects caps simultaneous connect attempts.
	DefaultMaxConcurrentConnects = 512
)

// Scan modes, used as metric labels.
const (
	ModeCatalog = "catalog"
	ModeRange   = "range"
)

// Dialer opens TCP connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// EngineConfig represents the configuration of a port scan engine.
type EngineConfig struct {
	// ConnectTimeout bounds each connect attempt (0 = DefaultConnectTimeout)
	ConnectTimeout time.Duration
	// MaxConcurrentConnects caps in-flight connects per host scan (0 = unbounded)
	MaxConcurrentConnects int
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ConnectTimeout:        DefaultConnectTimeout,
		MaxConcurrentConnects: DefaultMaxConcurrentConnects,
	}
}

// Validate checks if the engine configuration is valid.
func (c EngineConfig) Validate() error {
	if c.ConnectTimeout < 0 {
		return errors.ErrConfigInvalid("connect_timeout", c.ConnectTimeout)
	}
	if c.MaxConcurrentConnects < 0 {
		return errors.ErrConfigInvalid("max_concurrent_connects", c.MaxConcurrentConnects)
	}
	return nil
}

// ParsePort parses a port number in 0..65535 typed by the operator.
func ParsePort(field, text string) (uint16, error) {
	port, err := strconv.ParseUint(strings.TrimSpace(text), 10, 16)
	if err != nil {
		return 0, errors.NewInputError(field, text, err)
	}
	return uint16(port), nil
}
