// Package config loads and validates the hostsweep configuration file.
// Values not present in the file keep their defaults; command-line flags
// are layered on top by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/anstrom/hostsweep/internal/discovery"
	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/logging"
	"github.com/anstrom/hostsweep/internal/scanning"
	"github.com/anstrom/hostsweep/internal/session"
)

const (
	defaultCIDR            = 24
	defaultProbeTimeout    = 5 * time.Second
	defaultResolverTimeout = 2 * time.Second
	defaultMetricsAddr     = "127.0.0.1:9090"
)

// Config represents the complete hostsweep configuration
type Config struct {
	// Scanning configuration
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics endpoint configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Reverse DNS configuration
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`
}

// ScanningConfig holds discovery and port scan settings
type ScanningConfig struct {
	// Addresses per discovery batch
	BatchSize int `yaml:"batch_size" json:"batch_size" validate:"min=1"`

	// Prefix length of the target block
	CIDR int `yaml:"cidr" json:"cidr" validate:"min=0,max=32"`

	// Bound on a single TCP connect attempt
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout" validate:"gte=0"`

	// Simultaneous connect attempts per host scan, 0 means unbounded
	MaxConcurrentConnects int `yaml:"max_concurrent_connects" json:"max_concurrent_connects" validate:"min=0"`

	// Batches probed at once, 0 means all of them
	MaxConcurrentBatches int `yaml:"max_concurrent_batches" json:"max_concurrent_batches" validate:"min=0"`

	// Probes in flight inside one batch, 0 means unbounded
	MaxProbesPerBatch int `yaml:"max_probes_per_batch" json:"max_probes_per_batch" validate:"min=0"`

	// Host timeout handed to nmap, 0 leaves nmap's own default
	ProbeTimeout time.Duration `yaml:"probe_timeout" json:"probe_timeout" validate:"gte=0"`

	// Path to the nmap binary, empty means search PATH
	NmapPath string `yaml:"nmap_path" json:"nmap_path"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig holds the Prometheus endpoint settings
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	ListenAddr string `yaml:"listen_addr" json:"listen_addr" validate:"required_if=Enabled true,omitempty,hostname_port"`
}

// ResolverConfig holds reverse lookup settings
type ResolverConfig struct {
	// DNS server as host or host:port, empty means /etc/resolv.conf
	Server  string        `yaml:"server" json:"server"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml keys instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Scanning: ScanningConfig{
			BatchSize:             session.DefaultBatchSize,
			CIDR:                  defaultCIDR,
			ConnectTimeout:        scanning.DefaultConnectTimeout,
			MaxConcurrentConnects: scanning.DefaultMaxConcurrentConnects,
			MaxConcurrentBatches:  0,
			MaxProbesPerBatch:     1,
			ProbeTimeout:          defaultProbeTimeout,
		},
		Logging: LoggingConfig{
			Level:  string(logging.LevelInfo),
			Format: string(logging.FormatText),
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: defaultMetricsAddr,
		},
		Resolver: ResolverConfig{
			Timeout: defaultResolverTimeout,
		},
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to read config file", err)
	}

	// JSON is a subset of YAML, so one decoder covers both extensions.
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			fmt.Sprintf("failed to parse config %s", filepath.Base(path)), err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration. The first offending field is
// reported as a configuration error named by its yaml path.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.WrapConfigError(errors.CodeConfiguration, "invalid configuration", err)
	}

	fe := verrs[0]
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	return errors.NewConfigFieldError(errors.CodeConfiguration,
		fmt.Sprintf("failed %q validation", fe.Tag()), field, fe.Value())
}

// EngineConfig returns the port scan engine settings
func (c *Config) EngineConfig() scanning.EngineConfig {
	return scanning.EngineConfig{
		ConnectTimeout:        c.Scanning.ConnectTimeout,
		MaxConcurrentConnects: c.Scanning.MaxConcurrentConnects,
	}
}

// DiscoveryConfig returns the host discovery settings
func (c *Config) DiscoveryConfig() discovery.Config {
	return discovery.Config{
		MaxConcurrentBatches: c.Scanning.MaxConcurrentBatches,
		MaxProbesPerBatch:    c.Scanning.MaxProbesPerBatch,
	}
}

// LoggerConfig returns the logger settings. Debug level also records
// source locations.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:     logging.LogLevel(c.Logging.Level),
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    c.Logging.Output,
		AddSource: c.Logging.Level == string(logging.LevelDebug),
	}
}

// IsMetricsEnabled returns true if the metrics endpoint should be served
func (c *Config) IsMetricsEnabled() bool {
	return c.Metrics.Enabled
}
