// Package cli provides the command-line interface of the hostsweep network
// scanner. The root command discovers live hosts in an address block and
// then runs one interactive port scan over them.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/anstrom/hostsweep/internal/config"
	"github.com/anstrom/hostsweep/internal/discovery"
	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/liveness"
	"github.com/anstrom/hostsweep/internal/logging"
	"github.com/anstrom/hostsweep/internal/privilege"
	"github.com/anstrom/hostsweep/internal/scanning"
	"github.com/anstrom/hostsweep/internal/session"
)

const envPrefix = "HOSTSWEEP"

// Flag names double as viper keys, so HOSTSWEEP_BATCH_SIZE overrides -b.
const (
	flagTargetIP  = "target_ip"
	flagSourceIP  = "source_ip"
	flagCIDR      = "cidr"
	flagBatchSize = "batch_size"
	flagScanAllIP = "scan_all_ip"
	flagScanIP    = "scan_ip"
	flagRange     = "range"
	flagConfig    = "config"
	flagVerbose   = "verbose"
	flagResolve   = "resolve"
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// exitStatus ends the process with a given code without printing an error.
// It carries the result of a privilege escalation.
type exitStatus struct {
	code int
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// runtime holds the process-level collaborators of the root command.
// Tests replace them with fakes.
type runtime struct {
	checkPrivilege func() privilege.Status
	escalate       func(ctx context.Context, args []string) (int, error)
	localAddr      func() (netip.Addr, error)
	newProber      func(source netip.Addr, cfg *config.Config, logger *logging.Logger) (discovery.Prober, error)
	dialer         scanning.Dialer
	args           []string
}

func defaultRuntime() *runtime {
	return &runtime{
		checkPrivilege: privilege.Check,
		escalate:       privilege.NewEscalator().Escalate,
		localAddr:      localAddr,
		newProber:      newHostScanner,
		args:           os.Args[1:],
	}
}

func newHostScanner(source netip.Addr, cfg *config.Config, logger *logging.Logger) (discovery.Prober, error) {
	return liveness.NewHostScanner(source.String(),
		liveness.WithHostTimeout(cfg.Scanning.ProbeTimeout),
		liveness.WithBinaryPath(cfg.Scanning.NmapPath),
		liveness.WithLogger(logger))
}

// NewRootCommand builds the hostsweep command wired to the real system.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultRuntime())
}

func newRootCommand(rt *runtime) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "hostsweep",
		Short: "Discover live hosts and scan their ports",
		Long: `hostsweep pings every address of a target block from a source address,
lists the hosts that answered and then scans either a catalog of well-known
ports or an explicit port range on all of them or on a single host.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd, v, rt)
		},
	}

	flags := cmd.Flags()
	registerFlags(flags)

	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind flags: %v\n", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return cmd
}

func registerFlags(flags *pflag.FlagSet) {
	flags.StringP(flagTargetIP, "t", "", "start address of the target block (prompted when empty)")
	flags.StringP(flagSourceIP, "s", "", "source address of the probes (default: local interface address)")
	flags.IntP(flagCIDR, "c", 24, "prefix length of the target block (0-32)")
	flags.IntP(flagBatchSize, "b", session.DefaultBatchSize, "addresses per discovery batch")
	flags.BoolP(flagScanAllIP, "a", false, "accepted for compatibility, has no effect")
	flags.StringP(flagScanIP, "i", "", "accepted for compatibility, has no effect")
	flags.StringP(flagRange, "r", "", "accepted for compatibility (start-end), has no effect")
	flags.String(flagConfig, "", "config file (default is ./config.yaml)")
	flags.BoolP(flagVerbose, "v", false, "verbose output")
	flags.Bool(flagResolve, false, "resolve names of the discovered hosts")
}

// loadConfig reads the config file and layers explicitly set flags and
// HOSTSWEEP_* variables on top of it.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	if file := v.GetString(flagConfig); file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to read config file", err)
		}
	}

	cfg, err := config.Load(v.ConfigFileUsed())
	if err != nil {
		return nil, err
	}

	if v.IsSet(flagBatchSize) {
		n := v.GetInt(flagBatchSize)
		if n < 1 {
			return nil, errors.NewInputError(flagBatchSize, v.GetString(flagBatchSize), fmt.Errorf("must be at least 1"))
		}
		cfg.Scanning.BatchSize = n
	}
	if v.IsSet(flagCIDR) {
		n := v.GetInt(flagCIDR)
		if n < 0 || n > 32 {
			return nil, errors.NewInputError(flagCIDR, v.GetString(flagCIDR), fmt.Errorf("must be between 0 and 32"))
		}
		cfg.Scanning.CIDR = n
	}
	if v.GetBool(flagVerbose) {
		cfg.Logging.Level = string(logging.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg. Console outputs follow the
// command's writers.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	lc := cfg.LoggerConfig()
	switch lc.Output {
	case "stderr", "":
		return logging.NewWithWriter(lc, cmd.ErrOrStderr()), nil
	case "stdout":
		return logging.NewWithWriter(lc, cmd.OutOrStdout()), nil
	default:
		return logging.New(lc)
	}
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
}

// Execute runs the root command and terminates the process with the exit
// code of its outcome.
func Execute() {
	os.Exit(execute(NewRootCommand(), os.Stderr))
}

func execute(cmd *cobra.Command, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var status *exitStatus
	if errors.As(err, &status) {
		return status.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return errors.ExitCode(err)
}
