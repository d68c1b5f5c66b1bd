package cli

import (
	"context"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anstrom/hostsweep/internal/action"
	"github.com/anstrom/hostsweep/internal/config"
	"github.com/anstrom/hostsweep/internal/discovery"
	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/logging"
	"github.com/anstrom/hostsweep/internal/metrics"
	"github.com/anstrom/hostsweep/internal/network"
	"github.com/anstrom/hostsweep/internal/privilege"
	"github.com/anstrom/hostsweep/internal/resolver"
	"github.com/anstrom/hostsweep/internal/scanning"
	"github.com/anstrom/hostsweep/internal/session"
)

const (
	promptTargetIP = "Enter the target IP address: "

	msgDiscoveryStart = "\n\nStart scanning for existing IPs in Network\n\n"
	msgDiscoveryDone  = "\n\nFinished scanning for existing IPs in Network\n\n"
	msgExistingIPs    = "Existing IPs:"

	clearScreen = "\x1b[2J\x1b[1;1H"
)

// runSweep is the whole interactive session: privilege gate, discovery,
// summary and one port scan action.
func runSweep(cmd *cobra.Command, v *viper.Viper, rt *runtime) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if err := checkPrivilege(ctx, rt); err != nil {
		return err
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return errors.WrapConfigError(errors.CodeConfiguration, "failed to initialize logging", err)
	}
	logging.SetDefault(logger)

	if err := checkUnusedFlags(v, logger); err != nil {
		return err
	}

	prompter := newConsolePrompter(cmd.InOrStdin(), out)

	target, err := readTarget(v, prompter, out)
	if err != nil {
		return err
	}
	source, err := readSource(v, rt, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Target CIDR: %d\n", cfg.Scanning.CIDR)

	block, err := network.ParseBlock(target.String(), cfg.Scanning.CIDR)
	if err != nil {
		return err
	}
	sess, err := session.New(source, block, cfg.Scanning.BatchSize)
	if err != nil {
		return err
	}
	logger = logger.WithSession(sess.ID().String())

	recorder, err := startMetrics(ctx, cmd, cfg, logger)
	if err != nil {
		return err
	}

	prober, err := rt.newProber(source, cfg, logger)
	if err != nil {
		return err
	}
	disc, err := discovery.NewEngine(prober, cfg.DiscoveryConfig(),
		discovery.WithLogger(logger),
		discovery.WithMetrics(recorder),
		discovery.WithProgress(out))
	if err != nil {
		return err
	}

	fmt.Fprint(out, msgDiscoveryStart)
	fmt.Fprintln(out, msgExistingIPs)
	found, err := disc.Discover(ctx, sess)
	if err != nil {
		return err
	}
	hosts := found.Sorted()

	var names map[netip.Addr]string
	if v.GetBool(flagResolve) {
		names = resolveNames(ctx, cfg, hosts, logger)
	}

	fmt.Fprint(out, clearScreen)
	fmt.Fprintf(out, "Source IP: %s\n", sess.Source())
	fmt.Fprintf(out, "Select target start IP: %s\n", target)
	fmt.Fprintf(out, "Select target CIDR: %d\n", block.Prefix())
	fmt.Fprint(out, msgDiscoveryDone)
	fmt.Fprintln(out, msgExistingIPs)
	renderHosts(out, hosts, names)

	opts := []scanning.Option{
		scanning.WithLogger(logger),
		scanning.WithMetrics(recorder),
	}
	if rt.dialer != nil {
		opts = append(opts, scanning.WithDialer(rt.dialer))
	}
	engine, err := scanning.NewEngine(cfg.EngineConfig(), opts...)
	if err != nil {
		return err
	}

	dispatcher := action.NewDispatcher(prompter, out, engine, hosts, logger)
	_, err = dispatcher.Run(ctx)
	return err
}

// checkPrivilege refuses to go on without raw socket privilege. An
// unprivileged process re-runs itself through sudo and then ends with the
// code escalation returned.
func checkPrivilege(ctx context.Context, rt *runtime) error {
	switch rt.checkPrivilege() {
	case privilege.Privileged:
		return nil
	case privilege.Unprivileged:
		code, err := rt.escalate(ctx, rt.args)
		if err != nil {
			return err
		}
		return &exitStatus{code: code}
	default:
		return errors.NewScanError(errors.CodeIdentity, "cannot determine the current user")
	}
}

// checkUnusedFlags validates the compatibility flags and notes that they
// have no effect.
func checkUnusedFlags(v *viper.Viper, logger *logging.Logger) error {
	if ip := v.GetString(flagScanIP); ip != "" {
		if _, err := netip.ParseAddr(ip); err != nil {
			return errors.NewInputError(flagScanIP, ip, err)
		}
	}
	if r := v.GetString(flagRange); r != "" {
		start, end, ok := strings.Cut(r, "-")
		if !ok {
			return errors.NewInputError(flagRange, r, fmt.Errorf("expected start-end"))
		}
		if _, err := scanning.ParsePort(flagRange, start); err != nil {
			return err
		}
		if _, err := scanning.ParsePort(flagRange, end); err != nil {
			return err
		}
	}

	for _, name := range []string{flagScanAllIP, flagScanIP, flagRange} {
		if v.IsSet(name) {
			logger.Debug("Flag has no effect", "flag", name, "value", v.GetString(name))
		}
	}
	return nil
}

func readTarget(v *viper.Viper, prompter action.Prompter, out io.Writer) (netip.Addr, error) {
	text := v.GetString(flagTargetIP)
	if text != "" {
		fmt.Fprintf(out, "Target IP: %s\n", text)
	} else {
		line, err := prompter.Prompt(promptTargetIP)
		if err != nil {
			return netip.Addr{}, err
		}
		text = strings.TrimSpace(line)
	}

	addr, err := netip.ParseAddr(text)
	if err != nil {
		return netip.Addr{}, errors.NewInputError(flagTargetIP, text, err)
	}
	return addr.Unmap(), nil
}

func readSource(v *viper.Viper, rt *runtime, out io.Writer) (netip.Addr, error) {
	var source netip.Addr
	if text := v.GetString(flagSourceIP); text != "" {
		addr, err := netip.ParseAddr(text)
		if err != nil {
			return netip.Addr{}, errors.NewConfigFieldError(errors.CodeConfiguration,
				"invalid source address", flagSourceIP, text)
		}
		source = addr.Unmap()
	} else {
		addr, err := rt.localAddr()
		if err != nil {
			return netip.Addr{}, errors.WrapConfigError(errors.CodeConfiguration,
				"cannot determine local address, set --source_ip", err)
		}
		source = addr
	}

	fmt.Fprintf(out, "Source IP: %s\n", source)
	return source, nil
}

// startMetrics serves Prometheus metrics for the lifetime of ctx when
// enabled. Otherwise measurements are dropped.
func startMetrics(ctx context.Context, cmd *cobra.Command, cfg *config.Config,
	logger *logging.Logger) (metrics.Recorder, error) {
	if !cfg.IsMetricsEnabled() {
		return metrics.Nop{}, nil
	}

	pm := metrics.GetGlobalMetrics()
	var accessLog io.Writer
	if cfg.Logging.Level == string(logging.LevelDebug) {
		accessLog = cmd.ErrOrStderr()
	}
	server := metrics.NewServer(cfg.Metrics.ListenAddr, pm, logger, accessLog)
	if err := server.Start(ctx); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "cannot start metrics server", err)
	}
	return pm, nil
}

// resolveNames looks up PTR names of hosts. A resolver that cannot be set up
// only costs the names.
func resolveNames(ctx context.Context, cfg *config.Config, hosts []netip.Addr,
	logger *logging.Logger) map[netip.Addr]string {
	r, err := resolver.New(cfg.Resolver.Server, cfg.Resolver.Timeout, logger)
	if err != nil {
		logger.Warn("Reverse lookups disabled", "error", err)
		return nil
	}
	return r.Annotate(ctx, hosts)
}

// renderHosts prints the discovered hosts as a table, with a name column
// when names were resolved.
func renderHosts(out io.Writer, hosts []netip.Addr, names map[netip.Addr]string) {
	table := tablewriter.NewWriter(out)
	if names != nil {
		table.Header("Host IP", "Name")
	} else {
		table.Header("Host IP")
	}

	for _, host := range hosts {
		row := []string{host.String()}
		if names != nil {
			row = append(row, names[host])
		}
		_ = table.Append(row)
	}
	_ = table.Render()
}
