package cli

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anstrom/hostsweep/internal/config"
	"github.com/anstrom/hostsweep/internal/discovery"
	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/logging"
	"github.com/anstrom/hostsweep/internal/mocks"
	"github.com/anstrom/hostsweep/internal/privilege"
)

// portDialer accepts connections only to the listed host:port pairs.
type portDialer map[string]bool

func (d portDialer) DialContext(_ context.Context, _, address string) (net.Conn, error) {
	if !d[address] {
		return nil, fmt.Errorf("dial %s: connection refused", address)
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

// newTestRuntime returns a privileged runtime whose prober reports the
// addresses in up as reachable.
func newTestRuntime(t *testing.T, up []string, open ...string) *runtime {
	t.Helper()
	ctrl := gomock.NewController(t)

	reachable := make(map[netip.Addr]bool, len(up))
	for _, a := range up {
		reachable[netip.MustParseAddr(a)] = true
	}
	prober := mocks.NewMockProber(ctrl)
	prober.EXPECT().Probe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, target netip.Addr) ([]netip.Addr, error) {
			if reachable[target] {
				return []netip.Addr{target}, nil
			}
			return nil, nil
		}).AnyTimes()

	dialer := portDialer{}
	for _, o := range open {
		dialer[o] = true
	}

	return &runtime{
		checkPrivilege: func() privilege.Status { return privilege.Privileged },
		escalate: func(context.Context, []string) (int, error) {
			t.Fatal("escalation not expected")
			return 0, nil
		},
		localAddr: func() (netip.Addr, error) { return netip.MustParseAddr("10.0.0.5"), nil },
		newProber: func(netip.Addr, *config.Config, *logging.Logger) (discovery.Prober, error) {
			return prober, nil
		},
		dialer: dialer,
	}
}

func runCommand(t *testing.T, rt *runtime, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Cleanup(func() { logging.SetDefault(logging.NewDefault()) })

	cmd := newRootCommand(rt)
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	code := execute(cmd, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestSweepCatalogOnAllHosts(t *testing.T) {
	rt := newTestRuntime(t, []string{"10.0.0.1", "10.0.0.3"}, "10.0.0.3:22", "10.0.0.3:80")

	out, errOut, code := runCommand(t, rt, "1\n",
		"-t", "10.0.0.0", "-c", "30", "-b", "2", "-s", "10.0.0.5")
	require.Equal(t, 0, code, errOut)

	assert.Contains(t, out, "Target IP: 10.0.0.0\n")
	assert.Contains(t, out, "Source IP: 10.0.0.5\n")
	assert.Contains(t, out, "Target CIDR: 30\n")
	assert.Contains(t, out, "Start scanning for existing IPs in Network")
	assert.Contains(t, out, "Host IP: 10.0.0.1\n")
	assert.Contains(t, out, "Host IP: 10.0.0.3\n")
	assert.Contains(t, out, clearScreen)
	assert.Contains(t, out, "Select target start IP: 10.0.0.0\n")
	assert.Contains(t, out, "Select target CIDR: 30\n")
	assert.Contains(t, out, "Finished scanning for existing IPs in Network")
	assert.Contains(t, out, "Action 1-4: ")
	assert.Contains(t, out, "Start scanning for open ports")
	assert.Contains(t, out, "10.0.0.3        22, 80\n")
	assert.NotContains(t, out, "10.0.0.1        ")

	// The summary comes after the screen is cleared.
	summary := out[strings.LastIndex(out, clearScreen):]
	assert.Contains(t, summary, "10.0.0.1")
	assert.NotContains(t, summary, "10.0.0.2")
}

func TestSweepRangeOnOneHostAfterInvalidChoices(t *testing.T) {
	rt := newTestRuntime(t, []string{"192.168.7.9"}, "192.168.7.200:8080", "192.168.7.200:9000")

	out, errOut, code := runCommand(t, rt, "7\nabc\n\n4\n192.168.7.200\n8000\n8100\n",
		"-t", "192.168.7.0", "-c", "28")
	require.Equal(t, 0, code, errOut)

	assert.Equal(t, 3, strings.Count(out, "Invalid input. Please enter a valid action number."))
	assert.Contains(t, out, "Enter IP: ")
	assert.Contains(t, out, "Enter the start port: ")
	assert.Contains(t, out, "Enter the end port: ")
	assert.Contains(t, out, "192.168.7.200   8080\n")
	assert.NotContains(t, out, "9000")
}

func TestSweepPromptsForTarget(t *testing.T) {
	rt := newTestRuntime(t, nil)

	out, errOut, code := runCommand(t, rt, "10.1.1.0\n2\n10.1.1.1\n", "-c", "31")
	require.Equal(t, 0, code, errOut)

	assert.Contains(t, out, "Enter the target IP address: ")
	assert.Contains(t, out, "Source IP: 10.0.0.5\n")
	assert.Contains(t, out, "Select target start IP: 10.1.1.0\n")
}

func TestSweepUsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostsweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scanning:\n  cidr: 31\n  batch_size: 1\n"), 0600))

	rt := newTestRuntime(t, []string{"10.9.0.1"})
	out, errOut, code := runCommand(t, rt, "1\n", "-t", "10.9.0.0", "--config", path)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Target CIDR: 31\n")
	assert.Contains(t, out, "Host IP: 10.9.0.1\n")
}

func TestSweepAcceptsUnusedFlags(t *testing.T) {
	rt := newTestRuntime(t, nil)
	_, errOut, code := runCommand(t, rt, "1\n",
		"-t", "10.0.0.0", "-c", "32", "-a", "-i", "10.0.0.1", "-r", "1-100", "-v")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, "Flag has no effect")
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(rt *runtime)
		stdin string
		args  []string
		env   map[string]string
		code  int
	}{
		{
			name:  "unknown identity",
			setup: func(rt *runtime) { rt.checkPrivilege = func() privilege.Status { return privilege.Unknown } },
			args:  []string{"-t", "10.0.0.0"},
			code:  errors.ExitIdentity,
		},
		{
			name: "invalid source address",
			args: []string{"-t", "10.0.0.0", "-s", "10.0.0.300"},
			code: errors.ExitConfiguration,
		},
		{
			name:  "no local address",
			setup: func(rt *runtime) { rt.localAddr = func() (netip.Addr, error) { return netip.Addr{}, fmt.Errorf("no route") } },
			args:  []string{"-t", "10.0.0.0"},
			code:  errors.ExitConfiguration,
		},
		{
			name: "ipv6 target block",
			args: []string{"-t", "fe80::1"},
			code: errors.ExitConfiguration,
		},
		{
			name:  "invalid prompted target",
			stdin: "not-an-ip\n",
			code:  errors.ExitInput,
		},
		{
			name: "zero batch size",
			args: []string{"-t", "10.0.0.0", "-b", "0"},
			code: errors.ExitInput,
		},
		{
			name: "cidr out of range",
			args: []string{"-t", "10.0.0.0", "-c", "40"},
			code: errors.ExitInput,
		},
		{
			name: "batch size from environment",
			args: []string{"-t", "10.0.0.0"},
			env:  map[string]string{"HOSTSWEEP_BATCH_SIZE": "0"},
			code: errors.ExitInput,
		},
		{
			name: "malformed range flag",
			args: []string{"-t", "10.0.0.0", "-r", "100"},
			code: errors.ExitInput,
		},
		{
			name:  "invalid port typed",
			stdin: "3\n80\nhttp\n",
			args:  []string{"-t", "10.0.0.0", "-c", "32"},
			code:  errors.ExitInput,
		},
		{
			name: "invalid config file",
			args: []string{"-t", "10.0.0.0", "--config", "testdata/invalid.yaml"},
			code: errors.ExitConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			rt := newTestRuntime(t, nil)
			if tt.setup != nil {
				tt.setup(rt)
			}

			_, errOut, code := runCommand(t, rt, tt.stdin, tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, errOut, "Error: ")
		})
	}
}

func TestUnprivilegedEscalates(t *testing.T) {
	tests := []struct {
		name   string
		result int
		err    error
		code   int
	}{
		{"child succeeded", 1, nil, 1},
		{"child failed", 5, nil, 5},
		{"sudo missing", errors.ExitPermission, errors.ErrPermission("sudo not found", nil), errors.ExitPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newTestRuntime(t, nil)
			rt.args = []string{"-t", "10.0.0.0"}
			rt.checkPrivilege = func() privilege.Status { return privilege.Unprivileged }

			var got []string
			rt.escalate = func(_ context.Context, args []string) (int, error) {
				got = args
				return tt.result, tt.err
			}
			rt.newProber = func(netip.Addr, *config.Config, *logging.Logger) (discovery.Prober, error) {
				t.Fatal("discovery must not start without privilege")
				return nil, nil
			}

			out, _, code := runCommand(t, rt, "", "-t", "10.0.0.0")
			assert.Equal(t, tt.code, code)
			assert.Equal(t, []string{"-t", "10.0.0.0"}, got)
			assert.Empty(t, out)
		})
	}
}

func TestConsolePrompter(t *testing.T) {
	var out bytes.Buffer
	p := newConsolePrompter(strings.NewReader("first\r\nsecond\nlast"), &out)

	for _, want := range []string{"first", "second", "last"} {
		got, err := p.Prompt("> ")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := p.Prompt("> ")
	assert.Error(t, err)
	assert.Equal(t, "> > > > ", out.String())
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })

	cmd := NewRootCommand()
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2026-01-01)", cmd.Version)
}
