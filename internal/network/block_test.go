package network

import (
	"net/netip"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/hostsweep/internal/errors"
)

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		prefix    int
		network   string
		broadcast string
		wantErr   bool
	}{
		{"aligned /24", "192.168.1.0", 24, "192.168.1.0", "192.168.1.255", false},
		{"unaligned start", "192.168.1.77", 24, "192.168.1.0", "192.168.1.255", false},
		{"/30", "10.0.0.2", 30, "10.0.0.0", "10.0.0.3", false},
		{"/32 single address", "10.1.2.3", 32, "10.1.2.3", "10.1.2.3", false},
		{"/0 whole space", "8.8.8.8", 0, "0.0.0.0", "255.255.255.255", false},
		{"prefix too large", "10.0.0.0", 33, "", "", true},
		{"negative prefix", "10.0.0.0", -1, "", "", true},
		{"not an address", "10.0.0.256", 24, "", "", true},
		{"ipv6 start", "fe80::1", 24, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := ParseBlock(tt.start, tt.prefix)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeConfiguration), "expected configuration error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.network, block.Network().String())
			assert.Equal(t, tt.broadcast, block.Broadcast().String())
		})
	}
}

func TestParseCIDR(t *testing.T) {
	block, err := ParseCIDR("172.16.5.9/20")
	require.NoError(t, err)
	assert.Equal(t, "172.16.0.0", block.Network().String())
	assert.Equal(t, "172.16.15.255", block.Broadcast().String())
	assert.Equal(t, "172.16.5.9/20", block.String())

	for _, bad := range []string{"172.16.5.9", "172.16.5.9/x", "172.16.5.9/40", "/24"} {
		_, err := ParseCIDR(bad)
		assert.Error(t, err, bad)
	}
}

func TestEnumerate(t *testing.T) {
	for prefix := 16; prefix <= 32; prefix++ {
		block, err := ParseBlock("10.20.30.40", prefix)
		require.NoError(t, err)

		addrs := block.Enumerate()
		require.Len(t, addrs, 1<<(32-prefix), "prefix %d", prefix)
		assert.Equal(t, block.Network(), addrs[0], "prefix %d", prefix)
		assert.Equal(t, block.Broadcast(), addrs[len(addrs)-1], "prefix %d", prefix)
		for i := 1; i < len(addrs); i++ {
			if addrs[i-1].Compare(addrs[i]) >= 0 {
				t.Fatalf("prefix %d: sequence not strictly ascending at %d: %s then %s",
					prefix, i, addrs[i-1], addrs[i])
			}
		}
	}
}

func TestSizeForEveryPrefix(t *testing.T) {
	for prefix := 0; prefix <= 32; prefix++ {
		block, err := ParseBlock("203.0.113.7", prefix)
		require.NoError(t, err)
		assert.Equal(t, uint64(1)<<(32-prefix), block.Size(), "prefix %d", prefix)

		// The lazy sequence starts at the network address even for huge blocks.
		for first := range block.All() {
			assert.Equal(t, block.Network(), first, "prefix %d", prefix)
			break
		}
	}
}

func TestAllIsRestartable(t *testing.T) {
	block, err := ParseBlock("10.0.0.0", 29)
	require.NoError(t, err)

	first := slices.Collect(block.All())
	second := slices.Collect(block.All())
	assert.Equal(t, first, second)
	assert.Len(t, first, 8)
}

func TestEnumerateTopOfAddressSpace(t *testing.T) {
	block, err := ParseBlock("255.255.255.254", 31)
	require.NoError(t, err)

	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("255.255.255.254"),
		netip.MustParseAddr("255.255.255.255"),
	}, block.Enumerate())
}
