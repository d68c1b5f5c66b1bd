package session

import (
	"net/netip"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/network"
)

func testBlock(t *testing.T) network.Block {
	t.Helper()
	block, err := network.ParseBlock("192.168.1.0", 24)
	require.NoError(t, err)
	return block
}

func TestNew(t *testing.T) {
	source := netip.MustParseAddr("192.168.1.10")
	block := testBlock(t)

	sess, err := New(source, block, DefaultBatchSize)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, sess.ID())
	assert.Equal(t, source, sess.Source())
	assert.Equal(t, block, sess.Block())
	assert.Equal(t, 5, sess.BatchSize())
}

func TestNewUnmapsSource(t *testing.T) {
	sess, err := New(netip.MustParseAddr("::ffff:10.0.0.1"), testBlock(t), 1)
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), sess.Source())
}

func TestNewDistinctIDs(t *testing.T) {
	a, err := New(netip.MustParseAddr("10.0.0.1"), testBlock(t), 1)
	require.NoError(t, err)
	b, err := New(netip.MustParseAddr("10.0.0.1"), testBlock(t), 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name      string
		source    netip.Addr
		batchSize int
		code      errors.ErrorCode
	}{
		{"zero batch size", netip.MustParseAddr("10.0.0.1"), 0, errors.CodeValidation},
		{"negative batch size", netip.MustParseAddr("10.0.0.1"), -1, errors.CodeValidation},
		{"missing source", netip.Addr{}, 5, errors.CodeConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := New(tt.source, testBlock(t), tt.batchSize)
			require.Error(t, err)
			assert.Nil(t, sess)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}
