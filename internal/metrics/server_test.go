package metrics

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/hostsweep/internal/logging"
)

func TestServerRoutes(t *testing.T) {
	pm := NewPrometheusMetrics()
	pm.ObservePortScan("catalog", 1, 9, 0)

	var access bytes.Buffer
	srv := NewServer("127.0.0.1:0", pm, logging.Discard(), &access)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `hostsweep_scan_ports_total{port_state="open",scan_mode="catalog"} 1`)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "ok"))

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	assert.Contains(t, access.String(), "GET /metrics")
}

func TestServerStartStop(t *testing.T) {
	pm := NewPrometheusMetrics()
	srv := NewServer("127.0.0.1:0", pm, logging.Discard(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	assert.NoError(t, srv.Stop())
}

func TestServerStartBadAddress(t *testing.T) {
	srv := NewServer("256.0.0.1:bad", NewPrometheusMetrics(), logging.Discard(), io.Discard)
	assert.Error(t, srv.Start(context.Background()))
}
