package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anstrom/hostsweep/internal/logging"
)

const (
	serverShutdownTimeout = 5 * time.Second
	serverReadTimeout     = 10 * time.Second
)

// Server exposes a PrometheusMetrics registry over HTTP while a sweep runs.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	logger     *logging.Logger
}

// NewServer builds a server listening on addr. Access logs go to accessLog
// in combined log format; pass nil to disable them.
func NewServer(addr string, pm *PrometheusMetrics, logger *logging.Logger, accessLog io.Writer) *Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(pm.GetRegistry(), promhttp.HandlerOpts{})).
		Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "ok uptime=%s\n", pm.GetUptime().Truncate(time.Second))
	}).Methods(http.MethodGet)

	var handler http.Handler = router
	if accessLog != nil {
		handler = handlers.CombinedLoggingHandler(accessLog, handler)
	}
	handler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(handler)

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: serverReadTimeout,
		},
		logger: logger.WithComponent("metrics"),
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens and serves until ctx is done. The listener is bound before
// Start returns, so a bad address fails immediately.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("metrics server listen failed: %w", err)
	}

	s.logger.Info("Starting metrics server", "address", listener.Addr().String())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Metrics server failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Metrics server shutdown error", "error", err)
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}
	return nil
}
