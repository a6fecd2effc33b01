package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Logger interface for request logging.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// ServerOptions configures the metrics server.
type ServerOptions struct {
	// Addr is the listen address, e.g. ":9105" or "127.0.0.1:0".
	Addr string

	// Gatherer is served on /metrics. Required.
	Gatherer prometheus.Gatherer

	// Checks are run by /healthz, keyed by dependency name. May be empty.
	Checks map[string]HealthCheck

	// Logger may be nil.
	Logger Logger
}

// Server serves /metrics and /healthz.
type Server struct {
	srv      *http.Server
	listener net.Listener
	errCh    chan error
	checks   map[string]HealthCheck
	logger   Logger
}

// Start listens on opts.Addr and serves in the background.
//
// Returns:
//   - *Server: Running server; call Shutdown to stop it
//   - error: If the address cannot be bound
func Start(opts ServerOptions) (*Server, error) {
	if opts.Gatherer == nil {
		return nil, errors.New("metrics: gatherer is required")
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: listening on %s: %w", opts.Addr, err)
	}

	s := &Server{
		listener: ln,
		errCh:    make(chan error, 1),
		checks:   opts.Checks,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = nopLogger{}
	}
	s.srv = &http.Server{
		Handler:           s.buildRouter(opts.Gatherer),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
		close(s.errCh)
	}()

	return s, nil
}

// Addr returns the bound address (useful with ":0").
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Err delivers a serve error, if any, and is closed when the server stops.
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Shutdown stops the server, waiting briefly for in-flight scrapes.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics: shutdown: %w", err)
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
