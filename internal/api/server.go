package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/envsense-core/internal/infrastructure/config"
	"github.com/nerrad567/envsense-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/envsense-core/internal/infrastructure/logging"
	"github.com/nerrad567/envsense-core/internal/infrastructure/metrics"
	"github.com/nerrad567/envsense-core/internal/sensor"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Recorder validates and writes one reading. Satisfied by *sensor.Recorder.
type Recorder interface {
	RecordSensor(ctx context.Context, s sensor.Sensor, values map[string]float64) error
}

// Reader returns recent stored points. Satisfied by *influxdb.Reader.
type Reader interface {
	Latest(ctx context.Context, measurement string, fields []string, limit int) ([]influxdb.Point, error)
}

// HealthChecker is a backend probed by /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Recorder Recorder

	// Reader serves the GET endpoints. Nil when querying is disabled.
	Reader Reader

	// Checks are reported by /health under their map key.
	Checks map[string]HealthChecker

	// Metrics may be nil.
	Metrics *metrics.Metrics
	Version string
}

// Server is the HTTP API server.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	recorder Recorder
	reader   Reader
	checks   map[string]HealthChecker
	metrics  *metrics.Metrics
	version  string

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates an API server. It does not listen until Start.
//
// Parameters:
//   - deps: Logger and Recorder are required; the rest are optional
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If a required dependency is missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		recorder: deps.Recorder,
		reader:   deps.Reader,
		checks:   deps.Checks,
		metrics:  deps.Metrics,
		version:  deps.Version,
	}, nil
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listen address and serves in a background goroutine.
//
// Binding happens before Start returns, so a port already in use is
// reported here rather than lost in the background.
//
// Parameters:
//   - ctx: Base context for every request; cancelling it aborts in-flight
//     writes but does not stop the listener (use Close)
//
// Returns:
//   - error: If the address cannot be bound
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("API server listening", "address", ln.Addr().String())

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the server, waiting up to 10 seconds for
// in-flight requests. Safe to call before Start.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
