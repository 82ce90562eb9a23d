package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/envsense-core/internal/infrastructure/config"
)

// Default timeouts and limits for InfluxDB reads.
const (
	defaultPingTimeout  = 5 * time.Second
	defaultQueryTimeout = 10 * time.Second
	defaultQueryRange   = 60 * time.Minute
)

// Reader queries recent points from InfluxDB.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Reader struct {
	client   influxdb2.Client
	queryAPI api.QueryAPI
	bucket   string
	window   time.Duration

	// connected tracks whether Close has been called.
	connected bool
	mu        sync.RWMutex
}

// New creates a reader from the InfluxDB configuration.
//
// No request is made: the backend is often still starting when the service
// comes up, so reachability is left to HealthCheck.
//
// Parameters:
//   - cfg: InfluxDB configuration; QueryEnabled must be set
//
// Returns:
//   - *Reader: Reader ready for use
//   - error: ErrDisabled if the reader is turned off
func New(cfg config.InfluxDBConfig) (*Reader, error) {
	if !cfg.QueryEnabled {
		return nil, ErrDisabled
	}

	window := defaultQueryRange
	if cfg.QueryRange > 0 {
		window = time.Duration(cfg.QueryRange) * time.Minute
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	return &Reader{
		client:    client,
		queryAPI:  client.QueryAPI(cfg.Org),
		bucket:    cfg.Bucket,
		window:    window,
		connected: true,
	}, nil
}

// Close releases the underlying HTTP resources. Safe to call more than once.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected {
		return nil
	}
	r.connected = false
	r.client.Close()
	return nil
}

// HealthCheck pings the InfluxDB server.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (r *Reader) HealthCheck(ctx context.Context) error {
	if !r.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := r.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsConnected reports whether the reader is still open.
func (r *Reader) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}
