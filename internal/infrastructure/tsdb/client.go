package tsdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nerrad567/envsense-core/internal/infrastructure/config"
)

// Default timeouts for TSDB operations.
const (
	defaultWriteTimeout  = 5 * time.Second
	defaultHealthTimeout = 5 * time.Second

	// maxErrorBodySize caps how much of a rejection body is kept for diagnostics.
	maxErrorBodySize = 64 << 10
)

const contentTypeLineProtocol = "text/plain; charset=utf-8"

// Client writes points to an InfluxDB v2 compatible backend using line
// protocol over HTTP.
//
// Each WritePoint call is one POST to /api/v2/write carrying exactly one
// line. There is no buffering, batching or retry: the caller sees the
// outcome of every write.
//
// Thread Safety: All fields are immutable after New; methods are safe for
// concurrent use from multiple goroutines.
type Client struct {
	baseURL    string
	writeURL   string
	token      string
	httpClient *http.Client

	// now supplies point timestamps; replaced in tests.
	now func() time.Time
}

// New creates a write client from the InfluxDB configuration.
//
// No request is made; use HealthCheck to verify the backend is reachable.
//
// Parameters:
//   - cfg: Backend URL, token, org, bucket and write timeout
//
// Returns:
//   - *Client: Client ready for use
//   - error: If the URL, org or bucket is missing or malformed
func New(cfg config.InfluxDBConfig) (*Client, error) {
	base := strings.TrimRight(cfg.URL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("tsdb: invalid url %q", cfg.URL)
	}
	if cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("tsdb: org and bucket are required")
	}

	timeout := cfg.GetWriteTimeout()
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	return &Client{
		baseURL:  base,
		writeURL: fmt.Sprintf("%s/api/v2/write?org=%s&bucket=%s", base, url.QueryEscape(cfg.Org), url.QueryEscape(cfg.Bucket)),
		token:    cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}, nil
}

// WritePoint encodes one point stamped with the current time and posts it.
//
// Parameters:
//   - ctx: Context for cancellation; the client's timeout applies as well
//   - measurement: Destination series (e.g. "dust_sensor")
//   - tags: Source identity, emitted in order
//   - fields: Readings, emitted in order; at least one is required
//
// Returns:
//   - error: nil on a 2xx response, otherwise a *WriteError whose Kind is
//     ErrEncoding, ErrTransport or ErrRejected
//
// Example:
//
//	err := client.WritePoint(ctx, "dust_sensor",
//	    []tsdb.Tag{{Key: "sensor_id", Value: "dust_sensor"}},
//	    []tsdb.Field{{Key: "dust_concentration", Value: 23.5}})
func (c *Client) WritePoint(ctx context.Context, measurement string, tags []Tag, fields []Field) error {
	line, err := Encode(measurement, tags, fields, c.now().UnixNano())
	if err != nil {
		return &WriteError{Kind: ErrEncoding, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.writeURL, bytes.NewBufferString(line))
	if err != nil {
		return &WriteError{Kind: ErrTransport, Err: err}
	}
	req.Header.Set("Content-Type", contentTypeLineProtocol)
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &WriteError{Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if readErr != nil {
		return &WriteError{Kind: ErrRejected, StatusCode: resp.StatusCode, Err: readErr}
	}
	return &WriteError{
		Kind:       ErrRejected,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// HealthCheck verifies the backend answers GET /health with 200.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error wrapping ErrConnectionFailed otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, defaultHealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrConnectionFailed, resp.StatusCode)
	}

	return nil
}

// URL returns the backend base URL.
func (c *Client) URL() string {
	return c.baseURL
}
