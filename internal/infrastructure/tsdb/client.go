package tsdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/config"
)

const (
	requestTimeout = 5 * time.Second

	// defaultBatchSize covers a full 14-day back-fill in one request.
	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second
)

// Client is the VictoriaMetrics sink. Lines are queued by WriteSample and
// POSTed to /write when the batch is full, on every flush tick and on Close.
type Client struct {
	writeURL  string
	healthURL string
	http      *http.Client
	batchSize int

	mu      sync.Mutex
	pending []string
	closed  bool
	onError func(err error)

	stop    chan struct{}
	stopped chan struct{}
}

// Connect checks GET /health and starts the periodic flush.
//
// Returns:
//   - *Client: Sink ready for WriteSample
//   - error: ErrDisabled, or ErrConnectionFailed if /health does not answer 200
func Connect(ctx context.Context, cfg config.TSDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	base := strings.TrimRight(cfg.URL, "/")
	c := &Client{
		writeURL:  base + "/write",
		healthURL: base + "/health",
		http:      &http.Client{Timeout: requestTimeout},
		batchSize: defaultBatchSize,
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	if cfg.BatchSize > 0 {
		c.batchSize = cfg.BatchSize
	}
	interval := defaultFlushInterval
	if cfg.FlushInterval > 0 {
		interval = time.Duration(cfg.FlushInterval) * time.Second
	}

	if err := c.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	go c.flushEvery(interval)

	return c, nil
}

func (c *Client) flushEvery(interval time.Duration) {
	defer close(c.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stop:
			return
		}
	}
}

// SetOnError sets the callback for failed batch writes.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// HealthCheck requires GET /health to answer 200. It backs the collector's /healthz.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health: status %d", resp.StatusCode)
	}
	return nil
}

// Close stops the ticker and writes whatever is still queued. Safe to call twice.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.stopped

	c.flush()
	return nil
}

// enqueue adds line and reports whether the batch is now full.
func (c *Client) enqueue(line string) (full bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrNotConnected
	}
	c.pending = append(c.pending, line)
	return len(c.pending) >= c.batchSize, nil
}

// flush posts the queued lines; failures go to the error callback.
func (c *Client) flush() {
	c.mu.Lock()
	lines := c.pending
	c.pending = nil
	callback := c.onError
	c.mu.Unlock()

	if len(lines) == 0 {
		return
	}

	if err := c.post(strings.Join(lines, "\n")); err != nil && callback != nil {
		callback(fmt.Errorf("%w: %d line(s): %w", ErrWriteFailed, len(lines), err))
	}
}

func (c *Client) post(body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.writeURL, bytes.NewBufferString(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
