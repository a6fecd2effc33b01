package device

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client defaults.
const (
	// MaxResponseSize bounds the response body (1 MiB).
	MaxResponseSize = 1 << 20

	// DefaultRetryBackoff is the pause between failed attempts.
	DefaultRetryBackoff = 3 * time.Second

	// defaultTimeout bounds a single HTTP attempt.
	defaultTimeout = 10 * time.Second

	// formContentType matches what the appliance's own web UI sends.
	formContentType = "application/x-www-form-urlencoded"
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Options configures a Client.
type Options struct {
	// URL is the query endpoint, e.g. http://192.168.1.40/mux_http.
	URL string

	// Attempts is the total number of tries per Fetch. Values below 1 mean 1.
	Attempts int

	// Backoff is the pause after a failed attempt. Zero means DefaultRetryBackoff;
	// use a negative value to disable the pause.
	Backoff time.Duration

	// Timeout bounds one HTTP attempt when HTTPClient is nil.
	Timeout time.Duration

	// HTTPClient overrides the connection handle (tests, custom transports).
	HTTPClient *http.Client

	// Logger receives per-attempt diagnostics. May be nil.
	Logger Logger

	// OnAttempt is called after every attempt with its outcome. May be nil.
	OnAttempt func(attempt int, err error)
}

// Client queries the appliance. One Client is created at startup and reused
// for every poll cycle so the underlying connection can be kept alive.
type Client struct {
	url         string
	historyBody string
	latestBody  string
	attempts    int
	backoff     time.Duration
	http        *http.Client
	logger      Logger
	onAttempt   func(attempt int, err error)

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client from opts.
//
// Returns:
//   - *Client: Client ready for Fetch
//   - error: If the URL is empty
func NewClient(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("device: URL is empty")
	}

	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := opts.Backoff
	switch {
	case backoff == 0:
		backoff = DefaultRetryBackoff
	case backoff < 0:
		backoff = 0
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		url:         opts.URL,
		historyBody: RequestBody(true),
		latestBody:  RequestBody(false),
		attempts:    attempts,
		backoff:     backoff,
		http:        httpClient,
		logger:      opts.Logger,
		onAttempt:   opts.OnAttempt,
		sleep:       sleepContext,
	}, nil
}

// URL returns the query endpoint.
func (c *Client) URL() string {
	return c.url
}

// Fetch performs the query, retrying failed attempts after a fixed pause.
//
// Parameters:
//   - ctx: Context for cancellation (interrupts the back-off pause)
//   - history: Request all 14 daily fields instead of D_Y_2_1 only
//
// Returns:
//   - []byte: Raw response body (at most MaxResponseSize bytes)
//   - error: Wraps ErrNetwork once every attempt has failed
func (c *Client) Fetch(ctx context.Context, history bool) ([]byte, error) {
	body := c.latestBody
	if history {
		body = c.historyBody
	}

	var lastErr error

	for attempt := 1; ; attempt++ {
		raw, err := c.do(ctx, body)
		if c.onAttempt != nil {
			c.onAttempt(attempt, err)
		}
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if c.logger != nil {
			c.logger.Warn("device query failed",
				"attempt", attempt,
				"attempts", c.attempts,
				"error", err,
			)
		}

		if attempt >= c.attempts {
			break
		}

		if sleepErr := c.sleep(ctx, c.backoff); sleepErr != nil {
			return nil, fmt.Errorf("%w: retry interrupted: %w", ErrNetwork, sleepErr)
		}
	}

	return nil, fmt.Errorf("%w: %d attempt(s) failed: %w", ErrNetwork, c.attempts, lastErr)
}

// do performs a single POST and reads the size-checked body.
func (c *Client) do(ctx context.Context, query string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", formContentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}

	if c.logger != nil {
		c.logger.Debug("device response", "bytes", len(body), "response", string(body))
	}

	return body, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
