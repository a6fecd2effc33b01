package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/config"
	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/influxdb"
	"github.com/nerrad567/gruenbeck-collector/internal/metric"
)

// testConfig returns a configuration for a local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "gruenbeck-dev-token",
		Org:           "home",
		Bucket:        "water",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// skipIfNoInfluxDB skips the test if InfluxDB is not running.
func skipIfNoInfluxDB(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION") == "" {
		client, err := influxdb.Connect(context.Background(), testConfig())
		if err != nil {
			t.Skip("InfluxDB not available, skipping integration test")
		}
		client.Close()
	}
}

// fakeInflux answers /ping and records line-protocol bodies posted to /api/v2/write.
type fakeInflux struct {
	mu     sync.Mutex
	writes []string
	query  []string
	got    chan struct{}
}

func newFakeInflux(t *testing.T) (*fakeInflux, *httptest.Server) {
	t.Helper()

	f := &fakeInflux{got: make(chan struct{}, 16)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ping":
			w.WriteHeader(http.StatusNoContent)
		case "/api/v2/write":
			body, _ := io.ReadAll(r.Body)
			f.mu.Lock()
			f.writes = append(f.writes, string(body))
			f.query = append(f.query, r.URL.RawQuery)
			f.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
			f.got <- struct{}{}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	return f, srv
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestWriteSample_PointLayout(t *testing.T) {
	fake, srv := newFakeInflux(t)

	cfg := testConfig()
	cfg.URL = srv.URL

	client, err := influxdb.Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	ts := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	if err := client.WriteSample(context.Background(), metric.NewGauge(412, ts, "c1")); err != nil {
		t.Fatalf("WriteSample() error = %v", err)
	}
	// Close flushes the queued point.
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case <-fake.got:
	case <-time.After(5 * time.Second):
		t.Fatal("no write received")
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()

	line := strings.TrimSpace(fake.writes[0])
	for _, want := range []string{
		"gruenbeck,",
		"plugin=gruenbeck",
		"type=gauge",
		"type_instance=water",
		"value=412",
		"1773183600000000000",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if !strings.Contains(fake.query[0], "bucket=water") || !strings.Contains(fake.query[0], "org=home") {
		t.Errorf("write query = %q", fake.query[0])
	}
}

func TestWriteSample_AfterClose(t *testing.T) {
	_, srv := newFakeInflux(t)

	cfg := testConfig()
	cfg.URL = srv.URL

	client, err := influxdb.Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	err = client.WriteSample(context.Background(), metric.NewGauge(1, time.Now(), ""))
	if !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("WriteSample() error = %v, want ErrNotConnected", err)
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	// Second Close is a no-op.
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	ready := true
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.URL.Path == "/ping" && ready {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.URL = srv.URL

	client, err := influxdb.Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	mu.Lock()
	ready = false
	mu.Unlock()

	if err := client.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() expected error once the server stops answering /ping")
	}
}

func TestIntegration_WriteBackdatedSample(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	var writeErr error
	var mu sync.Mutex
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})

	ts := time.Now().Add(-13 * 24 * time.Hour).Truncate(time.Second)
	if err := client.WriteSample(context.Background(), metric.NewGauge(88, ts, "integration")); err != nil {
		t.Fatalf("WriteSample() error = %v", err)
	}
	client.Close()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		t.Errorf("Write error = %v", writeErr)
	}
}
