package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// gathered returns the value of the metric named name whose labels include
// the given pair (label may be empty), and how many series the family has.
func gathered(t *testing.T, reg *prometheus.Registry, name, label, value string) (float64, int) {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label != "" && !hasLabel(m, label, value) {
				continue
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue(), len(mf.GetMetric())
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue(), len(mf.GetMetric())
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount()), len(mf.GetMetric())
			}
		}
	}
	return 0, 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.CycleFinished(OutcomeSkipped, 0)
	r.CycleFinished(OutcomeSuccess, 2*time.Second)
	r.CycleFinished(OutcomeFailure, time.Second)
	r.CycleFinished(OutcomeFailure, time.Second)
	r.FetchAttempt(1, errors.New("timeout"))
	r.FetchAttempt(2, nil)
	r.SamplesDispatched(14)
	r.SamplesDispatched(1)
	r.WatermarkSaved(time.Unix(1773183600, 0))
	r.HistoryMode(true)

	tests := []struct {
		name   string
		metric string
		label  string
		value  string
		want   float64
	}{
		{"skipped", "gruenbeck_cycles_total", "outcome", OutcomeSkipped, 1},
		{"success", "gruenbeck_cycles_total", "outcome", OutcomeSuccess, 1},
		{"failure", "gruenbeck_cycles_total", "outcome", OutcomeFailure, 2},
		{"fetch ok", "gruenbeck_fetch_attempts_total", "result", "ok", 1},
		{"fetch error", "gruenbeck_fetch_attempts_total", "result", "error", 1},
		{"samples", "gruenbeck_samples_dispatched_total", "", "", 15},
		{"watermark", "gruenbeck_watermark_timestamp_seconds", "", "", 1773183600},
		{"history mode", "gruenbeck_history_mode", "", "", 1},
		// Skipped cycles are not timed.
		{"timed cycles", "gruenbeck_cycle_duration_seconds", "", "", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := gathered(t, reg, tt.metric, tt.label, tt.value); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.metric, got, tt.want)
			}
		})
	}

	r.HistoryMode(false)
	if got, _ := gathered(t, reg, "gruenbeck_history_mode", "", ""); got != 0 {
		t.Errorf("history mode = %v, want 0", got)
	}
}

func TestServer_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.SamplesDispatched(3)

	srv, err := Start(ServerOptions{Addr: "127.0.0.1:0", Gatherer: reg})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer srv.Shutdown(context.Background()) //nolint:errcheck // Test cleanup

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "gruenbeck_samples_dispatched_total 3") {
		t.Errorf("/metrics missing samples counter:\n%s", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("response has no X-Request-ID")
	}

	post, err := http.Post("http://"+srv.Addr()+"/metrics", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /metrics error = %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /metrics status = %d, want 405", post.StatusCode)
	}
}

// getHealth fetches /healthz and decodes the body.
func getHealth(t *testing.T, srv *Server) (int, healthResponse) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, "http://"+srv.Addr()+"/healthz", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Request-ID", "req-1")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "req-1" {
		t.Errorf("X-Request-ID = %q, want req-1", got)
	}

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding /healthz: %v", err)
	}
	return resp.StatusCode, body
}

func TestServer_Health(t *testing.T) {
	var mqttDown atomic.Bool

	srv, err := Start(ServerOptions{
		Addr:     "127.0.0.1:0",
		Gatherer: prometheus.NewRegistry(),
		Checks: map[string]HealthCheck{
			"history": func(context.Context) error { return nil },
			"mqtt": func(context.Context) error {
				if mqttDown.Load() {
					return errors.New("mqtt: client not connected")
				}
				return nil
			},
		},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer srv.Shutdown(context.Background()) //nolint:errcheck // Test cleanup

	status, body := getHealth(t, srv)
	if status != http.StatusOK || body.Status != "ok" {
		t.Errorf("healthy: status = %d %q, want 200 ok", status, body.Status)
	}
	if body.Checks["history"] != "ok" || body.Checks["mqtt"] != "ok" {
		t.Errorf("healthy: checks = %v", body.Checks)
	}

	mqttDown.Store(true)

	status, body = getHealth(t, srv)
	if status != http.StatusServiceUnavailable || body.Status != "unhealthy" {
		t.Errorf("failing: status = %d %q, want 503 unhealthy", status, body.Status)
	}
	if body.Checks["mqtt"] != "mqtt: client not connected" {
		t.Errorf("mqtt check = %q", body.Checks["mqtt"])
	}
	if body.Checks["history"] != "ok" {
		t.Errorf("history check = %q, want ok", body.Checks["history"])
	}
}

func TestServer_HealthWithoutChecks(t *testing.T) {
	srv, err := Start(ServerOptions{Addr: "127.0.0.1:0", Gatherer: prometheus.NewRegistry()})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer srv.Shutdown(context.Background()) //nolint:errcheck // Test cleanup

	status, body := getHealth(t, srv)
	if status != http.StatusOK || body.Status != "ok" || len(body.Checks) != 0 {
		t.Errorf("status = %d, body = %+v", status, body)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	s := &Server{logger: nopLogger{}}
	h := s.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestStart_BadAddress(t *testing.T) {
	if _, err := Start(ServerOptions{Addr: "256.0.0.1:bad", Gatherer: prometheus.NewRegistry()}); err == nil {
		t.Error("Start() expected error for invalid address")
	}
}

func TestStart_RequiresGatherer(t *testing.T) {
	if _, err := Start(ServerOptions{Addr: "127.0.0.1:0"}); err == nil {
		t.Error("Start() expected error without gatherer")
	}
}
