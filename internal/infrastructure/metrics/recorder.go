package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle outcomes.
const (
	OutcomeSkipped = "skipped"
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

const namespace = "gruenbeck"

// Recorder updates the collector's Prometheus metrics.
type Recorder struct {
	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	fetchAttempts *prometheus.CounterVec
	samples       prometheus.Counter
	watermark     prometheus.Gauge
	historyMode   prometheus.Gauge
}

// NewRecorder registers the collector metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		cycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Poll cycles by outcome",
			},
			[]string{"outcome"}, // skipped, success or failure
		),
		cycleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cycle_duration_seconds",
				Help:      "Duration of poll cycles that queried the appliance",
				Buckets:   []float64{0.1, 0.5, 1, 3, 10, 30, 60},
			},
		),
		fetchAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "HTTP queries sent to the appliance by result",
			},
			[]string{"result"},
		),
		samples: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_dispatched_total",
				Help:      "Daily samples delivered to every sink",
			},
		),
		watermark: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "watermark_timestamp_seconds",
				Help:      "Day boundary of the last reported reading",
			},
		),
		historyMode: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "history_mode",
				Help:      "1 if the last cycle ran with 14-day history, 0 otherwise",
			},
		),
	}
}

// CycleFinished counts a cycle. Skipped cycles are not timed.
func (r *Recorder) CycleFinished(outcome string, elapsed time.Duration) {
	r.cycles.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		r.cycleDuration.Observe(elapsed.Seconds())
	}
}

// FetchAttempt counts one appliance query. Its signature matches
// device.Options.OnAttempt.
func (r *Recorder) FetchAttempt(_ int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.fetchAttempts.WithLabelValues(result).Inc()
}

// SamplesDispatched adds n delivered samples.
func (r *Recorder) SamplesDispatched(n int) {
	r.samples.Add(float64(n))
}

// WatermarkSaved records the persisted day boundary.
func (r *Recorder) WatermarkSaved(ts time.Time) {
	r.watermark.Set(float64(ts.Unix()))
}

// HistoryMode records whether the current cycle uses history.
func (r *Recorder) HistoryMode(enabled bool) {
	if enabled {
		r.historyMode.Set(1)
		return
	}
	r.historyMode.Set(0)
}
