package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gruenbeck-collector/internal/device"
	"github.com/nerrad567/gruenbeck-collector/internal/history"
	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/metrics"
	"github.com/nerrad567/gruenbeck-collector/internal/metric"
)

// Fetcher queries the appliance. Implemented by *device.Client.
type Fetcher interface {
	Fetch(ctx context.Context, history bool) ([]byte, error)
}

// Dispatcher delivers samples. Implemented by *metric.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, samples []metric.Sample) (int, error)
}

// Recorder receives cycle metrics. Implemented by *metrics.Recorder.
type Recorder interface {
	CycleFinished(outcome string, elapsed time.Duration)
	SamplesDispatched(n int)
	WatermarkSaved(ts time.Time)
	HistoryMode(enabled bool)
}

// Logger interface for cycle logging.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Poller.
type Options struct {
	// Fetcher queries the appliance. Required.
	Fetcher Fetcher

	// Dispatcher delivers samples. Required.
	Dispatcher Dispatcher

	// Store holds the watermark. Nil disables history mode for the
	// lifetime of the Poller.
	Store history.Store

	// Logger may be nil.
	Logger Logger

	// Recorder may be nil.
	Recorder Recorder

	// Now overrides the clock (tests). Defaults to time.Now.
	Now func() time.Time

	// NewCycleID overrides cycle id generation (tests). Defaults to uuid.NewString.
	NewCycleID func() string
}

// Poller executes poll cycles. Cycles must not run concurrently.
type Poller struct {
	fetcher    Fetcher
	dispatcher Dispatcher
	store      history.Store
	logger     Logger
	recorder   Recorder
	now        func() time.Time
	newCycleID func() string
}

// New creates a Poller from opts.
func New(opts Options) (*Poller, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("poller: fetcher is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("poller: dispatcher is required")
	}

	p := &Poller{
		fetcher:    opts.Fetcher,
		dispatcher: opts.Dispatcher,
		store:      opts.Store,
		logger:     opts.Logger,
		recorder:   opts.Recorder,
		now:        opts.Now,
		newCycleID: opts.NewCycleID,
	}
	if p.logger == nil {
		p.logger = nopLogger{}
	}
	if p.recorder == nil {
		p.recorder = nopRecorder{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newCycleID == nil {
		p.newCycleID = uuid.NewString
	}

	return p, nil
}

// HistoryEnabled reports whether cycles may use 14-day history.
func (p *Poller) HistoryEnabled() bool {
	return p.store != nil
}

// Cycle runs one poll cycle.
//
// Before 23:00 local time it returns nil without any request. Otherwise
// it fetches and parses the appliance reply; a failure there is returned
// and the watermark is left untouched. On success the day boundary is
// saved as the watermark before any sample is dispatched, so a dispatch
// failure under-reports rather than duplicating days.
//
// Returns:
//   - error: Wrapping device.ErrNetwork, device.ErrParse, device.ErrDevice
//     or metric.ErrDispatch
func (p *Poller) Cycle(ctx context.Context) error {
	start := p.now()

	boundary, ok := DayBoundary(start)
	if !ok {
		p.recorder.CycleFinished(metrics.OutcomeSkipped, 0)
		return nil
	}

	cycleID := p.newCycleID()

	err := p.poll(ctx, cycleID, start, boundary)

	elapsed := p.now().Sub(start)
	if err != nil {
		p.recorder.CycleFinished(metrics.OutcomeFailure, elapsed)
		p.logger.Error("poll cycle failed", "cycle_id", cycleID, "error", err)
		return err
	}

	p.recorder.CycleFinished(metrics.OutcomeSuccess, elapsed)
	return nil
}

func (p *Poller) poll(ctx context.Context, cycleID string, start, boundary time.Time) error {
	persist, useHistory, watermark := p.loadWatermark(ctx, cycleID, boundary)
	p.recorder.HistoryMode(useHistory)

	raw, err := p.fetcher.Fetch(ctx, useHistory)
	if err != nil {
		return fmt.Errorf("fetching readings: %w", err)
	}

	batch, err := device.Parse(raw, useHistory)
	if err != nil {
		return fmt.Errorf("parsing readings: %w", err)
	}

	if persist {
		p.saveWatermark(ctx, cycleID, laterOf(boundary, watermark))
	}

	var samples []metric.Sample
	if useHistory {
		for _, due := range history.Reconcile(batch, boundary, watermark) {
			samples = append(samples, metric.NewGauge(due.Reading.Value, due.Timestamp, cycleID))
		}
	} else {
		samples = []metric.Sample{metric.NewGauge(batch.Latest().Value, start, cycleID)}
	}

	p.logger.Debug("readings reconciled",
		"cycle_id", cycleID,
		"extracted", batch.Extracted,
		"dispatching", len(samples),
		"history", useHistory,
	)

	n, err := p.dispatcher.Dispatch(ctx, samples)
	p.recorder.SamplesDispatched(n)
	if err != nil {
		return err
	}

	return nil
}

// saveWatermark persists mark. A failed save is logged, not returned: the
// next cycle re-sends from the old watermark.
func (p *Poller) saveWatermark(ctx context.Context, cycleID string, mark time.Time) {
	if err := p.store.Save(ctx, mark); err != nil {
		p.logger.Warn("saving watermark failed", "cycle_id", cycleID, "error", err)
		return
	}
	p.recorder.WatermarkSaved(mark)
}

// laterOf keeps the watermark from moving backwards, e.g. after the clock
// was corrected.
func laterOf(boundary, watermark time.Time) time.Time {
	if watermark.After(boundary) {
		return watermark
	}
	return boundary
}

// loadWatermark decides the cycle mode.
//
// Returns:
//   - persist: Whether the watermark should be saved after a successful parse
//   - useHistory: Whether to request and reconcile 14 days
//   - watermark: The stored watermark (Epoch if none)
func (p *Poller) loadWatermark(ctx context.Context, cycleID string, boundary time.Time) (persist, useHistory bool, watermark time.Time) {
	if p.store == nil {
		return false, false, history.Epoch
	}

	if err := p.store.Check(ctx); err != nil {
		p.logger.Warn("history not accessible, reporting latest value only", "cycle_id", cycleID, "error", err)
		return false, false, history.Epoch
	}

	watermark, err := p.store.Load(ctx)
	if err != nil {
		// Saving the boundary afterwards replaces the unreadable value.
		p.logger.Warn("reading watermark failed, reporting latest value only", "cycle_id", cycleID, "error", err)
		return true, false, history.Epoch
	}

	p.logger.Info("last timestamp", "cycle_id", cycleID, "timestamp", watermark.Unix())

	if !boundary.After(watermark) {
		p.logger.Warn("already updated, no data sent", "cycle_id", cycleID, "boundary", boundary.Unix())
	}

	return true, true, watermark
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type nopRecorder struct{}

func (nopRecorder) CycleFinished(string, time.Duration) {}
func (nopRecorder) SamplesDispatched(int)               {}
func (nopRecorder) WatermarkSaved(time.Time)            {}
func (nopRecorder) HistoryMode(bool)                    {}
