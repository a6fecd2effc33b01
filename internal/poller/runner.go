package poller

import (
	"context"
	"time"
)

// DefaultMaxSuspend caps the delay after repeated failures.
const DefaultMaxSuspend = 24 * time.Hour

// Cycler runs one poll cycle. Implemented by *Poller.
type Cycler interface {
	Cycle(ctx context.Context) error
}

// Runner invokes a Cycler on a fixed interval. After a failed cycle the
// next invocation is suspended for twice the previous delay, up to
// maxSuspend; a successful cycle restores the normal interval.
type Runner struct {
	cycler     Cycler
	interval   time.Duration
	maxSuspend time.Duration
	logger     Logger

	// wait is replaceable in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a Runner. A non-positive maxSuspend means DefaultMaxSuspend;
// maxSuspend is never below interval.
func NewRunner(cycler Cycler, interval, maxSuspend time.Duration, logger Logger) *Runner {
	if maxSuspend <= 0 {
		maxSuspend = DefaultMaxSuspend
	}
	if maxSuspend < interval {
		maxSuspend = interval
	}
	if logger == nil {
		logger = nopLogger{}
	}

	return &Runner{
		cycler:     cycler,
		interval:   interval,
		maxSuspend: maxSuspend,
		logger:     logger,
		wait:       wait,
	}
}

// Run invokes the first cycle immediately and keeps going until ctx is
// cancelled. It returns nil on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	delay := r.interval

	for {
		err := r.cycler.Cycle(ctx)
		if ctx.Err() != nil {
			return nil
		}

		delay = r.nextDelay(delay, err)
		if err != nil {
			r.logger.Warn("suspending poll after failure", "delay", delay.String())
		}

		if err := r.wait(ctx, delay); err != nil {
			return nil
		}
	}
}

// nextDelay returns the interval after success, or double the current
// suspension (starting from interval) after failure, capped at maxSuspend.
func (r *Runner) nextDelay(current time.Duration, cycleErr error) time.Duration {
	if cycleErr == nil {
		return r.interval
	}

	next := current * 2
	if next > r.maxSuspend || next <= 0 {
		next = r.maxSuspend
	}
	return next
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
