package metric

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Sink accepts samples for delivery to a monitoring backend.
type Sink interface {
	WriteSample(ctx context.Context, s Sample) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, s Sample) error

// WriteSample calls f(ctx, s).
func (f SinkFunc) WriteSample(ctx context.Context, s Sample) error {
	return f(ctx, s)
}

// Logger interface for optional logging support.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type namedSink struct {
	name string
	sink Sink
}

// Dispatcher delivers each sample to every registered sink and logs a
// "send data" line per sample. A failing sink does not stop delivery to
// the others.
type Dispatcher struct {
	mu     sync.RWMutex
	sinks  []namedSink
	logger Logger
}

// NewDispatcher creates a Dispatcher with no sinks. logger may be nil.
func NewDispatcher(logger Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Register adds a sink under name.
func (d *Dispatcher) Register(name string, sink Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, namedSink{name: name, sink: sink})
}

// Sinks returns the registered sink names in registration order.
func (d *Dispatcher) Sinks() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.name
	}
	return names
}

// Dispatch writes samples in order to every sink.
//
// Returns:
//   - int: Number of samples accepted by every sink
//   - error: Wrapping ErrDispatch with all sink errors joined, or nil
func (d *Dispatcher) Dispatch(ctx context.Context, samples []Sample) (int, error) {
	d.mu.RLock()
	sinks := d.sinks
	d.mu.RUnlock()

	var errs []error
	delivered := 0

	for _, s := range samples {
		if d.logger != nil {
			d.logger.Info("send data",
				"metric", s.Identifier(),
				"value", s.Value,
				"timestamp", s.Time.Format(time.RFC3339),
			)
		}

		ok := true
		for _, ns := range sinks {
			if err := ns.sink.WriteSample(ctx, s); err != nil {
				ok = false
				errs = append(errs, fmt.Errorf("%s: %w", ns.name, err))
				if d.logger != nil {
					d.logger.Error("sink write failed", "sink", ns.name, "error", err)
				}
			}
		}
		if ok {
			delivered++
		}
	}

	if len(errs) > 0 {
		return delivered, fmt.Errorf("%w: %w", ErrDispatch, errors.Join(errs...))
	}
	return delivered, nil
}
