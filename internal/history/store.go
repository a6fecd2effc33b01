package history

import (
	"context"
	"time"
)

// Store persists the reported-day watermark.
type Store interface {
	// Load returns the stored watermark, or Epoch when none has been saved.
	Load(ctx context.Context) (time.Time, error)

	// Save replaces the watermark with ts (whole seconds).
	Save(ctx context.Context, ts time.Time) error

	// Check reports whether the store can be used this cycle. It returns
	// an error wrapping ErrUnavailable otherwise.
	Check(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Epoch is the watermark of a store that has never been written.
var Epoch = time.Unix(0, 0)
