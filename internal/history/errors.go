package history

import "errors"

// Domain errors for watermark persistence.
var (
	// ErrStorage indicates the watermark could not be read or written.
	// Callers treat it as a warning; the poll cycle still dispatches.
	ErrStorage = errors.New("history: storage error")

	// ErrUnavailable indicates the state location is not accessible, so
	// history mode must fall back to single-value reporting.
	ErrUnavailable = errors.New("history: state not accessible")
)
