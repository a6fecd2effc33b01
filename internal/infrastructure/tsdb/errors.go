package tsdb

import "errors"

var (
	// ErrDisabled is returned by Connect when tsdb.enabled is false.
	ErrDisabled = errors.New("tsdb: disabled in configuration")

	// ErrConnectionFailed means /health did not answer at startup.
	ErrConnectionFailed = errors.New("tsdb: connection failed")

	// ErrNotConnected is returned by WriteSample after Close.
	ErrNotConnected = errors.New("tsdb: not connected")

	// ErrWriteFailed wraps a rejected or failed batch POST.
	ErrWriteFailed = errors.New("tsdb: write failed")
)
