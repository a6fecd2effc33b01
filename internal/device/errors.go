package device

import "errors"

// Domain-specific errors for device operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNetwork is returned when the query could not be completed after
	// all configured attempts.
	ErrNetwork = errors.New("device: network error")

	// ErrResponseTooLarge is returned when the response body exceeds
	// MaxResponseSize. Fetch wraps it together with ErrNetwork.
	ErrResponseTooLarge = errors.New("device: response exceeds maximum size")

	// ErrParse is returned when the response is not a well-formed XML
	// document or carries no usable daily value.
	ErrParse = errors.New("device: parse error")

	// ErrDevice is returned when the appliance reports a status other than "ok".
	ErrDevice = errors.New("device: appliance reported failure")
)
