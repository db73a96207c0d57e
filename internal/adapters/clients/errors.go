// Package clients sends frames to cloud-hosted panels over HTTP.
package clients

import "errors"

// Transport failures. Callers translate them into domain errors; they never
// reach an HTTP response as is.
var (
	// ErrCircuitOpen means the breaker rejected the request without sending it.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
