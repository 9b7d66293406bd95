// services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrStillProcessing signals that another action for the same target
	// is already in flight. The second trigger is rejected, not queued.
	ErrStillProcessing = errors.New("an action for this target is still processing")

	// ErrAlreadyProcessed signals that the target is in a terminal
	// status and no further action may be issued for it.
	ErrAlreadyProcessed = errors.New("target has already been verified or rejected")

	// ErrStatusMismatch signals that the backend response did not echo
	// the requested status. The response is never merged into cache.
	ErrStatusMismatch = errors.New("backend did not confirm the requested status")

	// ErrNoSources signals that no upstream source produced a usable
	// seller payload and nothing is cached.
	ErrNoSources = errors.New("no seller data available from any source")
)

// GatewayError carries the upstream HTTP status so permission and
// not-found responses propagate to the caller as-is.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway returned %d", e.StatusCode)
}

// AsGatewayError unwraps a GatewayError from an error chain
func AsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}
