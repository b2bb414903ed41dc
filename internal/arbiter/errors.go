package arbiter

import (
	"errors"
	"fmt"
)

// ErrOutOfTime indicates the deadline was reached without a sample of at
// least acceptable quality, or with no samples at all.
var ErrOutOfTime = errors.New("location query ran out of time")

// ErrQueryInProgress indicates a registry already has an open query.
var ErrQueryInProgress = errors.New("a one-shot location query is already in progress")

// ProviderError indicates the provider reported a failure before any
// candidate was collected.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location provider failed: %v", e.Err)
	}
	return "location provider failed"
}

func (e *ProviderError) Unwrap() error { return e.Err }
