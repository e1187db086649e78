package invoice

import "github.com/cockroachdb/errors"

var (
	// ErrSafetyBoundExceeded is the deliberate circuit breaker tripped when an
	// invoice run would emit more items than the configured bound. The run
	// aborts without partial results and is not retried automatically.
	ErrSafetyBoundExceeded = errors.New("invoice generation safety bound exceeded")
)
