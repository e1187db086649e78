package billing

import "github.com/cockroachdb/errors"

var (
	// ErrDuplicateBillingEvent signals a timeline corruption upstream: two
	// billing events for the same subscription share an effective date and
	// transition type
	ErrDuplicateBillingEvent = errors.New("duplicate billing event")
)
