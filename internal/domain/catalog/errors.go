package catalog

import "github.com/cockroachdb/errors"

var (
	// ErrPlanNotFound is returned when no plan version is active at the requested date
	ErrPlanNotFound = errors.New("plan not found for date")

	// ErrPhaseNotFound is returned when no phase matches the requested name and date
	ErrPhaseNotFound = errors.New("plan phase not found for date")
)
