package catalog

import (
	"context"
	"time"
)

// Catalog resolves plan, phase and pricing relationships for a given date.
// It is a consumed collaborator: lookups are synchronous, fast and
// side-effect free, and the underlying data is immutable for a given
// effective date.
type Catalog interface {
	// GetPlan resolves the plan version active at the given date
	GetPlan(ctx context.Context, name string, at time.Time) (*Plan, error)

	// GetPhase resolves a plan phase by its fully qualified phase name
	GetPhase(ctx context.Context, name string, at time.Time) (*PlanPhase, error)
}
