package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flexprice/billingcore/internal/domain/catalog"
	ierr "github.com/flexprice/billingcore/internal/errors"
)

type planVersion struct {
	effectiveFrom time.Time
	plan          *catalog.Plan
}

// InMemoryCatalog is an in-memory implementation of the catalog.Catalog
// interface with date-versioned plans
type InMemoryCatalog struct {
	mu       sync.Mutex
	versions map[string][]planVersion
}

// NewInMemoryCatalog creates a new instance of InMemoryCatalog
func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{
		versions: make(map[string][]planVersion),
	}
}

// AddPlan registers a plan version effective from the given date. Later
// registrations with a later effective date supersede earlier ones.
func (c *InMemoryCatalog) AddPlan(effectiveFrom time.Time, plan *catalog.Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.versions[plan.Name] = append(c.versions[plan.Name], planVersion{
		effectiveFrom: effectiveFrom,
		plan:          plan,
	})
	sort.Slice(c.versions[plan.Name], func(i, j int) bool {
		return c.versions[plan.Name][i].effectiveFrom.Before(c.versions[plan.Name][j].effectiveFrom)
	})
}

// GetPlan resolves the plan version active at the given date
func (c *InMemoryCatalog) GetPlan(ctx context.Context, name string, at time.Time) (*catalog.Plan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var resolved *catalog.Plan
	for _, v := range c.versions[name] {
		if v.effectiveFrom.After(at) {
			break
		}
		resolved = v.plan
	}
	if resolved == nil {
		return nil, ierr.WithError(catalog.ErrPlanNotFound).
			WithReportableDetails(map[string]interface{}{
				"plan_name": name,
				"date":      at,
			}).
			Mark(ierr.ErrNotFound)
	}
	return resolved, nil
}

// GetPhase resolves a plan phase by name across all plans active at the date
func (c *InMemoryCatalog) GetPhase(ctx context.Context, name string, at time.Time) (*catalog.PlanPhase, error) {
	c.mu.Lock()
	planNames := make([]string, 0, len(c.versions))
	for planName := range c.versions {
		planNames = append(planNames, planName)
	}
	c.mu.Unlock()
	sort.Strings(planNames)

	for _, planName := range planNames {
		plan, err := c.GetPlan(ctx, planName, at)
		if err != nil {
			continue
		}
		if phase := plan.Phase(name); phase != nil {
			return phase, nil
		}
	}

	return nil, ierr.WithError(catalog.ErrPhaseNotFound).
		WithReportableDetails(map[string]interface{}{
			"phase_name": name,
			"date":       at,
		}).
		Mark(ierr.ErrNotFound)
}

// Clear removes all plans from the catalog
func (c *InMemoryCatalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions = make(map[string][]planVersion)
}
