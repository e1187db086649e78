package catalog

import (
	"github.com/flexprice/billingcore/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Product is a sellable product with its add-on relationships.
// Available lists the add-on products that may be purchased alongside it,
// Included lists the add-on products already bundled for free.
type Product struct {
	Name      string   `json:"name"`
	Available []string `json:"available,omitempty"`
	Included  []string `json:"included,omitempty"`
}

// IsAvailable reports whether the named product can be added on
func (p *Product) IsAvailable(name string) bool {
	return lo.Contains(p.Available, name)
}

// IsIncluded reports whether the named product is already bundled for free
func (p *Product) IsIncluded(name string) bool {
	return lo.Contains(p.Included, name)
}

// Price holds the resolved pricing of a plan phase
type Price struct {
	Currency          string              `json:"currency"`
	FixedAmount       decimal.Decimal     `json:"fixed_amount"`
	RecurringAmount   decimal.Decimal     `json:"recurring_amount"`
	BillingPeriod     types.BillingPeriod `json:"billing_period"`
	BillingPeriodUnit int                 `json:"billing_period_unit"`
}

// PlanPhase is one phase of a plan (ex trial, evergreen) with its price
type PlanPhase struct {
	Name  string `json:"name"`
	Price *Price `json:"price"`
}

// Plan is a resolved catalog plan as of a given effective date
type Plan struct {
	Name      string                      `json:"name"`
	Product   *Product                    `json:"product"`
	Phases    []*PlanPhase                `json:"phases"`
	Alignment types.BillCycleDayAlignment `json:"alignment"`

	// IsAddOn marks plans that can only exist on top of a base subscription
	IsAddOn bool `json:"is_add_on"`
}

// Phase returns the named phase, or the first phase when name is empty
func (p *Plan) Phase(name string) *PlanPhase {
	if name == "" {
		if len(p.Phases) == 0 {
			return nil
		}
		return p.Phases[0]
	}
	for _, phase := range p.Phases {
		if phase.Name == name {
			return phase
		}
	}
	return nil
}
