package billing

import (
	"time"

	"github.com/flexprice/billingcore/internal/types"
	"github.com/shopspring/decimal"
)

// BillingEvent is a derived, read-only projection of one qualifying
// subscription event into billing terms. Billing events are recomputed on
// demand from the active subscription events and never persisted
// independently; they are a view, not a store of record.
type BillingEvent struct {
	SubscriptionID string                      `json:"subscription_id"`
	BundleID       string                      `json:"bundle_id"`
	EffectiveDate  time.Time                   `json:"effective_date"`
	TransitionType types.BillingTransitionType `json:"transition_type"`

	PlanName  string `json:"plan_name,omitempty"`
	PhaseName string `json:"phase_name,omitempty"`

	FixedPrice        decimal.Decimal     `json:"fixed_price"`
	RecurringPrice    decimal.Decimal     `json:"recurring_price"`
	Currency          string              `json:"currency"`
	BillingPeriod     types.BillingPeriod `json:"billing_period"`
	BillingPeriodUnit int                 `json:"billing_period_unit"`

	BillCycleDayLocal int `json:"bill_cycle_day_local"`

	// CatalogEffectiveDate is the date used to resolve prices. It may differ
	// from EffectiveDate for migrated or backdated plans.
	CatalogEffectiveDate time.Time `json:"catalog_effective_date"`
}

// Compare imposes the total order on billing events: effective date first,
// ties broken by subscription ID, further ties by transition rank. The rank
// places disable markers before CREATE, CREATE before CHANGE and enable
// markers last, which determines whether an event opens or closes a billing
// period. Returns -1, 0 or +1.
func Compare(a, b *BillingEvent) int {
	if a.EffectiveDate.Before(b.EffectiveDate) {
		return -1
	}
	if a.EffectiveDate.After(b.EffectiveDate) {
		return 1
	}
	if a.SubscriptionID != b.SubscriptionID {
		if a.SubscriptionID < b.SubscriptionID {
			return -1
		}
		return 1
	}
	ra, rb := a.TransitionType.Rank(), b.TransitionType.Rank()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}
