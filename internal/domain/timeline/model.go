package timeline

import (
	"time"

	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/types"
)

// SubscriptionEvent represents one lifecycle transition on a subscription.
// Events are never physically deleted: a repair deactivates the superseded
// range and inserts fresh active versions, keeping the full audit history.
type SubscriptionEvent struct {
	// ID is the unique identifier for the event
	ID string `db:"id" json:"id"`

	// SubscriptionID is the owning subscription; events are never shared
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`

	// BundleID groups the subscriptions billed together for one account
	BundleID string `db:"bundle_id" json:"bundle_id"`

	// Type is the lifecycle transition type
	Type types.SubscriptionEventType `db:"type" json:"type"`

	// RequestedDate is when the transition was asked for. It may precede the
	// effective date for backdated or migrated plans and is then used to
	// resolve catalog prices.
	RequestedDate time.Time `db:"requested_date" json:"requested_date"`

	// EffectiveDate is when the transition takes effect
	EffectiveDate time.Time `db:"effective_date" json:"effective_date"`

	// TotalOrdering is a monotonically increasing integer assigned at
	// insertion, used as the tie-break for events sharing an effective date
	TotalOrdering int64 `db:"total_ordering" json:"total_ordering"`

	// IsActiveVersion is false once the event has been superseded by a repair
	IsActiveVersion bool `db:"is_active_version" json:"is_active_version"`

	// PlanName is set for CREATE, CHANGE, TRANSFER and PHASE events
	PlanName string `db:"plan_name" json:"plan_name,omitempty"`

	// PhaseName is set when the event pins a specific plan phase
	PhaseName string `db:"phase_name" json:"phase_name,omitempty"`

	// BillCycleDayLocal is only set for BCD_UPDATE events (1-31)
	BillCycleDayLocal int `db:"bill_cycle_day_local" json:"bill_cycle_day_local,omitempty"`

	types.BaseModel
}

func (e *SubscriptionEvent) Validate() error {
	if err := e.Type.Validate(); err != nil {
		return err
	}
	if e.EffectiveDate.IsZero() {
		return ierr.NewError("effective date is required").
			WithHint("Subscription event must have an effective date").
			Mark(ierr.ErrValidation)
	}

	switch e.Type {
	case types.SubscriptionEventCreate, types.SubscriptionEventChange, types.SubscriptionEventTransfer:
		if e.PlanName == "" {
			return ierr.NewError("plan name is required").
				WithHintf("Plan name is required for %s events", e.Type).
				Mark(ierr.ErrValidation)
		}
	case types.SubscriptionEventBCDUpdate:
		if e.BillCycleDayLocal < 1 || e.BillCycleDayLocal > 31 {
			return ierr.NewError("invalid bill cycle day").
				WithHint("Bill cycle day must be between 1 and 31").
				WithReportableDetails(map[string]any{
					"bill_cycle_day": e.BillCycleDayLocal,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}
