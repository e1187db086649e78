package invoice

import (
	"time"

	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one line of a generated invoice: either a one-off fixed
// charge or a day-prorated recurring charge for a service period.
type InvoiceItem struct {
	ID             string                `json:"id"`
	Type           types.InvoiceItemType `json:"type"`
	SubscriptionID string                `json:"subscription_id"`
	PlanName       string                `json:"plan_name"`
	PhaseName      string                `json:"phase_name,omitempty"`

	// StartDate and EndDate delimit the service period covered by the item
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// Amount is the final rounded amount; Rate is the unprorated price the
	// amount was derived from
	Amount   decimal.Decimal `json:"amount"`
	Rate     decimal.Decimal `json:"rate"`
	Currency string          `json:"currency"`
}

func (i *InvoiceItem) Validate() error {
	if err := i.Type.Validate(); err != nil {
		return err
	}
	if i.SubscriptionID == "" {
		return ierr.NewError("subscription id is required").
			Mark(ierr.ErrValidation)
	}
	if i.Amount.IsNegative() {
		return ierr.NewError("invoice item amount cannot be negative").
			WithReportableDetails(map[string]any{
				"amount": i.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	if i.EndDate.Before(i.StartDate) {
		return ierr.NewError("invoice item end date cannot be before start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoicedPeriod records a service period already covered by a prior invoice,
// keyed by subscription and period start.
type InvoicedPeriod struct {
	SubscriptionID string    `json:"subscription_id"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
}

// NextBillingNotification is the contract handed to the notification queue:
// schedule the next invoice run for this subscription at this future time.
// Durability, retry and delivery are the external queue's concern.
type NextBillingNotification struct {
	SubscriptionID  string    `json:"subscription_id"`
	NextBillingDate time.Time `json:"next_billing_date"`
}
