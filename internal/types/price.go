package types

import (
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/samber/lo"
)

// BillingPeriod is the billing period for a price ex MONTHLY, ANNUAL, WEEKLY
type BillingPeriod string

// PriceType differentiates one-off fixed charges from recurring charges
type PriceType string

const (
	BILLING_PERIOD_DAILY     BillingPeriod = "DAILY"
	BILLING_PERIOD_WEEKLY    BillingPeriod = "WEEKLY"
	BILLING_PERIOD_MONTHLY   BillingPeriod = "MONTHLY"
	BILLING_PERIOD_QUARTER   BillingPeriod = "QUARTER"
	BILLING_PERIOD_HALF_YEAR BillingPeriod = "HALF_YEAR"
	BILLING_PERIOD_ANNUAL    BillingPeriod = "ANNUAL"

	PRICE_TYPE_FIXED     PriceType = "FIXED"
	PRICE_TYPE_RECURRING PriceType = "RECURRING"

	// MAX_BILLING_AMOUNT is the maximum allowed billing amount (as a safeguard)
	MAX_BILLING_AMOUNT = 1000000000000 // 1 trillion

	// DEFAULT_FLOATING_PRECISION is the default display scale for amounts
	DEFAULT_FLOATING_PRECISION = 2
)

var BillingPeriodValues = []BillingPeriod{
	BILLING_PERIOD_DAILY,
	BILLING_PERIOD_WEEKLY,
	BILLING_PERIOD_MONTHLY,
	BILLING_PERIOD_QUARTER,
	BILLING_PERIOD_HALF_YEAR,
	BILLING_PERIOD_ANNUAL,
}

func (p BillingPeriod) String() string {
	return string(p)
}

// IsMonthBased reports whether the period is anchored on a day of month.
// Weekly and daily periods ignore the bill cycle day entirely.
func (p BillingPeriod) IsMonthBased() bool {
	switch p {
	case BILLING_PERIOD_MONTHLY, BILLING_PERIOD_QUARTER, BILLING_PERIOD_HALF_YEAR, BILLING_PERIOD_ANNUAL:
		return true
	default:
		return false
	}
}

// Months returns the number of months in one period for month based periods
// and 0 otherwise.
func (p BillingPeriod) Months() int {
	switch p {
	case BILLING_PERIOD_MONTHLY:
		return 1
	case BILLING_PERIOD_QUARTER:
		return 3
	case BILLING_PERIOD_HALF_YEAR:
		return 6
	case BILLING_PERIOD_ANNUAL:
		return 12
	default:
		return 0
	}
}

// Days returns the number of days in one period for day based periods
// and 0 otherwise.
func (p BillingPeriod) Days() int {
	switch p {
	case BILLING_PERIOD_DAILY:
		return 1
	case BILLING_PERIOD_WEEKLY:
		return 7
	default:
		return 0
	}
}

func (p BillingPeriod) Validate() error {
	if !lo.Contains(BillingPeriodValues, p) {
		return ierr.NewError("invalid billing period").
			WithHint("Invalid billing period").
			WithReportableDetails(map[string]any{
				"billing_period": p,
				"allowed_values": BillingPeriodValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

var PriceTypeValues = []PriceType{
	PRICE_TYPE_FIXED,
	PRICE_TYPE_RECURRING,
}

func (t PriceType) String() string {
	return string(t)
}

func (t PriceType) Validate() error {
	if !lo.Contains(PriceTypeValues, t) {
		return ierr.NewError("invalid price type").
			WithHint("Price type must be FIXED or RECURRING").
			WithReportableDetails(map[string]any{
				"price_type":     t,
				"allowed_values": PriceTypeValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
