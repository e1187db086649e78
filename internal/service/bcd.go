package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flexprice/billingcore/internal/cache"
	"github.com/flexprice/billingcore/internal/domain/timeline"
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/types"
)

// BillCycleDayService computes the day of month (1-31) anchoring recurring
// invoice periods for a subscription under an alignment policy.
type BillCycleDayService interface {
	// CalculateBillCycleDay derives the BCD for a subscription. base is the
	// bundle's base subscription, required for BUNDLE alignment. accountBCD
	// is the account level BCD, required for ACCOUNT alignment.
	CalculateBillCycleDay(ctx context.Context, sub *timeline.Timeline, base *timeline.Timeline, alignment types.BillCycleDayAlignment, accountBCD int) (int, error)

	// AlignProposedBillingDate aligns a proposed billing date with the BCD for
	// month-based periods; it never moves a date earlier, only forward within
	// the same month, so invoice period boundaries never recompute backward.
	AlignProposedBillingDate(proposed time.Time, bcd int, period types.BillingPeriod) time.Time
}

type billCycleDayService struct {
	ServiceParams

	// passCache memoizes derived BCDs for the lifetime of one computation
	// pass. Catalog and price data are immutable for a given effective date,
	// so the derivation cannot change within a pass.
	passCache cache.Cache
}

// NewBillCycleDayService creates a calculator with a fresh pass cache
func NewBillCycleDayService(params ServiceParams) BillCycleDayService {
	return &billCycleDayService{
		ServiceParams: params,
		passCache:     cache.NewInMemoryCache(),
	}
}

func (s *billCycleDayService) CalculateBillCycleDay(
	ctx context.Context,
	sub *timeline.Timeline,
	base *timeline.Timeline,
	alignment types.BillCycleDayAlignment,
	accountBCD int,
) (int, error) {
	if err := alignment.Validate(); err != nil {
		return 0, err
	}
	if sub == nil {
		return 0, ierr.NewError("subscription timeline is required").
			Mark(ierr.ErrValidation)
	}

	cacheKey := fmt.Sprintf("%s%s:%s", cache.PrefixBillCycleDay, sub.SubscriptionID, alignment)
	if cached, ok := s.passCache.Get(ctx, cacheKey); ok {
		return cached.(int), nil
	}

	var bcd int
	var err error
	switch alignment {
	case types.BillCycleDayAlignmentAccount:
		// Callers must guarantee the account BCD is established before
		// subscription billing starts; reaching this point without one is a
		// programming error, not a recoverable condition.
		if accountBCD <= 0 {
			return 0, ierr.NewError("account bill cycle day is not set").
				WithHintf("Account BCD must be established before billing starts for subscription %s", sub.SubscriptionID).
				Mark(ierr.ErrSystem)
		}
		bcd = accountBCD
	case types.BillCycleDayAlignmentBundle:
		if base == nil {
			return 0, ierr.NewError("base subscription is required for bundle alignment").
				WithReportableDetails(map[string]any{
					"subscription_id": sub.SubscriptionID,
				}).
				Mark(ierr.ErrValidation)
		}
		bcd, err = s.CalculateBillCycleDay(ctx, base, nil, types.BillCycleDayAlignmentSubscription, accountBCD)
	case types.BillCycleDayAlignmentSubscription:
		bcd, err = s.deriveFromFirstRecurringCharge(ctx, sub)
	}
	if err != nil {
		return 0, err
	}

	s.passCache.Set(ctx, cacheKey, bcd, 0)
	return bcd, nil
}

// deriveFromFirstRecurringCharge finds the first active event whose resolved
// plan phase carries a non-zero recurring price and returns its day of month.
func (s *billCycleDayService) deriveFromFirstRecurringCharge(ctx context.Context, sub *timeline.Timeline) (int, error) {
	var currentPlan, currentPhase string
	for _, event := range sub.ActiveEvents() {
		switch event.Type {
		case types.SubscriptionEventCreate, types.SubscriptionEventChange, types.SubscriptionEventTransfer:
			currentPlan = event.PlanName
			currentPhase = event.PhaseName
		case types.SubscriptionEventPhase:
			if event.PlanName != "" {
				currentPlan = event.PlanName
			}
			currentPhase = event.PhaseName
		case types.SubscriptionEventCancel:
			currentPlan = ""
		}
		if currentPlan == "" {
			continue
		}

		plan, err := s.Catalog.GetPlan(ctx, currentPlan, event.RequestedDate)
		if err != nil {
			return 0, err
		}
		phase := plan.Phase(currentPhase)
		if phase == nil || phase.Price == nil {
			continue
		}
		if phase.Price.RecurringAmount.IsPositive() {
			return event.EffectiveDate.Day(), nil
		}
	}

	return 0, ierr.NewError("no recurring charge found for subscription").
		WithHintf("Cannot derive a bill cycle day for subscription %s without a recurring charge", sub.SubscriptionID).
		Mark(ierr.ErrInvalidOperation)
}

func (s *billCycleDayService) AlignProposedBillingDate(proposed time.Time, bcd int, period types.BillingPeriod) time.Time {
	return types.AlignBillingDate(proposed, bcd, period)
}
