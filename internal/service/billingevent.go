package service

import (
	"context"
	"sort"
	"time"

	"github.com/flexprice/billingcore/internal/domain/billing"
	"github.com/flexprice/billingcore/internal/domain/catalog"
	"github.com/flexprice/billingcore/internal/domain/timeline"
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/types"
	"github.com/shopspring/decimal"
)

// AssembleBillingEventsParams carries everything the assembler needs to fold
// the subscriptions of one account into a single billing event set.
type AssembleBillingEventsParams struct {
	AccountID           string
	AccountBillCycleDay int

	// BaseSubscriptionID identifies the bundle's base subscription, used for
	// BUNDLE bill cycle day alignment
	BaseSubscriptionID string

	Timelines []*timeline.Timeline

	// Account level invoicing flags carried onto the set
	AutoInvoiceOff                    bool
	AutoInvoiceDraft                  bool
	AutoInvoiceReuseDraft             bool
	SubscriptionIDsWithAutoInvoiceOff []string
}

// BillingEventService folds the subscription timelines of one account into a
// single strictly ordered billing event set. It performs no I/O itself:
// catalog and blocking-state lookups are read-only calls to injected
// collaborators.
type BillingEventService interface {
	AssembleBillingEvents(ctx context.Context, params AssembleBillingEventsParams) (*billing.BillingEventSet, error)
}

type billingEventService struct {
	ServiceParams
	bcdService BillCycleDayService
}

func NewBillingEventService(params ServiceParams) BillingEventService {
	return &billingEventService{
		ServiceParams: params,
		bcdService:    NewBillCycleDayService(params),
	}
}

func (s *billingEventService) AssembleBillingEvents(ctx context.Context, params AssembleBillingEventsParams) (*billing.BillingEventSet, error) {
	if params.AccountID == "" {
		return nil, ierr.NewError("account id is required").
			Mark(ierr.ErrValidation)
	}

	set := billing.NewBillingEventSet(params.AccountID)
	set.AutoInvoiceOff = params.AutoInvoiceOff
	set.AutoInvoiceDraft = params.AutoInvoiceDraft
	set.AutoInvoiceReuseDraft = params.AutoInvoiceReuseDraft
	set.SubscriptionIDsWithAutoInvoiceOff = params.SubscriptionIDsWithAutoInvoiceOff

	timelines := make([]*timeline.Timeline, len(params.Timelines))
	copy(timelines, params.Timelines)
	sort.Slice(timelines, func(i, j int) bool {
		return timelines[i].SubscriptionID < timelines[j].SubscriptionID
	})

	var base *timeline.Timeline
	for _, tl := range timelines {
		if tl.SubscriptionID == params.BaseSubscriptionID {
			base = tl
		}
	}

	accountIntervals, err := s.blockingIntervals(ctx, params.AccountID)
	if err != nil {
		return nil, err
	}

	for _, tl := range timelines {
		if err := s.emitSubscriptionEvents(ctx, set, tl, base, params.AccountBillCycleDay); err != nil {
			return nil, err
		}

		subIntervals, err := s.blockingIntervals(ctx, tl.SubscriptionID)
		if err != nil {
			return nil, err
		}

		// Account-level and per-subscription blocks can overlap or coincide.
		// Markers come from the union so a block never re-enables billing
		// while another interval still covers the days.
		combined := make([]billing.BlockingInterval, 0, len(accountIntervals)+len(subIntervals))
		combined = append(combined, accountIntervals...)
		combined = append(combined, subIntervals...)
		for _, interval := range billing.MergeBlockingIntervals(combined) {
			if err := s.emitDisableMarkers(ctx, set, tl, interval); err != nil {
				return nil, err
			}
		}
	}

	s.Logger.Debugw("assembled billing event set",
		"account_id", params.AccountID,
		"event_count", set.Len(),
		"subscription_count", len(timelines),
	)
	return set, nil
}

func (s *billingEventService) blockingIntervals(ctx context.Context, id string) ([]billing.BlockingInterval, error) {
	if s.BlockingStateReader == nil {
		return nil, nil
	}
	return s.BlockingStateReader.GetBlockingIntervals(ctx, id)
}

// emitSubscriptionEvents projects each active subscription event into billing
// terms, resolving prices from the catalog at the event's catalog effective
// date (the requested date, which differs from the effective date for
// migrated or backdated plans).
func (s *billingEventService) emitSubscriptionEvents(
	ctx context.Context,
	set *billing.BillingEventSet,
	tl *timeline.Timeline,
	base *timeline.Timeline,
	accountBCD int,
) error {
	var currentPlan, currentPhase string
	currentBCD := 0

	for _, event := range tl.ActiveEvents() {
		switch event.Type {
		case types.SubscriptionEventCreate, types.SubscriptionEventChange, types.SubscriptionEventTransfer:
			currentPlan = event.PlanName
			currentPhase = event.PhaseName
		case types.SubscriptionEventPhase:
			if event.PlanName != "" {
				currentPlan = event.PlanName
			}
			currentPhase = event.PhaseName
		case types.SubscriptionEventBCDUpdate:
			currentBCD = event.BillCycleDayLocal
		}

		billingEvent := &billing.BillingEvent{
			SubscriptionID:       tl.SubscriptionID,
			BundleID:             tl.BundleID,
			EffectiveDate:        event.EffectiveDate,
			TransitionType:       types.BillingTransitionTypeForEvent(event.Type),
			CatalogEffectiveDate: event.RequestedDate,
			FixedPrice:           decimal.Zero,
			RecurringPrice:       decimal.Zero,
		}

		if currentPlan != "" {
			plan, phase, err := s.resolvePlanPhase(ctx, currentPlan, currentPhase, event.RequestedDate)
			if err != nil {
				return err
			}

			billingEvent.PlanName = plan.Name
			billingEvent.PhaseName = phase.Name
			billingEvent.Currency = phase.Price.Currency
			billingEvent.BillingPeriod = phase.Price.BillingPeriod
			billingEvent.BillingPeriodUnit = phase.Price.BillingPeriodUnit

			// A cancel closes billing; it carries the plan context for the
			// period it terminates but no prices of its own.
			if event.Type != types.SubscriptionEventCancel {
				billingEvent.FixedPrice = phase.Price.FixedAmount
				billingEvent.RecurringPrice = phase.Price.RecurringAmount
			}

			bcd := currentBCD
			if bcd == 0 {
				bcd, err = s.bcdService.CalculateBillCycleDay(ctx, tl, base, plan.Alignment, accountBCD)
				if err != nil {
					return err
				}
			}
			billingEvent.BillCycleDayLocal = bcd
		}

		if err := set.Insert(billingEvent); err != nil {
			return err
		}
	}

	return nil
}

// emitDisableMarkers brackets a blocked interval with synthetic
// START_BILLING_DISABLED / END_BILLING_DISABLED markers so the proration
// engine treats it as a zero-charge gap rather than silently ignoring it.
func (s *billingEventService) emitDisableMarkers(
	ctx context.Context,
	set *billing.BillingEventSet,
	tl *timeline.Timeline,
	interval billing.BlockingInterval,
) error {
	startDate, started := tl.StartDate()
	if !started {
		return nil
	}

	markerStart := interval.Start
	if markerStart.Before(startDate) {
		markerStart = startDate
	}
	if cancelledAt, cancelled := tl.CancelledAt(); cancelled && markerStart.After(cancelledAt) {
		return nil
	}

	if err := set.Insert(s.newMarker(tl, types.BillingTransitionStartBillingDisabled, markerStart)); err != nil {
		return err
	}
	if interval.End != nil {
		if err := set.Insert(s.newMarker(tl, types.BillingTransitionEndBillingDisabled, *interval.End)); err != nil {
			return err
		}
	}
	return nil
}

func (s *billingEventService) newMarker(tl *timeline.Timeline, transition types.BillingTransitionType, at time.Time) *billing.BillingEvent {
	return &billing.BillingEvent{
		SubscriptionID:       tl.SubscriptionID,
		BundleID:             tl.BundleID,
		EffectiveDate:        at,
		TransitionType:       transition,
		PlanName:             tl.ActivePlanAt(at),
		PhaseName:            tl.ActivePhaseAt(at),
		FixedPrice:           decimal.Zero,
		RecurringPrice:       decimal.Zero,
		CatalogEffectiveDate: at,
	}
}

func (s *billingEventService) resolvePlanPhase(ctx context.Context, planName, phaseName string, at time.Time) (*catalog.Plan, *catalog.PlanPhase, error) {
	plan, err := s.Catalog.GetPlan(ctx, planName, at)
	if err != nil {
		return nil, nil, err
	}
	phase := plan.Phase(phaseName)
	if phase == nil || phase.Price == nil {
		return nil, nil, ierr.WithError(catalog.ErrPhaseNotFound).
			WithReportableDetails(map[string]any{
				"plan_name":  planName,
				"phase_name": phaseName,
				"date":       at,
			}).
			Mark(ierr.ErrNotFound)
	}
	return plan, phase, nil
}
