package service

import (
	"context"
	"time"

	"github.com/flexprice/billingcore/internal/domain/billing"
	"github.com/flexprice/billingcore/internal/domain/invoice"
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceRunResult is the outcome of one invoice run for one account. The
// result is complete or the run failed; partial invoices are never returned.
type InvoiceRunResult struct {
	// RunID is a short human-readable identifier correlating the run's items,
	// notifications and log lines
	RunID string

	AccountID     string
	Items         []*invoice.InvoiceItem
	Notifications []invoice.NextBillingNotification

	// Draft and ReuseDraft carry the account's auto-invoicing flags through
	// to the persistence collaborator
	Draft      bool
	ReuseDraft bool
}

// InvoiceService converts a billing event set plus a target date into invoice
// items, with day-based proration, a safety bound and idempotence against
// already-invoiced periods. For a fixed set and target date the output is
// deterministic, byte for byte.
type InvoiceService interface {
	// GenerateInvoiceItems walks each subscription's ordered billing events up
	// to the target date and produces the prorated items not yet invoiced
	GenerateInvoiceItems(ctx context.Context, set *billing.BillingEventSet, targetDate time.Time) (*InvoiceRunResult, error)

	// PersistResult hands the finished items to the persistence collaborator
	PersistResult(ctx context.Context, result *InvoiceRunResult) error

	// PublishNotifications schedules the next candidate billing dates on the
	// notification queue
	PublishNotifications(ctx context.Context, result *InvoiceRunResult) error
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

// billingState is the per-subscription state machine driven purely by the
// ordered billing event sequence during an invoice pass.
type billingState int

const (
	stateBeforeCreate billingState = iota
	stateActiveBilling
	stateDisabled
	stateCancelled
)

// invoiceRun tracks the safety bound across one whole run
type invoiceRun struct {
	itemCount int
	maxItems  int
}

func (r *invoiceRun) countItem() error {
	r.itemCount++
	if r.itemCount > r.maxItems {
		return ierr.WithError(invoice.ErrSafetyBoundExceeded).
			WithHintf("Invoice run would emit more than %d items; aborting instead of truncating", r.maxItems).
			WithReportableDetails(map[string]any{
				"max_daily_number_of_items": r.maxItems,
			}).
			Mark(ierr.ErrSafetyBound)
	}
	return nil
}

func (s *invoiceService) GenerateInvoiceItems(ctx context.Context, set *billing.BillingEventSet, targetDate time.Time) (*InvoiceRunResult, error) {
	if set == nil {
		return nil, ierr.NewError("billing event set is required").
			Mark(ierr.ErrValidation)
	}
	if targetDate.IsZero() {
		return nil, ierr.NewError("target date is required").
			Mark(ierr.ErrValidation)
	}

	result := &InvoiceRunResult{
		RunID:      types.GenerateShortIDWithPrefix("ir_"),
		AccountID:  set.AccountID,
		Draft:      set.AutoInvoiceDraft,
		ReuseDraft: set.AutoInvoiceReuseDraft,
	}

	if set.AutoInvoiceOff {
		s.Logger.Infow("auto invoice off for account, nothing to invoice",
			"account_id", set.AccountID)
		return result, nil
	}

	run := &invoiceRun{maxItems: s.Config.Invoice.MaxDailyNumberOfItems}

	// Subscriptions are walked in ascending ID order so re-runs produce the
	// same output for the same inputs.
	for _, subscriptionID := range set.SubscriptionIDs() {
		if set.IsAutoInvoiceOff(subscriptionID) {
			s.Logger.Debugw("auto invoice off for subscription, skipping",
				"subscription_id", subscriptionID)
			continue
		}

		items, notification, err := s.invoiceSubscription(ctx, run, subscriptionID, set.EventsForSubscription(subscriptionID), targetDate)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, items...)
		if notification != nil {
			result.Notifications = append(result.Notifications, *notification)
		}
	}

	s.Logger.Infow("invoice run complete",
		"run_id", result.RunID,
		"account_id", set.AccountID,
		"target_date", targetDate,
		"item_count", len(result.Items),
		"notification_count", len(result.Notifications),
	)
	return result, nil
}

// invoiceSubscription walks the consecutive pairs (event, next event or
// target date) of one subscription's ordered events, forming candidate
// periods priced by the event that opens them.
func (s *invoiceService) invoiceSubscription(
	ctx context.Context,
	run *invoiceRun,
	subscriptionID string,
	events []*billing.BillingEvent,
	targetDate time.Time,
) ([]*invoice.InvoiceItem, *invoice.NextBillingNotification, error) {
	state := stateBeforeCreate
	var current *billing.BillingEvent
	var items []*invoice.InvoiceItem

	for i, event := range events {
		if !event.EffectiveDate.Before(targetDate) {
			break
		}

		switch event.TransitionType {
		case types.BillingTransitionCreate, types.BillingTransitionTransfer:
			state = stateActiveBilling
			current = event
		case types.BillingTransitionChange, types.BillingTransitionPhase, types.BillingTransitionBCDUpdate:
			if state == stateBeforeCreate {
				continue
			}
			current = event
		case types.BillingTransitionStartBillingDisabled:
			if state == stateActiveBilling {
				state = stateDisabled
			}
			continue
		case types.BillingTransitionEndBillingDisabled:
			if state == stateDisabled {
				state = stateActiveBilling
			}
		case types.BillingTransitionCancel:
			state = stateCancelled
		}

		if state == stateCancelled {
			break
		}
		if state != stateActiveBilling || current == nil {
			continue
		}

		periodStart := event.EffectiveDate
		periodEnd := targetDate
		if i+1 < len(events) && events[i+1].EffectiveDate.Before(targetDate) {
			periodEnd = events[i+1].EffectiveDate
		}

		if s.emitsFixedCharge(event) {
			item, err := s.fixedItem(ctx, run, event)
			if err != nil {
				return nil, nil, err
			}
			if item != nil {
				items = append(items, item)
			}
		}

		if current.RecurringPrice.IsPositive() && periodEnd.After(periodStart) {
			recurring, err := s.recurringItems(ctx, run, current, periodStart, periodEnd)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, recurring...)
		}
	}

	var notification *invoice.NextBillingNotification
	if state != stateCancelled && current != nil && current.RecurringPrice.IsPositive() {
		notification = &invoice.NextBillingNotification{
			SubscriptionID:  subscriptionID,
			NextBillingDate: s.nextBoundaryAfter(current, targetDate),
		}
	}

	return items, notification, nil
}

// emitsFixedCharge reports whether the event itself carries a one-off fixed
// charge. Fixed items are emitted once per qualifying event, unprorated.
func (s *invoiceService) emitsFixedCharge(event *billing.BillingEvent) bool {
	switch event.TransitionType {
	case types.BillingTransitionCreate, types.BillingTransitionTransfer,
		types.BillingTransitionChange, types.BillingTransitionPhase:
		return event.FixedPrice.IsPositive()
	default:
		return false
	}
}

func (s *invoiceService) fixedItem(ctx context.Context, run *invoiceRun, event *billing.BillingEvent) (*invoice.InvoiceItem, error) {
	prior, err := s.invoicedPeriod(ctx, event.SubscriptionID, event.EffectiveDate)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return nil, nil
	}

	if err := run.countItem(); err != nil {
		return nil, err
	}

	return &invoice.InvoiceItem{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_ITEM),
		Type:           types.InvoiceItemTypeFixed,
		SubscriptionID: event.SubscriptionID,
		PlanName:       event.PlanName,
		PhaseName:      event.PhaseName,
		StartDate:      event.EffectiveDate,
		EndDate:        event.EffectiveDate,
		Amount:         types.RoundToCurrencyScale(event.FixedPrice, s.currency(event)),
		Rate:           event.FixedPrice,
		Currency:       s.currency(event),
	}, nil
}

// recurringItems prorates the stretch [from, to) of one pricing context over
// the nominal billing cycles anchored at the bill cycle day. The day count of
// a full cycle varies by month, which is why proration is day-based rather
// than a fixed fraction. The division runs at full decimal precision and the
// amount is rounded exactly once at the end.
func (s *invoiceService) recurringItems(
	ctx context.Context,
	run *invoiceRun,
	current *billing.BillingEvent,
	from, to time.Time,
) ([]*invoice.InvoiceItem, error) {
	unit := current.BillingPeriodUnit
	if unit <= 0 {
		unit = 1
	}
	period := current.BillingPeriod

	cycle := newCycleWalker(current.EffectiveDate, from, current.BillCycleDayLocal, period, unit)
	var items []*invoice.InvoiceItem

	for cycleStart := cycle.current(); cycleStart.Before(to); cycleStart = cycle.current() {
		cycleEnd := cycle.advance()

		overlapStart := maxTime(cycleStart, from)
		overlapEnd := minTime(cycleEnd, to)
		if !overlapEnd.After(overlapStart) {
			continue
		}

		// Idempotence: periods fully covered by a prior invoice are skipped;
		// a period whose boundary moved (after a repair) emits only the delta.
		prior, err := s.invoicedPeriod(ctx, current.SubscriptionID, overlapStart)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			if !prior.PeriodEnd.Before(overlapEnd) {
				continue
			}
			overlapStart = prior.PeriodEnd
		}

		coveredDays := types.DaysBetween(overlapStart, overlapEnd)
		fullDays := types.DaysBetween(cycleStart, cycleEnd)
		if coveredDays == 0 || fullDays == 0 {
			continue
		}

		if err := run.countItem(); err != nil {
			return nil, err
		}

		fraction := decimal.NewFromInt(int64(coveredDays)).Div(decimal.NewFromInt(int64(fullDays)))
		amount := types.RoundToCurrencyScale(current.RecurringPrice.Mul(fraction), s.currency(current))

		items = append(items, &invoice.InvoiceItem{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_ITEM),
			Type:           types.InvoiceItemTypeRecurring,
			SubscriptionID: current.SubscriptionID,
			PlanName:       current.PlanName,
			PhaseName:      current.PhaseName,
			StartDate:      overlapStart,
			EndDate:        overlapEnd,
			Amount:         amount,
			Rate:           current.RecurringPrice,
			Currency:       s.currency(current),
		})
	}

	return items, nil
}

// nextBoundaryAfter returns the first nominal cycle boundary strictly after
// the given date for the subscription's current pricing context.
func (s *invoiceService) nextBoundaryAfter(current *billing.BillingEvent, after time.Time) time.Time {
	unit := current.BillingPeriodUnit
	if unit <= 0 {
		unit = 1
	}

	cycle := newCycleWalker(current.EffectiveDate, after, current.BillCycleDayLocal, current.BillingPeriod, unit)
	boundary := cycle.current()
	for !boundary.After(after) {
		boundary = cycle.advance()
	}
	return boundary
}

func (s *invoiceService) invoicedPeriod(ctx context.Context, subscriptionID string, periodStart time.Time) (*invoice.InvoicedPeriod, error) {
	if s.InvoicedPeriodIndex == nil {
		return nil, nil
	}
	return s.InvoicedPeriodIndex.GetInvoicedPeriod(ctx, subscriptionID, periodStart)
}

func (s *invoiceService) currency(event *billing.BillingEvent) string {
	if event.Currency != "" {
		return event.Currency
	}
	return s.Config.Invoice.DefaultCurrency
}

func (s *invoiceService) PersistResult(ctx context.Context, result *InvoiceRunResult) error {
	if result == nil || len(result.Items) == 0 {
		return nil
	}
	if s.ItemSink == nil {
		return ierr.NewError("item sink is not configured").
			Mark(ierr.ErrSystem)
	}
	for _, item := range result.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return s.ItemSink.SaveItems(ctx, result.Items)
}

func (s *invoiceService) PublishNotifications(ctx context.Context, result *InvoiceRunResult) error {
	if result == nil || len(result.Notifications) == 0 {
		return nil
	}
	if s.Publisher == nil {
		return ierr.NewError("notification publisher is not configured").
			Mark(ierr.ErrSystem)
	}
	for _, notification := range result.Notifications {
		if err := s.Publisher.PublishNextBillingDate(ctx, notification); err != nil {
			return err
		}
	}
	return nil
}

// cycleWalker iterates nominal billing cycle boundaries. The cycle grid is
// fixed by the pricing event's anchor date; the walker is then positioned on
// the cycle containing the stretch start, so a resume after a disabled gap
// stays on the subscription's nominal boundaries instead of re-anchoring on
// the resume month. Month-based cycles track the anchor month as a pair of
// integers so a clamped bill cycle day (31 in February) never drifts.
type cycleWalker struct {
	monthBased bool
	bcd        int
	months     int
	stepDays   int

	year     int
	month    time.Month
	boundary time.Time
}

func newCycleWalker(anchor, from time.Time, bcd int, period types.BillingPeriod, unit int) *cycleWalker {
	w := &cycleWalker{monthBased: period.IsMonthBased()}

	if w.monthBased {
		w.bcd = bcd
		if w.bcd <= 0 {
			w.bcd = anchor.Day()
		}
		w.months = period.Months() * unit
		w.year, w.month = anchor.Year(), anchor.Month()
		w.boundary = types.BillCycleDate(w.year, w.month, w.bcd, time.UTC)
		for w.boundary.After(anchor) {
			w.year, w.month = types.AddMonths(w.year, w.month, -w.months)
			w.boundary = types.BillCycleDate(w.year, w.month, w.bcd, time.UTC)
		}
		for {
			nextYear, nextMonth := types.AddMonths(w.year, w.month, w.months)
			next := types.BillCycleDate(nextYear, nextMonth, w.bcd, time.UTC)
			if next.After(from) {
				break
			}
			w.year, w.month, w.boundary = nextYear, nextMonth, next
		}
		return w
	}

	w.stepDays = period.Days() * unit
	if w.stepDays <= 0 {
		w.stepDays = 1
	}
	w.boundary = toDay(anchor)
	for {
		next := w.boundary.AddDate(0, 0, w.stepDays)
		if next.After(from) {
			break
		}
		w.boundary = next
	}
	return w
}

func (w *cycleWalker) current() time.Time {
	return w.boundary
}

func (w *cycleWalker) advance() time.Time {
	if w.monthBased {
		w.year, w.month = types.AddMonths(w.year, w.month, w.months)
		w.boundary = types.BillCycleDate(w.year, w.month, w.bcd, time.UTC)
	} else {
		w.boundary = w.boundary.AddDate(0, 0, w.stepDays)
	}
	return w.boundary
}

func toDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
