package timeline

import (
	"sort"
	"time"

	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/types"
)

// Timeline is the append-only (with versioned repair) event log of one
// subscription. Active events form a total order by (effectiveDate,
// totalOrdering) and answer what plan/phase the subscription is on as of any
// date. The timeline holds no locks; the caller serializes mutations per
// account.
type Timeline struct {
	SubscriptionID string
	BundleID       string

	events       []*SubscriptionEvent
	nextOrdering int64
}

// NewTimeline creates an empty timeline for a subscription
func NewTimeline(subscriptionID, bundleID string) *Timeline {
	return &Timeline{
		SubscriptionID: subscriptionID,
		BundleID:       bundleID,
		nextOrdering:   1,
	}
}

// AddEvent validates and appends a new active event. The event's total
// ordering is assigned here; callers never set it.
func (t *Timeline) AddEvent(event *SubscriptionEvent) error {
	if event == nil {
		return ierr.NewError("event is required").
			WithHint("Cannot add a nil event to a timeline").
			Mark(ierr.ErrValidation)
	}
	if err := event.Validate(); err != nil {
		return err
	}
	if event.SubscriptionID != "" && event.SubscriptionID != t.SubscriptionID {
		return ierr.NewError("event belongs to another subscription").
			WithReportableDetails(map[string]any{
				"event_subscription_id":    event.SubscriptionID,
				"timeline_subscription_id": t.SubscriptionID,
			}).
			Mark(ierr.ErrValidation)
	}

	create := t.ActiveCreate()
	if event.Type == types.SubscriptionEventCreate {
		if create != nil {
			return ierr.WithError(ErrCreateAlreadyExists).
				WithHint("At most one creation event can be active per subscription").
				Mark(ierr.ErrAlreadyExists)
		}
	} else {
		if create == nil {
			return ierr.WithError(ErrNoActiveCreate).
				WithHintf("Cannot add a %s event before the subscription is created", event.Type).
				Mark(ierr.ErrValidation)
		}
		if event.EffectiveDate.Before(create.EffectiveDate) {
			return ierr.WithError(ErrEventBeforeCreate).
				WithReportableDetails(map[string]any{
					"effective_date": event.EffectiveDate,
					"creation_date":  create.EffectiveDate,
				}).
				Mark(ierr.ErrValidation)
		}
	}

	// A cancel terminates future billing but does not erase history. The only
	// event allowed to land after an active cancel is a future BCD_UPDATE,
	// which must not resurrect billing.
	if cancelledAt, ok := t.CancelledAt(); ok {
		if event.Type == types.SubscriptionEventCancel {
			return ierr.WithError(ErrAlreadyCancelled).
				Mark(ierr.ErrInvalidOperation)
		}
		if event.Type != types.SubscriptionEventBCDUpdate && event.EffectiveDate.After(cancelledAt) {
			return ierr.WithError(ErrEventAfterCancel).
				WithReportableDetails(map[string]any{
					"effective_date": event.EffectiveDate,
					"cancelled_at":   cancelledAt,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
	}

	if event.ID == "" {
		event.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_EVENT)
	}
	if event.SubscriptionID == "" {
		event.SubscriptionID = t.SubscriptionID
	}
	if event.BundleID == "" {
		event.BundleID = t.BundleID
	}
	if event.RequestedDate.IsZero() {
		event.RequestedDate = event.EffectiveDate
	}
	if event.CreatedAt.IsZero() {
		event.BaseModel = types.GetDefaultBaseModel()
	}
	event.TotalOrdering = t.nextOrdering
	t.nextOrdering++
	event.IsActiveVersion = true

	t.events = append(t.events, event)
	return nil
}

// ActiveEvents returns the active-version events sorted by
// (effectiveDate, totalOrdering)
func (t *Timeline) ActiveEvents() []*SubscriptionEvent {
	active := make([]*SubscriptionEvent, 0, len(t.events))
	for _, e := range t.events {
		if e.IsActiveVersion {
			active = append(active, e)
		}
	}
	sortEvents(active)
	return active
}

// AllEvents returns every event version including deactivated ones, for audit
func (t *Timeline) AllEvents() []*SubscriptionEvent {
	all := make([]*SubscriptionEvent, len(t.events))
	copy(all, t.events)
	sortEvents(all)
	return all
}

// EventsOnOrAfter returns the active events effective on or after the date
func (t *Timeline) EventsOnOrAfter(date time.Time) []*SubscriptionEvent {
	active := t.ActiveEvents()
	idx := sort.Search(len(active), func(i int) bool {
		return !active[i].EffectiveDate.Before(date)
	})
	return active[idx:]
}

// ActiveCreate returns the single active CREATE event, if any
func (t *Timeline) ActiveCreate() *SubscriptionEvent {
	for _, e := range t.events {
		if e.IsActiveVersion && e.Type == types.SubscriptionEventCreate {
			return e
		}
	}
	return nil
}

// StartDate returns the effective date of the active CREATE event
func (t *Timeline) StartDate() (time.Time, bool) {
	if create := t.ActiveCreate(); create != nil {
		return create.EffectiveDate, true
	}
	return time.Time{}, false
}

// CancelledAt returns the effective date of the active CANCEL event
func (t *Timeline) CancelledAt() (time.Time, bool) {
	for _, e := range t.events {
		if e.IsActiveVersion && e.Type == types.SubscriptionEventCancel {
			return e.EffectiveDate, true
		}
	}
	return time.Time{}, false
}

// ActivePlanAt returns the plan the subscription is on as of the given date.
// Returns empty when the subscription has not started or is cancelled by then.
func (t *Timeline) ActivePlanAt(date time.Time) string {
	plan, _ := t.activePlanPhaseAt(date)
	return plan
}

// ActivePhaseAt returns the plan phase the subscription is on as of the date
func (t *Timeline) ActivePhaseAt(date time.Time) string {
	_, phase := t.activePlanPhaseAt(date)
	return phase
}

func (t *Timeline) activePlanPhaseAt(date time.Time) (string, string) {
	var plan, phase string
	for _, e := range t.ActiveEvents() {
		if e.EffectiveDate.After(date) {
			break
		}
		switch e.Type {
		case types.SubscriptionEventCreate, types.SubscriptionEventChange, types.SubscriptionEventTransfer:
			plan = e.PlanName
			phase = e.PhaseName
		case types.SubscriptionEventPhase:
			if e.PlanName != "" {
				plan = e.PlanName
			}
			phase = e.PhaseName
		case types.SubscriptionEventCancel:
			return "", ""
		}
	}
	return plan, phase
}

// Repair atomically deactivates all active events effective on or after the
// cut-off date and inserts newEvents as the new active version. Superseded
// rows are retained for audit. On any validation failure the timeline is left
// untouched.
func (t *Timeline) Repair(cutoff time.Time, newEvents []*SubscriptionEvent) error {
	if cutoff.IsZero() {
		return ierr.NewError("repair cut-off date is required").
			Mark(ierr.ErrValidation)
	}

	savedOrdering := t.nextOrdering
	deactivated := make([]*SubscriptionEvent, 0)
	for _, e := range t.events {
		if e.IsActiveVersion && !e.EffectiveDate.Before(cutoff) {
			e.IsActiveVersion = false
			deactivated = append(deactivated, e)
		}
	}

	appended := 0
	rollback := func() {
		t.events = t.events[:len(t.events)-appended]
		for _, e := range deactivated {
			e.IsActiveVersion = true
		}
		t.nextOrdering = savedOrdering
	}

	for _, e := range newEvents {
		if e != nil && !e.EffectiveDate.IsZero() && e.EffectiveDate.Before(cutoff) {
			rollback()
			return ierr.NewError("repair event precedes cut-off date").
				WithReportableDetails(map[string]any{
					"effective_date": e.EffectiveDate,
					"cutoff":         cutoff,
				}).
				Mark(ierr.ErrValidation)
		}
		if err := t.AddEvent(e); err != nil {
			rollback()
			return err
		}
		appended++
	}

	// The repaired timeline must still have exactly one active CREATE when any
	// active events remain.
	if len(t.ActiveEvents()) > 0 && t.ActiveCreate() == nil {
		rollback()
		return ierr.WithError(ErrNoActiveCreate).
			WithHint("Repair would leave active events without a creation event").
			Mark(ierr.ErrInvalidOperation)
	}

	return nil
}

func sortEvents(events []*SubscriptionEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].EffectiveDate.Equal(events[j].EffectiveDate) {
			return events[i].EffectiveDate.Before(events[j].EffectiveDate)
		}
		return events[i].TotalOrdering < events[j].TotalOrdering
	})
}
