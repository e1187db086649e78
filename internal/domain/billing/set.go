package billing

import (
	"sort"

	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/samber/lo"
)

// BillingEventSet is the strictly ordered collection of billing events for
// one account at one point in time, plus the account-level invoicing flags.
// Insertion keeps the composite order (effectiveDate, subscriptionID,
// transitionRank); duplicates are a hard error rather than being dropped.
type BillingEventSet struct {
	AccountID string

	// AutoInvoiceOff disables invoice generation for the whole account
	AutoInvoiceOff bool

	// AutoInvoiceDraft asks the persistence layer to keep generated invoices
	// in draft instead of committing them
	AutoInvoiceDraft bool

	// AutoInvoiceReuseDraft asks the persistence layer to reuse an existing
	// draft invoice instead of opening a new one
	AutoInvoiceReuseDraft bool

	// SubscriptionIDsWithAutoInvoiceOff are per-subscription overrides
	SubscriptionIDsWithAutoInvoiceOff []string

	events []*BillingEvent
}

// NewBillingEventSet creates an empty set for an account
func NewBillingEventSet(accountID string) *BillingEventSet {
	return &BillingEventSet{AccountID: accountID}
}

// Insert places the event at its ordered position. This is a stable ordered
// insertion, not sort-then-dedupe: a duplicate (effectiveDate, subscriptionID,
// transitionType) tuple fails with ErrDuplicateBillingEvent, signaling a
// timeline corruption upstream.
func (s *BillingEventSet) Insert(event *BillingEvent) error {
	if event == nil {
		return ierr.NewError("billing event is required").
			Mark(ierr.ErrValidation)
	}
	if err := event.TransitionType.Validate(); err != nil {
		return err
	}

	idx := sort.Search(len(s.events), func(i int) bool {
		return Compare(s.events[i], event) >= 0
	})

	if idx < len(s.events) {
		existing := s.events[idx]
		if Compare(existing, event) == 0 && existing.TransitionType == event.TransitionType {
			return ierr.WithError(ErrDuplicateBillingEvent).
				WithReportableDetails(map[string]any{
					"subscription_id": event.SubscriptionID,
					"effective_date":  event.EffectiveDate,
					"transition_type": event.TransitionType,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	s.events = append(s.events, nil)
	copy(s.events[idx+1:], s.events[idx:])
	s.events[idx] = event
	return nil
}

// Events returns the ordered events. The returned slice is a copy; the set
// itself is immutable once assembled.
func (s *BillingEventSet) Events() []*BillingEvent {
	events := make([]*BillingEvent, len(s.events))
	copy(events, s.events)
	return events
}

// Len returns the number of events in the set
func (s *BillingEventSet) Len() int {
	return len(s.events)
}

// EventsForSubscription returns the ordered sub-sequence for one subscription
func (s *BillingEventSet) EventsForSubscription(subscriptionID string) []*BillingEvent {
	return lo.Filter(s.events, func(e *BillingEvent, _ int) bool {
		return e.SubscriptionID == subscriptionID
	})
}

// SubscriptionIDs returns the distinct subscription IDs in ascending order,
// the iteration order used by the invoice engine to stay deterministic
func (s *BillingEventSet) SubscriptionIDs() []string {
	ids := lo.Uniq(lo.Map(s.events, func(e *BillingEvent, _ int) string {
		return e.SubscriptionID
	}))
	sort.Strings(ids)
	return ids
}

// IsAutoInvoiceOff reports whether invoicing is disabled for the subscription,
// either account-wide or by a per-subscription override
func (s *BillingEventSet) IsAutoInvoiceOff(subscriptionID string) bool {
	if s.AutoInvoiceOff {
		return true
	}
	return lo.Contains(s.SubscriptionIDsWithAutoInvoiceOff, subscriptionID)
}
