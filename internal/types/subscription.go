package types

import (
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionEventType identifies one lifecycle transition on a
// subscription's event timeline.
type SubscriptionEventType string

const (
	SubscriptionEventCreate    SubscriptionEventType = "CREATE"
	SubscriptionEventChange    SubscriptionEventType = "CHANGE"
	SubscriptionEventCancel    SubscriptionEventType = "CANCEL"
	SubscriptionEventPhase     SubscriptionEventType = "PHASE"
	SubscriptionEventBCDUpdate SubscriptionEventType = "BCD_UPDATE"
	SubscriptionEventTransfer  SubscriptionEventType = "TRANSFER"
)

var SubscriptionEventTypeValues = []SubscriptionEventType{
	SubscriptionEventCreate,
	SubscriptionEventChange,
	SubscriptionEventCancel,
	SubscriptionEventPhase,
	SubscriptionEventBCDUpdate,
	SubscriptionEventTransfer,
}

func (t SubscriptionEventType) String() string {
	return string(t)
}

func (t SubscriptionEventType) Validate() error {
	if !lo.Contains(SubscriptionEventTypeValues, t) {
		return ierr.NewError("invalid subscription event type").
			WithHint("Invalid subscription event type").
			WithReportableDetails(map[string]any{
				"type":           t,
				"allowed_values": SubscriptionEventTypeValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillCycleDayAlignment determines how the bill cycle day for a
// subscription is derived.
type BillCycleDayAlignment string

const (
	// BillCycleDayAlignmentAccount anchors billing on the account level BCD
	BillCycleDayAlignmentAccount BillCycleDayAlignment = "ACCOUNT"

	// BillCycleDayAlignmentBundle anchors billing on the bundle's base subscription
	BillCycleDayAlignmentBundle BillCycleDayAlignment = "BUNDLE"

	// BillCycleDayAlignmentSubscription derives billing from the subscription's
	// own first non-zero recurring charge date
	BillCycleDayAlignmentSubscription BillCycleDayAlignment = "SUBSCRIPTION"
)

var BillCycleDayAlignmentValues = []BillCycleDayAlignment{
	BillCycleDayAlignmentAccount,
	BillCycleDayAlignmentBundle,
	BillCycleDayAlignmentSubscription,
}

func (a BillCycleDayAlignment) String() string {
	return string(a)
}

func (a BillCycleDayAlignment) Validate() error {
	if !lo.Contains(BillCycleDayAlignmentValues, a) {
		return ierr.NewError("invalid bill cycle day alignment").
			WithHint("Bill cycle day alignment must be ACCOUNT, BUNDLE or SUBSCRIPTION").
			WithReportableDetails(map[string]any{
				"alignment":      a,
				"allowed_values": BillCycleDayAlignmentValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
