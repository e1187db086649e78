package types

import (
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/samber/lo"
)

// BillingTransitionType mirrors the subscription event types on the derived
// billing event stream, plus the synthetic markers that bracket intervals
// where billing is blocked.
type BillingTransitionType string

const (
	BillingTransitionStartBillingDisabled BillingTransitionType = "START_BILLING_DISABLED"
	BillingTransitionCreate               BillingTransitionType = "CREATE"
	BillingTransitionTransfer             BillingTransitionType = "TRANSFER"
	BillingTransitionChange               BillingTransitionType = "CHANGE"
	BillingTransitionPhase                BillingTransitionType = "PHASE"
	BillingTransitionBCDUpdate            BillingTransitionType = "BCD_UPDATE"
	BillingTransitionCancel               BillingTransitionType = "CANCEL"
	BillingTransitionEndBillingDisabled   BillingTransitionType = "END_BILLING_DISABLED"
)

var BillingTransitionTypeValues = []BillingTransitionType{
	BillingTransitionStartBillingDisabled,
	BillingTransitionCreate,
	BillingTransitionTransfer,
	BillingTransitionChange,
	BillingTransitionPhase,
	BillingTransitionBCDUpdate,
	BillingTransitionCancel,
	BillingTransitionEndBillingDisabled,
}

// transitionRanks fixes the tie-break order for billing events sharing an
// effective date and subscription. Disable markers must close a period before
// a CREATE opens one, and enable markers must come last so a re-enabled
// period opens after every same-instant plan change.
var transitionRanks = map[BillingTransitionType]int{
	BillingTransitionStartBillingDisabled: 0,
	BillingTransitionCreate:               1,
	BillingTransitionTransfer:             2,
	BillingTransitionChange:               3,
	BillingTransitionPhase:                4,
	BillingTransitionBCDUpdate:            5,
	BillingTransitionCancel:               6,
	BillingTransitionEndBillingDisabled:   7,
}

func (t BillingTransitionType) String() string {
	return string(t)
}

// Rank returns the tie-break rank of the transition type within a single
// effective date and subscription.
func (t BillingTransitionType) Rank() int {
	if rank, ok := transitionRanks[t]; ok {
		return rank
	}
	return len(transitionRanks)
}

// IsDisableMarker reports whether the transition is a synthetic blocking marker
func (t BillingTransitionType) IsDisableMarker() bool {
	return t == BillingTransitionStartBillingDisabled || t == BillingTransitionEndBillingDisabled
}

func (t BillingTransitionType) Validate() error {
	if !lo.Contains(BillingTransitionTypeValues, t) {
		return ierr.NewError("invalid billing transition type").
			WithHint("Invalid billing transition type").
			WithReportableDetails(map[string]any{
				"type":           t,
				"allowed_values": BillingTransitionTypeValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingTransitionTypeForEvent maps a subscription event type to its billing
// transition counterpart.
func BillingTransitionTypeForEvent(t SubscriptionEventType) BillingTransitionType {
	switch t {
	case SubscriptionEventCreate:
		return BillingTransitionCreate
	case SubscriptionEventChange:
		return BillingTransitionChange
	case SubscriptionEventCancel:
		return BillingTransitionCancel
	case SubscriptionEventPhase:
		return BillingTransitionPhase
	case SubscriptionEventBCDUpdate:
		return BillingTransitionBCDUpdate
	case SubscriptionEventTransfer:
		return BillingTransitionTransfer
	default:
		return ""
	}
}
