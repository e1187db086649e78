package types

import (
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/samber/lo"
)

// InvoiceItemType classifies an invoice item produced by an invoice run
type InvoiceItemType string

const (
	// InvoiceItemTypeFixed is a one-off fixed charge, never prorated
	InvoiceItemTypeFixed InvoiceItemType = "FIXED"

	// InvoiceItemTypeRecurring is a recurring charge prorated by days covered
	InvoiceItemTypeRecurring InvoiceItemType = "RECURRING"
)

var InvoiceItemTypeValues = []InvoiceItemType{
	InvoiceItemTypeFixed,
	InvoiceItemTypeRecurring,
}

func (t InvoiceItemType) String() string {
	return string(t)
}

func (t InvoiceItemType) Validate() error {
	if !lo.Contains(InvoiceItemTypeValues, t) {
		return ierr.NewError("invalid invoice item type").
			WithHint("Invoice item type must be FIXED or RECURRING").
			WithReportableDetails(map[string]any{
				"type":           t,
				"allowed_values": InvoiceItemTypeValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
