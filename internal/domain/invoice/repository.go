package invoice

import (
	"context"
	"time"
)

// InvoicedPeriodIndex is the consumed "already invoiced periods" index. The
// engine consults it before emitting an item so re-running proration for an
// already-fully-invoiced period is a no-op.
type InvoicedPeriodIndex interface {
	// GetInvoicedPeriod returns the covered period starting at periodStart for
	// the subscription, if one was previously invoiced
	GetInvoicedPeriod(ctx context.Context, subscriptionID string, periodStart time.Time) (*InvoicedPeriod, error)
}

// ItemSink is the persistence collaborator that accepts a finished list of
// invoice items. The core does not define the storage schema.
type ItemSink interface {
	SaveItems(ctx context.Context, items []*InvoiceItem) error
}
