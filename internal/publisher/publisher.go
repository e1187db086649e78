package publisher

import (
	"context"

	"github.com/flexprice/billingcore/internal/domain/invoice"
)

// Publisher is the outbound contract for future-notification scheduling. The
// engine only computes when the next invoice run should occur; the external
// notification queue owns durability, retry and delivery.
type Publisher interface {
	// PublishNextBillingDate schedules a future re-invoicing notification
	PublishNextBillingDate(ctx context.Context, notification invoice.NextBillingNotification) error

	// Close releases the underlying transport
	Close() error
}
