package timeline

import (
	"context"
)

// Repository provides access to the subscription event store. The store is a
// consumed collaborator; the mutating operations on a single account are
// serialized by the caller before this core is invoked.
type Repository interface {
	// Get loads the timeline for a subscription, including deactivated versions
	Get(ctx context.Context, subscriptionID string) (*Timeline, error)

	// GetByBundle loads all timelines for the subscriptions of one bundle
	GetByBundle(ctx context.Context, bundleID string) ([]*Timeline, error)

	// Save persists the full event list of a timeline
	Save(ctx context.Context, t *Timeline) error
}
