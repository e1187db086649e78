package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/flexprice/billingcore/internal/domain/timeline"
	ierr "github.com/flexprice/billingcore/internal/errors"
)

// InMemoryTimelineStore is an in-memory implementation of the
// timeline.Repository interface
type InMemoryTimelineStore struct {
	mu        sync.Mutex
	timelines map[string]*timeline.Timeline
}

// NewInMemoryTimelineStore creates a new instance of InMemoryTimelineStore
func NewInMemoryTimelineStore() *InMemoryTimelineStore {
	return &InMemoryTimelineStore{
		timelines: make(map[string]*timeline.Timeline),
	}
}

// Get loads the timeline for a subscription
func (s *InMemoryTimelineStore) Get(ctx context.Context, subscriptionID string) (*timeline.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timelines[subscriptionID]
	if !ok {
		return nil, ierr.NewError("timeline not found").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return t, nil
}

// GetByBundle loads all timelines for the subscriptions of one bundle,
// sorted by subscription ID
func (s *InMemoryTimelineStore) GetByBundle(ctx context.Context, bundleID string) ([]*timeline.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var timelines []*timeline.Timeline
	for _, t := range s.timelines {
		if t.BundleID == bundleID {
			timelines = append(timelines, t)
		}
	}
	sort.Slice(timelines, func(i, j int) bool {
		return timelines[i].SubscriptionID < timelines[j].SubscriptionID
	})
	return timelines, nil
}

// Save persists the timeline
func (s *InMemoryTimelineStore) Save(ctx context.Context, t *timeline.Timeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timelines[t.SubscriptionID] = t
	return nil
}

// Clear removes all timelines from the store
func (s *InMemoryTimelineStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timelines = make(map[string]*timeline.Timeline)
}
