package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/billingcore/internal/domain/billing"
)

// InMemoryBlockingStore is an in-memory implementation of the
// billing.BlockingStateReader interface
type InMemoryBlockingStore struct {
	mu        sync.Mutex
	intervals map[string][]billing.BlockingInterval
}

// NewInMemoryBlockingStore creates a new instance of InMemoryBlockingStore
func NewInMemoryBlockingStore() *InMemoryBlockingStore {
	return &InMemoryBlockingStore{
		intervals: make(map[string][]billing.BlockingInterval),
	}
}

// AddBlockingInterval records a blocked interval for a subscription or account
func (s *InMemoryBlockingStore) AddBlockingInterval(id string, interval billing.BlockingInterval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intervals[id] = append(s.intervals[id], interval)
}

// GetBlockingIntervals returns the blocked intervals for a subscription or account
func (s *InMemoryBlockingStore) GetBlockingIntervals(ctx context.Context, subscriptionOrAccountID string) ([]billing.BlockingInterval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intervals := make([]billing.BlockingInterval, len(s.intervals[subscriptionOrAccountID]))
	copy(intervals, s.intervals[subscriptionOrAccountID])
	return intervals, nil
}

// Clear removes all blocked intervals from the store
func (s *InMemoryBlockingStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intervals = make(map[string][]billing.BlockingInterval)
}
