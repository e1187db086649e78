package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flexprice/billingcore/internal/domain/invoice"
)

// InMemoryInvoiceStore is an in-memory implementation of both the
// invoice.InvoicedPeriodIndex and invoice.ItemSink interfaces. Saving items
// marks their service periods as invoiced, so a second run against the same
// store exercises the idempotence path.
type InMemoryInvoiceStore struct {
	mu      sync.Mutex
	items   []*invoice.InvoiceItem
	periods map[string]*invoice.InvoicedPeriod
}

// NewInMemoryInvoiceStore creates a new instance of InMemoryInvoiceStore
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		periods: make(map[string]*invoice.InvoicedPeriod),
	}
}

func periodKey(subscriptionID string, periodStart time.Time) string {
	return fmt.Sprintf("%s|%s", subscriptionID, periodStart.UTC().Format("2006-01-02"))
}

// GetInvoicedPeriod returns the covered period starting at periodStart, if any
func (s *InMemoryInvoiceStore) GetInvoicedPeriod(ctx context.Context, subscriptionID string, periodStart time.Time) (*invoice.InvoicedPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	period, ok := s.periods[periodKey(subscriptionID, periodStart)]
	if !ok {
		return nil, nil
	}
	return period, nil
}

// SaveItems stores the items and records their periods as invoiced
func (s *InMemoryInvoiceStore) SaveItems(ctx context.Context, items []*invoice.InvoiceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		s.items = append(s.items, item)
		s.markInvoiced(item.SubscriptionID, item.StartDate, item.EndDate)
	}
	return nil
}

// MarkInvoiced records a period as already invoiced without storing an item
func (s *InMemoryInvoiceStore) MarkInvoiced(subscriptionID string, periodStart, periodEnd time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markInvoiced(subscriptionID, periodStart, periodEnd)
}

func (s *InMemoryInvoiceStore) markInvoiced(subscriptionID string, periodStart, periodEnd time.Time) {
	key := periodKey(subscriptionID, periodStart)
	if existing, ok := s.periods[key]; ok && existing.PeriodEnd.After(periodEnd) {
		return
	}
	s.periods[key] = &invoice.InvoicedPeriod{
		SubscriptionID: subscriptionID,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
	}
}

// Items returns all saved invoice items
func (s *InMemoryInvoiceStore) Items() []*invoice.InvoiceItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*invoice.InvoiceItem, len(s.items))
	copy(items, s.items)
	return items
}

// Clear removes all items and invoiced periods from the store
func (s *InMemoryInvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.periods = make(map[string]*invoice.InvoicedPeriod)
}
