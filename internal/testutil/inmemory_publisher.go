package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/billingcore/internal/domain/invoice"
)

// InMemoryPublisher is a capturing implementation of the publisher.Publisher
// interface for tests
type InMemoryPublisher struct {
	mu            sync.Mutex
	notifications []invoice.NextBillingNotification
	closed        bool
}

// NewInMemoryPublisher creates a new instance of InMemoryPublisher
func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

// PublishNextBillingDate records the notification
func (p *InMemoryPublisher) PublishNextBillingDate(ctx context.Context, notification invoice.NextBillingNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, notification)
	return nil
}

// Notifications returns all published notifications
func (p *InMemoryPublisher) Notifications() []invoice.NextBillingNotification {
	p.mu.Lock()
	defer p.mu.Unlock()

	notifications := make([]invoice.NextBillingNotification, len(p.notifications))
	copy(notifications, p.notifications)
	return notifications
}

// Close marks the publisher as closed
func (p *InMemoryPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Clear removes all recorded notifications
func (p *InMemoryPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = nil
}
