package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/flexprice/billingcore/internal/config"
	"github.com/flexprice/billingcore/internal/domain/invoice"
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/logger"
)

// memoryPublisher implements Publisher using watermill's gochannel pubsub.
// Suitable for embedding and tests; a broker-backed implementation can be
// swapped in behind the same interface.
type memoryPublisher struct {
	pubsub *gochannel.GoChannel
	topic  string
	logger *logger.Logger
}

// NewMemoryPublisher creates a new in-memory notification publisher
func NewMemoryPublisher(cfg *config.Configuration, log *logger.Logger) Publisher {
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:          true,
			OutputChannelBuffer: 100,
		},
		watermill.NopLogger{},
	)

	return &memoryPublisher{
		pubsub: goChannel,
		topic:  cfg.Notification.Topic,
		logger: log,
	}
}

func (p *memoryPublisher) PublishNextBillingDate(ctx context.Context, notification invoice.NextBillingNotification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal next billing notification").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubsub.Publish(p.topic, msg); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to publish next billing notification for subscription %s", notification.SubscriptionID).
			Mark(ierr.ErrSystem)
	}

	p.logger.Debugw("published next billing notification",
		"subscription_id", notification.SubscriptionID,
		"next_billing_date", notification.NextBillingDate,
	)
	return nil
}

// Subscribe returns the notification channel for the configured topic. Used
// by the enclosing system (and tests) to drain scheduled notifications.
func (p *memoryPublisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, p.topic)
}

func (p *memoryPublisher) Close() error {
	return p.pubsub.Close()
}
