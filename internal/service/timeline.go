package service

import (
	"context"
	"time"

	"github.com/flexprice/billingcore/internal/domain/timeline"
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/types"
)

// TimelineService fronts the subscription event log: it loads the timeline,
// applies the mutation and persists the result. The caller serializes
// mutations per account; this service adds no locking of its own.
type TimelineService interface {
	// GetTimeline loads a subscription's timeline including deactivated versions
	GetTimeline(ctx context.Context, subscriptionID string) (*timeline.Timeline, error)

	// AddEvent appends a lifecycle event. A CREATE event for an unknown
	// subscription starts a new timeline.
	AddEvent(ctx context.Context, subscriptionID string, event *timeline.SubscriptionEvent) (*timeline.Timeline, error)

	// RepairTimeline deactivates the active events on or after the cut-off and
	// inserts the replacement events as the new active version
	RepairTimeline(ctx context.Context, subscriptionID string, cutoff time.Time, newEvents []*timeline.SubscriptionEvent) (*timeline.Timeline, error)
}

type timelineService struct {
	ServiceParams
}

func NewTimelineService(params ServiceParams) TimelineService {
	return &timelineService{
		ServiceParams: params,
	}
}

func (s *timelineService) GetTimeline(ctx context.Context, subscriptionID string) (*timeline.Timeline, error) {
	if subscriptionID == "" {
		return nil, ierr.NewError("subscription id is required").
			Mark(ierr.ErrValidation)
	}
	return s.TimelineRepo.Get(ctx, subscriptionID)
}

func (s *timelineService) AddEvent(ctx context.Context, subscriptionID string, event *timeline.SubscriptionEvent) (*timeline.Timeline, error) {
	if event == nil {
		return nil, ierr.NewError("event is required").
			Mark(ierr.ErrValidation)
	}

	tl, err := s.TimelineRepo.Get(ctx, subscriptionID)
	if err != nil {
		if !ierr.IsNotFound(err) || event.Type != types.SubscriptionEventCreate {
			return nil, err
		}
		tl = timeline.NewTimeline(subscriptionID, event.BundleID)
	}

	if err := tl.AddEvent(event); err != nil {
		return nil, err
	}
	if err := s.TimelineRepo.Save(ctx, tl); err != nil {
		return nil, err
	}

	s.Logger.Infow("added subscription event",
		"subscription_id", subscriptionID,
		"event_type", event.Type,
		"effective_date", event.EffectiveDate,
	)
	return tl, nil
}

func (s *timelineService) RepairTimeline(ctx context.Context, subscriptionID string, cutoff time.Time, newEvents []*timeline.SubscriptionEvent) (*timeline.Timeline, error) {
	tl, err := s.TimelineRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if err := tl.Repair(cutoff, newEvents); err != nil {
		return nil, err
	}
	if err := s.TimelineRepo.Save(ctx, tl); err != nil {
		return nil, err
	}

	s.Logger.Infow("repaired subscription timeline",
		"subscription_id", subscriptionID,
		"cutoff", cutoff,
		"new_event_count", len(newEvents),
	)
	return tl, nil
}
