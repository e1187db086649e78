package billing

import (
	"context"
	"sort"
	"time"
)

// BlockingInterval is a stretch of time during which billing (or entitlement)
// is blocked for a subscription or a whole account. An open interval has a
// nil End.
type BlockingInterval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// BlockingStateReader is the consumed collaborator answering which intervals
// are blocked for a subscription or account. Lookups are read-only and
// side-effect free.
type BlockingStateReader interface {
	GetBlockingIntervals(ctx context.Context, subscriptionOrAccountID string) ([]BlockingInterval, error)
}

// MergeBlockingIntervals unions possibly overlapping blocked intervals into a
// minimal sorted sequence of disjoint intervals. Account-level and
// per-subscription blocks can overlap or coincide; a subscription is blocked
// whenever any interval covers the instant, so markers must be derived from
// the union, never from the raw intervals. An open interval (nil End) absorbs
// everything from its start onward.
func MergeBlockingIntervals(intervals []BlockingInterval) []BlockingInterval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]BlockingInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []BlockingInterval{sorted[0]}
	for _, next := range sorted[1:] {
		last := &merged[len(merged)-1]
		if last.End == nil {
			break
		}
		if next.Start.After(*last.End) {
			merged = append(merged, next)
			continue
		}
		if next.End == nil {
			last.End = nil
		} else if next.End.After(*last.End) {
			end := *next.End
			last.End = &end
		}
	}
	return merged
}
