package service

import (
	"testing"
	"time"

	"github.com/flexprice/billingcore/internal/domain/billing"
	"github.com/flexprice/billingcore/internal/domain/timeline"
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/testutil"
	"github.com/flexprice/billingcore/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingEventServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingEventService
}

func TestBillingEventService(t *testing.T) {
	suite.Run(t, new(BillingEventServiceSuite))
}

func (s *BillingEventServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingEventService(testServiceParams(&s.BaseServiceTestSuite))

	s.GetStores().Catalog.AddPlan(testDate(2026, time.January, 1),
		monthlyPlan("gold", "base", types.BillCycleDayAlignmentSubscription, "30", "10"))
}

func (s *BillingEventServiceSuite) newTimeline(subID string, start time.Time) *timeline.Timeline {
	tl := timeline.NewTimeline(subID, "bundle_1")
	s.Require().NoError(tl.AddEvent(&timeline.SubscriptionEvent{
		Type:          types.SubscriptionEventCreate,
		PlanName:      "gold",
		EffectiveDate: start,
	}))
	return tl
}

func (s *BillingEventServiceSuite) assemble(timelines ...*timeline.Timeline) *billing.BillingEventSet {
	set, err := s.service.AssembleBillingEvents(s.GetContext(), AssembleBillingEventsParams{
		AccountID: "acct_1",
		Timelines: timelines,
	})
	s.Require().NoError(err)
	return set
}

func (s *BillingEventServiceSuite) TestAssembleSingleCreate() {
	tl := s.newTimeline("sub_1", testDate(2026, time.January, 15))

	set := s.assemble(tl)
	events := set.Events()
	s.Require().Len(events, 1)

	event := events[0]
	s.Equal("sub_1", event.SubscriptionID)
	s.Equal(types.BillingTransitionCreate, event.TransitionType)
	s.Equal("gold", event.PlanName)
	s.Equal("evergreen", event.PhaseName)
	s.Equal("usd", event.Currency)
	s.Equal(types.BILLING_PERIOD_MONTHLY, event.BillingPeriod)
	s.True(decimal.RequireFromString("10").Equal(event.FixedPrice))
	s.True(decimal.RequireFromString("30").Equal(event.RecurringPrice))
	s.Equal(15, event.BillCycleDayLocal)
	s.True(event.CatalogEffectiveDate.Equal(testDate(2026, time.January, 15)))
}

func (s *BillingEventServiceSuite) TestAssembleOrdersAcrossSubscriptions() {
	// Inserted in reverse ID order; same effective date
	tlB := s.newTimeline("sub_b", testDate(2026, time.January, 15))
	tlA := s.newTimeline("sub_a", testDate(2026, time.January, 15))

	set := s.assemble(tlB, tlA)
	events := set.Events()
	s.Require().Len(events, 2)
	s.Equal("sub_a", events[0].SubscriptionID)
	s.Equal("sub_b", events[1].SubscriptionID)
}

func (s *BillingEventServiceSuite) TestCancelCarriesContextWithoutPrices() {
	tl := s.newTimeline("sub_1", testDate(2026, time.January, 15))
	s.Require().NoError(tl.AddEvent(&timeline.SubscriptionEvent{
		Type:          types.SubscriptionEventCancel,
		EffectiveDate: testDate(2026, time.March, 1),
	}))

	set := s.assemble(tl)
	events := set.Events()
	s.Require().Len(events, 2)

	cancel := events[1]
	s.Equal(types.BillingTransitionCancel, cancel.TransitionType)
	s.Equal("gold", cancel.PlanName)
	s.True(cancel.FixedPrice.IsZero())
	s.True(cancel.RecurringPrice.IsZero())
}

func (s *BillingEventServiceSuite) TestBCDUpdateOverridesDerivedBCD() {
	tl := s.newTimeline("sub_1", testDate(2026, time.January, 15))
	s.Require().NoError(tl.AddEvent(&timeline.SubscriptionEvent{
		Type:              types.SubscriptionEventBCDUpdate,
		EffectiveDate:     testDate(2026, time.February, 1),
		BillCycleDayLocal: 1,
	}))

	set := s.assemble(tl)
	events := set.Events()
	s.Require().Len(events, 2)
	s.Equal(15, events[0].BillCycleDayLocal)
	s.Equal(types.BillingTransitionBCDUpdate, events[1].TransitionType)
	s.Equal(1, events[1].BillCycleDayLocal)
}

func (s *BillingEventServiceSuite) TestDisableMarkersFromBlockedInterval() {
	tl := s.newTimeline("sub_1", testDate(2026, time.January, 15))

	end := testDate(2026, time.February, 1)
	s.GetStores().BlockingStore.AddBlockingInterval("sub_1", billing.BlockingInterval{
		Start: testDate(2026, time.January, 20),
		End:   &end,
	})

	set := s.assemble(tl)
	events := set.Events()
	s.Require().Len(events, 3)

	start := events[1]
	s.Equal(types.BillingTransitionStartBillingDisabled, start.TransitionType)
	s.True(start.EffectiveDate.Equal(testDate(2026, time.January, 20)))
	s.Equal("gold", start.PlanName)
	s.True(start.RecurringPrice.IsZero())

	s.Equal(types.BillingTransitionEndBillingDisabled, events[2].TransitionType)
	s.True(events[2].EffectiveDate.Equal(end))
}

func (s *BillingEventServiceSuite) TestOpenEndedIntervalEmitsOnlyStartMarker() {
	tl := s.newTimeline("sub_1", testDate(2026, time.January, 15))

	s.GetStores().BlockingStore.AddBlockingInterval("sub_1", billing.BlockingInterval{
		Start: testDate(2026, time.January, 20),
	})

	set := s.assemble(tl)
	events := set.Events()
	s.Require().Len(events, 2)
	s.Equal(types.BillingTransitionStartBillingDisabled, events[1].TransitionType)
}

func (s *BillingEventServiceSuite) TestMarkerClampedToSubscriptionStart() {
	tl := s.newTimeline("sub_1", testDate(2026, time.January, 15))

	end := testDate(2026, time.February, 1)
	s.GetStores().BlockingStore.AddBlockingInterval("acct_1", billing.BlockingInterval{
		Start: testDate(2026, time.January, 1),
		End:   &end,
	})

	set := s.assemble(tl)
	events := set.Events()
	s.Require().Len(events, 3)

	// The account-wide block started before the subscription did; the marker
	// clamps to the subscription start. Same-instant ordering then puts the
	// disable marker before the create.
	s.Equal(types.BillingTransitionStartBillingDisabled, events[0].TransitionType)
	s.True(events[0].EffectiveDate.Equal(testDate(2026, time.January, 15)))
	s.Equal(types.BillingTransitionCreate, events[1].TransitionType)
}

func (s *BillingEventServiceSuite) TestOverlappingIntervalsEmitOneMarkerPair() {
	tl := s.newTimeline("sub_1", testDate(2026, time.January, 15))

	subEnd := testDate(2026, time.January, 25)
	s.GetStores().BlockingStore.AddBlockingInterval("sub_1", billing.BlockingInterval{
		Start: testDate(2026, time.January, 18),
		End:   &subEnd,
	})
	acctEnd := testDate(2026, time.February, 10)
	s.GetStores().BlockingStore.AddBlockingInterval("acct_1", billing.BlockingInterval{
		Start: testDate(2026, time.January, 20),
		End:   &acctEnd,
	})

	// The two blocks overlap; a marker pair per raw interval would re-enable
	// billing at Jan 25 while the account block still runs. The union yields
	// exactly one disabled stretch [Jan 18, Feb 10).
	set := s.assemble(tl)
	events := set.Events()
	s.Require().Len(events, 3)

	s.Equal(types.BillingTransitionStartBillingDisabled, events[1].TransitionType)
	s.True(events[1].EffectiveDate.Equal(testDate(2026, time.January, 18)))
	s.Equal(types.BillingTransitionEndBillingDisabled, events[2].TransitionType)
	s.True(events[2].EffectiveDate.Equal(testDate(2026, time.February, 10)))
}

func (s *BillingEventServiceSuite) TestIdenticalAccountAndSubscriptionIntervals() {
	tl := s.newTimeline("sub_1", testDate(2026, time.January, 15))

	end := testDate(2026, time.February, 1)
	interval := billing.BlockingInterval{
		Start: testDate(2026, time.January, 20),
		End:   &end,
	}
	s.GetStores().BlockingStore.AddBlockingInterval("sub_1", interval)
	s.GetStores().BlockingStore.AddBlockingInterval("acct_1", interval)

	// Coinciding account and subscription blocks collapse to a single marker
	// pair instead of inserting duplicate events.
	set := s.assemble(tl)
	events := set.Events()
	s.Require().Len(events, 3)
	s.Equal(types.BillingTransitionStartBillingDisabled, events[1].TransitionType)
	s.Equal(types.BillingTransitionEndBillingDisabled, events[2].TransitionType)
}

func (s *BillingEventServiceSuite) TestMarkerSkippedAfterCancel() {
	tl := s.newTimeline("sub_1", testDate(2026, time.January, 15))
	s.Require().NoError(tl.AddEvent(&timeline.SubscriptionEvent{
		Type:          types.SubscriptionEventCancel,
		EffectiveDate: testDate(2026, time.February, 1),
	}))

	s.GetStores().BlockingStore.AddBlockingInterval("sub_1", billing.BlockingInterval{
		Start: testDate(2026, time.March, 1),
	})

	set := s.assemble(tl)
	for _, event := range set.Events() {
		s.False(event.TransitionType.IsDisableMarker())
	}
}

func (s *BillingEventServiceSuite) TestAccountIDRequired() {
	_, err := s.service.AssembleBillingEvents(s.GetContext(), AssembleBillingEventsParams{})
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillingEventServiceSuite) TestUnknownPlanFailsAssembly() {
	tl := timeline.NewTimeline("sub_1", "bundle_1")
	s.Require().NoError(tl.AddEvent(&timeline.SubscriptionEvent{
		Type:          types.SubscriptionEventCreate,
		PlanName:      "no-such-plan",
		EffectiveDate: testDate(2026, time.January, 15),
	}))

	_, err := s.service.AssembleBillingEvents(s.GetContext(), AssembleBillingEventsParams{
		AccountID: "acct_1",
		Timelines: []*timeline.Timeline{tl},
	})
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingEventServiceSuite) TestAutoInvoiceFlagsCarriedOntoSet() {
	set, err := s.service.AssembleBillingEvents(s.GetContext(), AssembleBillingEventsParams{
		AccountID:                         "acct_1",
		AutoInvoiceOff:                    true,
		AutoInvoiceDraft:                  true,
		SubscriptionIDsWithAutoInvoiceOff: []string{"sub_9"},
	})
	s.Require().NoError(err)
	s.True(set.AutoInvoiceOff)
	s.True(set.AutoInvoiceDraft)
	s.True(set.IsAutoInvoiceOff("sub_9"))
}
