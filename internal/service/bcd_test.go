package service

import (
	"testing"
	"time"

	"github.com/flexprice/billingcore/internal/domain/timeline"
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/testutil"
	"github.com/flexprice/billingcore/internal/types"
	"github.com/stretchr/testify/suite"
)

type BillCycleDayServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillCycleDayService
}

func TestBillCycleDayService(t *testing.T) {
	suite.Run(t, new(BillCycleDayServiceSuite))
}

func (s *BillCycleDayServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillCycleDayService(testServiceParams(&s.BaseServiceTestSuite))
}

func (s *BillCycleDayServiceSuite) newTimelineWithCreate(subID, plan, phase string, start time.Time) *timeline.Timeline {
	tl := timeline.NewTimeline(subID, "bundle_1")
	s.Require().NoError(tl.AddEvent(&timeline.SubscriptionEvent{
		Type:          types.SubscriptionEventCreate,
		PlanName:      plan,
		PhaseName:     phase,
		EffectiveDate: start,
	}))
	return tl
}

func (s *BillCycleDayServiceSuite) TestAccountAlignment() {
	tl := timeline.NewTimeline("sub_1", "bundle_1")

	bcd, err := s.service.CalculateBillCycleDay(s.GetContext(), tl, nil, types.BillCycleDayAlignmentAccount, 20)
	s.Require().NoError(err)
	s.Equal(20, bcd)
}

func (s *BillCycleDayServiceSuite) TestAccountAlignmentWithoutAccountBCD() {
	tl := timeline.NewTimeline("sub_1", "bundle_1")

	_, err := s.service.CalculateBillCycleDay(s.GetContext(), tl, nil, types.BillCycleDayAlignmentAccount, 0)
	s.Require().Error(err)
	s.True(ierr.IsSystem(err))
}

func (s *BillCycleDayServiceSuite) TestSubscriptionAlignment() {
	s.GetStores().Catalog.AddPlan(testDate(2026, time.January, 1),
		monthlyPlan("gold", "base", types.BillCycleDayAlignmentSubscription, "30", "0"))

	tl := s.newTimelineWithCreate("sub_1", "gold", "evergreen", testDate(2026, time.January, 15))

	bcd, err := s.service.CalculateBillCycleDay(s.GetContext(), tl, nil, types.BillCycleDayAlignmentSubscription, 0)
	s.Require().NoError(err)
	s.Equal(15, bcd)

	// Memoized within the pass
	bcd, err = s.service.CalculateBillCycleDay(s.GetContext(), tl, nil, types.BillCycleDayAlignmentSubscription, 0)
	s.Require().NoError(err)
	s.Equal(15, bcd)
}

func (s *BillCycleDayServiceSuite) TestSubscriptionAlignmentSkipsFreePhases() {
	s.GetStores().Catalog.AddPlan(testDate(2026, time.January, 1),
		trialPlan("gold", "base", types.BillCycleDayAlignmentSubscription, "30"))

	// The trial carries no recurring charge; the BCD comes from the first
	// event whose resolved phase does.
	tl := s.newTimelineWithCreate("sub_1", "gold", "trial", testDate(2026, time.January, 10))
	s.Require().NoError(tl.AddEvent(&timeline.SubscriptionEvent{
		Type:          types.SubscriptionEventPhase,
		PhaseName:     "evergreen",
		EffectiveDate: testDate(2026, time.February, 5),
	}))

	bcd, err := s.service.CalculateBillCycleDay(s.GetContext(), tl, nil, types.BillCycleDayAlignmentSubscription, 0)
	s.Require().NoError(err)
	s.Equal(5, bcd)
}

func (s *BillCycleDayServiceSuite) TestBundleAlignment() {
	s.GetStores().Catalog.AddPlan(testDate(2026, time.January, 1),
		monthlyPlan("gold", "base", types.BillCycleDayAlignmentSubscription, "30", "0"))

	base := s.newTimelineWithCreate("sub_base", "gold", "evergreen", testDate(2026, time.January, 12))
	addon := timeline.NewTimeline("sub_addon", "bundle_1")

	bcd, err := s.service.CalculateBillCycleDay(s.GetContext(), addon, base, types.BillCycleDayAlignmentBundle, 0)
	s.Require().NoError(err)
	s.Equal(12, bcd)
}

func (s *BillCycleDayServiceSuite) TestBundleAlignmentRequiresBase() {
	tl := timeline.NewTimeline("sub_1", "bundle_1")

	_, err := s.service.CalculateBillCycleDay(s.GetContext(), tl, nil, types.BillCycleDayAlignmentBundle, 0)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillCycleDayServiceSuite) TestNoRecurringChargeFound() {
	s.GetStores().Catalog.AddPlan(testDate(2026, time.January, 1),
		monthlyPlan("free", "base", types.BillCycleDayAlignmentSubscription, "0", "0"))

	tl := s.newTimelineWithCreate("sub_1", "free", "evergreen", testDate(2026, time.January, 15))

	_, err := s.service.CalculateBillCycleDay(s.GetContext(), tl, nil, types.BillCycleDayAlignmentSubscription, 0)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *BillCycleDayServiceSuite) TestInvalidAlignment() {
	tl := timeline.NewTimeline("sub_1", "bundle_1")

	_, err := s.service.CalculateBillCycleDay(s.GetContext(), tl, nil, types.BillCycleDayAlignment("SIDEWAYS"), 0)
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BillCycleDayServiceSuite) TestAlignProposedBillingDate() {
	aligned := s.service.AlignProposedBillingDate(testDate(2026, time.February, 10), 31, types.BILLING_PERIOD_MONTHLY)
	s.True(testDate(2026, time.February, 28).Equal(aligned))

	unchanged := s.service.AlignProposedBillingDate(testDate(2026, time.February, 20), 15, types.BILLING_PERIOD_MONTHLY)
	s.True(testDate(2026, time.February, 20).Equal(unchanged))
}
