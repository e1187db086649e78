package service

import (
	"testing"
	"time"

	"github.com/flexprice/billingcore/internal/domain/catalog"
	"github.com/flexprice/billingcore/internal/domain/timeline"
	ierr "github.com/flexprice/billingcore/internal/errors"
	"github.com/flexprice/billingcore/internal/testutil"
	"github.com/flexprice/billingcore/internal/types"
	"github.com/stretchr/testify/suite"
)

type AddonEligibilityServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AddonEligibilityService
}

func TestAddonEligibilityService(t *testing.T) {
	suite.Run(t, new(AddonEligibilityServiceSuite))
}

func (s *AddonEligibilityServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewAddonEligibilityService(testServiceParams(&s.BaseServiceTestSuite))

	effectiveFrom := testDate(2026, time.January, 1)

	basePlan := monthlyPlan("base-plan", "base-product", types.BillCycleDayAlignmentSubscription, "30", "0")
	basePlan.Product = &catalog.Product{
		Name:      "base-product",
		Available: []string{"music-product"},
		Included:  []string{"voicemail-product"},
	}
	s.GetStores().Catalog.AddPlan(effectiveFrom, basePlan)

	for _, addon := range []struct{ plan, product string }{
		{"music-addon", "music-product"},
		{"voicemail-addon", "voicemail-product"},
		{"tv-addon", "tv-product"},
	} {
		plan := monthlyPlan(addon.plan, addon.product, types.BillCycleDayAlignmentBundle, "5", "0")
		plan.IsAddOn = true
		s.GetStores().Catalog.AddPlan(effectiveFrom, plan)
	}
}

func (s *AddonEligibilityServiceSuite) newBase(start time.Time) *timeline.Timeline {
	tl := timeline.NewTimeline("sub_base", "bundle_1")
	s.Require().NoError(tl.AddEvent(&timeline.SubscriptionEvent{
		Type:          types.SubscriptionEventCreate,
		PlanName:      "base-plan",
		EffectiveDate: start,
	}))
	return tl
}

func (s *AddonEligibilityServiceSuite) TestAvailableAddonAllowed() {
	base := s.newBase(testDate(2026, time.January, 10))

	err := s.service.CheckAddonCreationRights(s.GetContext(), base, "music-addon", testDate(2026, time.February, 1))
	s.Require().NoError(err)
}

func (s *AddonEligibilityServiceSuite) TestIncludedAddonRejected() {
	base := s.newBase(testDate(2026, time.January, 10))

	err := s.service.CheckAddonCreationRights(s.GetContext(), base, "voicemail-addon", testDate(2026, time.February, 1))
	s.Require().Error(err)
	s.True(ierr.Is(err, timeline.ErrAddOnAlreadyIncluded))
}

func (s *AddonEligibilityServiceSuite) TestUnavailableAddonRejected() {
	base := s.newBase(testDate(2026, time.January, 10))

	err := s.service.CheckAddonCreationRights(s.GetContext(), base, "tv-addon", testDate(2026, time.February, 1))
	s.Require().Error(err)
	s.True(ierr.Is(err, timeline.ErrAddOnNotAvailable))
}

func (s *AddonEligibilityServiceSuite) TestBaseNotStartedRejected() {
	base := s.newBase(testDate(2026, time.January, 10))

	err := s.service.CheckAddonCreationRights(s.GetContext(), base, "music-addon", testDate(2026, time.January, 1))
	s.Require().Error(err)
	s.True(ierr.Is(err, timeline.ErrBaseNotActive))
}

func (s *AddonEligibilityServiceSuite) TestCancelledBaseRejected() {
	base := s.newBase(testDate(2026, time.January, 10))
	s.Require().NoError(base.AddEvent(&timeline.SubscriptionEvent{
		Type:          types.SubscriptionEventCancel,
		EffectiveDate: testDate(2026, time.February, 1),
	}))

	err := s.service.CheckAddonCreationRights(s.GetContext(), base, "music-addon", testDate(2026, time.March, 1))
	s.Require().Error(err)
	s.True(ierr.Is(err, timeline.ErrBaseNotActive))
}

func (s *AddonEligibilityServiceSuite) TestUnknownTargetPlan() {
	base := s.newBase(testDate(2026, time.January, 10))

	err := s.service.CheckAddonCreationRights(s.GetContext(), base, "no-such-plan", testDate(2026, time.February, 1))
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *AddonEligibilityServiceSuite) TestNilBaseRejected() {
	err := s.service.CheckAddonCreationRights(s.GetContext(), nil, "music-addon", testDate(2026, time.February, 1))
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))
}
