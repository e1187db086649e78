package service

import (
	"context"
	"time"

	"github.com/flexprice/billingcore/internal/domain/timeline"
	ierr "github.com/flexprice/billingcore/internal/errors"
)

// AddonEligibilityService validates add-on creation and change requests
// against the base subscription's current product. All checks are pure,
// catalog-driven lookups with no side effects.
type AddonEligibilityService interface {
	// CheckAddonCreationRights fails when the target add-on cannot be created
	// on top of the base subscription as of the requested date
	CheckAddonCreationRights(ctx context.Context, base *timeline.Timeline, targetPlanName string, requestedDate time.Time) error
}

type addonEligibilityService struct {
	ServiceParams
}

func NewAddonEligibilityService(params ServiceParams) AddonEligibilityService {
	return &addonEligibilityService{
		ServiceParams: params,
	}
}

func (s *addonEligibilityService) CheckAddonCreationRights(
	ctx context.Context,
	base *timeline.Timeline,
	targetPlanName string,
	requestedDate time.Time,
) error {
	if base == nil {
		return ierr.NewError("base subscription timeline is required").
			Mark(ierr.ErrValidation)
	}

	targetPlan, err := s.Catalog.GetPlan(ctx, targetPlanName, requestedDate)
	if err != nil {
		return err
	}

	startDate, started := base.StartDate()
	if !started || requestedDate.Before(startDate) {
		return ierr.WithError(timeline.ErrBaseNotActive).
			WithHintf("Base subscription %s has not started as of the requested date", base.SubscriptionID).
			WithReportableDetails(map[string]any{
				"subscription_id": base.SubscriptionID,
				"requested_date":  requestedDate,
			}).
			Mark(ierr.ErrValidation)
	}
	if cancelledAt, cancelled := base.CancelledAt(); cancelled && !requestedDate.Before(cancelledAt) {
		return ierr.WithError(timeline.ErrBaseNotActive).
			WithHintf("Base subscription %s is cancelled as of the requested date", base.SubscriptionID).
			WithReportableDetails(map[string]any{
				"subscription_id": base.SubscriptionID,
				"cancelled_at":    cancelledAt,
			}).
			Mark(ierr.ErrValidation)
	}

	basePlanName := base.ActivePlanAt(requestedDate)
	if basePlanName == "" {
		return ierr.WithError(timeline.ErrBaseNotActive).
			WithHintf("Base subscription %s has no active plan as of the requested date", base.SubscriptionID).
			Mark(ierr.ErrValidation)
	}

	basePlan, err := s.Catalog.GetPlan(ctx, basePlanName, requestedDate)
	if err != nil {
		return err
	}

	targetProduct := targetPlan.Product.Name
	if basePlan.Product.IsIncluded(targetProduct) {
		return ierr.WithError(timeline.ErrAddOnAlreadyIncluded).
			WithReportableDetails(map[string]any{
				"base_product":   basePlan.Product.Name,
				"target_product": targetProduct,
			}).
			Mark(ierr.ErrValidation)
	}
	if !basePlan.Product.IsAvailable(targetProduct) {
		return ierr.WithError(timeline.ErrAddOnNotAvailable).
			WithReportableDetails(map[string]any{
				"base_product":   basePlan.Product.Name,
				"target_product": targetProduct,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
