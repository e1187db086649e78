package service

import (
	"time"

	"github.com/flexprice/billingcore/internal/domain/catalog"
	"github.com/flexprice/billingcore/internal/testutil"
	"github.com/flexprice/billingcore/internal/types"
	"github.com/shopspring/decimal"
)

func testServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:              s.GetLogger(),
		Config:              s.GetConfig(),
		Catalog:             stores.Catalog,
		BlockingStateReader: stores.BlockingStore,
		InvoicedPeriodIndex: stores.InvoiceStore,
		ItemSink:            stores.InvoiceStore,
		Publisher:           stores.Publisher,
		TimelineRepo:        stores.TimelineRepo,
	}
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// monthlyPlan builds a single-phase monthly plan for tests
func monthlyPlan(name, product string, alignment types.BillCycleDayAlignment, recurring, fixed string) *catalog.Plan {
	return &catalog.Plan{
		Name:      name,
		Product:   &catalog.Product{Name: product},
		Alignment: alignment,
		Phases: []*catalog.PlanPhase{
			{
				Name: "evergreen",
				Price: &catalog.Price{
					Currency:          "usd",
					FixedAmount:       decimal.RequireFromString(fixed),
					RecurringAmount:   decimal.RequireFromString(recurring),
					BillingPeriod:     types.BILLING_PERIOD_MONTHLY,
					BillingPeriodUnit: 1,
				},
			},
		},
	}
}

// trialPlan builds a plan with a free trial phase followed by a paid
// evergreen phase
func trialPlan(name, product string, alignment types.BillCycleDayAlignment, recurring string) *catalog.Plan {
	return &catalog.Plan{
		Name:      name,
		Product:   &catalog.Product{Name: product},
		Alignment: alignment,
		Phases: []*catalog.PlanPhase{
			{
				Name: "trial",
				Price: &catalog.Price{
					Currency:          "usd",
					FixedAmount:       decimal.Zero,
					RecurringAmount:   decimal.Zero,
					BillingPeriod:     types.BILLING_PERIOD_MONTHLY,
					BillingPeriodUnit: 1,
				},
			},
			{
				Name: "evergreen",
				Price: &catalog.Price{
					Currency:          "usd",
					FixedAmount:       decimal.Zero,
					RecurringAmount:   decimal.RequireFromString(recurring),
					BillingPeriod:     types.BILLING_PERIOD_MONTHLY,
					BillingPeriodUnit: 1,
				},
			},
		},
	}
}
