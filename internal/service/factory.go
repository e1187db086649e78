package service

import (
	"github.com/flexprice/billingcore/internal/config"
	"github.com/flexprice/billingcore/internal/domain/billing"
	"github.com/flexprice/billingcore/internal/domain/catalog"
	"github.com/flexprice/billingcore/internal/domain/invoice"
	"github.com/flexprice/billingcore/internal/domain/timeline"
	"github.com/flexprice/billingcore/internal/logger"
	"github.com/flexprice/billingcore/internal/publisher"
)

// ServiceParams holds common dependencies for all services. The collaborators
// are injected explicitly; there is no global mutable state behind them.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Collaborators
	Catalog             catalog.Catalog
	BlockingStateReader billing.BlockingStateReader
	InvoicedPeriodIndex invoice.InvoicedPeriodIndex
	ItemSink            invoice.ItemSink
	Publisher           publisher.Publisher

	// Repositories
	TimelineRepo timeline.Repository
}
