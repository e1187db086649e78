package testutil

import (
	"context"
	"time"

	"github.com/flexprice/billingcore/internal/config"
	"github.com/flexprice/billingcore/internal/logger"
	"github.com/flexprice/billingcore/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the in-memory collaborators for testing
type Stores struct {
	Catalog       *InMemoryCatalog
	TimelineRepo  *InMemoryTimelineStore
	InvoiceStore  *InMemoryInvoiceStore
	BlockingStore *InMemoryBlockingStore
	Publisher     *InMemoryPublisher
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()
	s.logger = logger.NewNopLogger()
	s.config = config.GetDefaultConfig()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = Stores{
		Catalog:       NewInMemoryCatalog(),
		TimelineRepo:  NewInMemoryTimelineStore(),
		InvoiceStore:  NewInMemoryInvoiceStore(),
		BlockingStore: NewInMemoryBlockingStore(),
		Publisher:     NewInMemoryPublisher(),
	}
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.Catalog.Clear()
	s.stores.TimelineRepo.Clear()
	s.stores.InvoiceStore.Clear()
	s.stores.BlockingStore.Clear()
	s.stores.Publisher.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the in-memory collaborators
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the time captured at test setup
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
