package reporting

import (
	"context"
	"testing"
	"time"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockLedgerRepo struct {
	mock.Mock
}

func (m *mockLedgerRepo) Create(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockLedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *mockLedgerRepo) UpdateEditableFields(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockLedgerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockLedgerRepo) List(ctx context.Context, filter repositories.LedgerFilter) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *mockLedgerRepo) ListApprovedInRange(ctx context.Context, startDate, endDate time.Time, category *models.EntryCategory) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, startDate, endDate, category)
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *mockLedgerRepo) CountByStatus(ctx context.Context, status models.EntryStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *mockLedgerRepo) SetStatusIfPending(ctx context.Context, id uuid.UUID, status models.EntryStatus, reviewerID uuid.UUID, note *string) (bool, error) {
	args := m.Called(ctx, id, status, reviewerID, note)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedgerRepo) BulkSetStatus(ctx context.Context, status models.EntryStatus, reviewerID uuid.UUID, note *string) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, status, reviewerID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetReport(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) SetReport(ctx context.Context, key string, report interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, report, ttl)
	return args.Error(0)
}

func (m *mockCache) InvalidateReports(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockCache) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type ReportingServiceTestSuite struct {
	suite.Suite
	mockLedger *mockLedgerRepo
	mockCache  *mockCache
	service    *Service
	ctx        context.Context
	start      time.Time
	end        time.Time
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockLedger = &mockLedgerRepo{}
	suite.mockCache = &mockCache{}
	suite.service = NewService(suite.mockLedger, suite.mockCache)
	suite.ctx = context.Background()
	suite.start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	suite.mockLedger.Test(suite.T())
	suite.mockCache.Test(suite.T())
}

func (suite *ReportingServiceTestSuite) TearDownTest() {
	suite.mockLedger.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func approvedEntry(entryType models.EntryType, category models.EntryCategory, date time.Time, amount float64) *models.LedgerEntry {
	entry := &models.LedgerEntry{
		ID:        uuid.New(),
		EntryType: entryType,
		Category:  category,
		Date:      date,
		Status:    models.EntryStatusApproved,
	}
	if entryType == models.EntryTypeRevenue {
		entry.Earnings = amount
	} else {
		entry.Expenses = amount
	}
	return entry
}

func (suite *ReportingServiceTestSuite) TestSummary_Totals() {
	entries := []*models.LedgerEntry{
		approvedEntry(models.EntryTypeRevenue, models.CategorySchoolFees, suite.start.AddDate(0, 0, 5), 5000),
		approvedEntry(models.EntryTypeRevenue, models.CategoryDonations, suite.start.AddDate(0, 1, 0), 1000),
		approvedEntry(models.EntryTypeExpense, models.CategorySalaries, suite.start.AddDate(0, 1, 3), 3500),
	}

	suite.mockCache.On("GetReport", suite.ctx, mock.AnythingOfType("string"), mock.Anything).Return(false, nil)
	suite.mockLedger.On("ListApprovedInRange", suite.ctx, suite.start, suite.end, (*models.EntryCategory)(nil)).Return(entries, nil)
	suite.mockLedger.On("CountByStatus", suite.ctx, models.EntryStatusPending).Return(2, nil)
	suite.mockCache.On("SetReport", suite.ctx, mock.AnythingOfType("string"), mock.Anything, reportCacheTTL).Return(nil)

	summary, err := suite.service.Summary(suite.ctx, suite.start, suite.end, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 6000.0, summary.TotalRevenue)
	assert.Equal(suite.T(), 3500.0, summary.TotalExpenses)
	assert.Equal(suite.T(), 2500.0, summary.NetProfit)
	assert.Equal(suite.T(), 2, summary.PendingCount)
}

func (suite *ReportingServiceTestSuite) TestSummary_CacheHitSkipsRepo() {
	suite.mockCache.On("GetReport", suite.ctx, mock.AnythingOfType("string"), mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		cached := args.Get(2).(*Summary)
		cached.TotalRevenue = 9000
	})

	summary, err := suite.service.Summary(suite.ctx, suite.start, suite.end, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 9000.0, summary.TotalRevenue)
}

func (suite *ReportingServiceTestSuite) TestRevenueBreakdown_ZeroFillsMonths() {
	entries := []*models.LedgerEntry{
		approvedEntry(models.EntryTypeRevenue, models.CategorySchoolFees, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), 4000),
	}

	suite.mockCache.On("GetReport", suite.ctx, mock.AnythingOfType("string"), mock.Anything).Return(false, nil)
	suite.mockLedger.On("ListApprovedInRange", suite.ctx, suite.start, suite.end, (*models.EntryCategory)(nil)).Return(entries, nil)
	suite.mockCache.On("SetReport", suite.ctx, mock.AnythingOfType("string"), mock.Anything, reportCacheTTL).Return(nil)

	rows, err := suite.service.RevenueBreakdown(suite.ctx, suite.start, suite.end, nil)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rows, 3)
	assert.Equal(suite.T(), "Jan", rows[0].Month)
	assert.Equal(suite.T(), "Feb", rows[1].Month)
	assert.Equal(suite.T(), "Mar", rows[2].Month)

	// Every revenue category is present in each month, zero-filled
	for _, row := range rows {
		assert.Len(suite.T(), row.Categories, len(models.RevenueCategories))
	}
	assert.Equal(suite.T(), 0.0, rows[0].Categories[models.CategorySchoolFees])
	assert.Equal(suite.T(), 4000.0, rows[1].Categories[models.CategorySchoolFees])
	assert.Equal(suite.T(), 0.0, rows[1].Categories[models.CategoryDonations])
}

func (suite *ReportingServiceTestSuite) TestRevenueExpense_MonthlySeries() {
	entries := []*models.LedgerEntry{
		approvedEntry(models.EntryTypeRevenue, models.CategorySchoolFees, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), 5000),
		approvedEntry(models.EntryTypeExpense, models.CategoryFood, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), 1200),
		approvedEntry(models.EntryTypeRevenue, models.CategoryDonations, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 800),
	}

	suite.mockCache.On("GetReport", suite.ctx, mock.AnythingOfType("string"), mock.Anything).Return(false, nil)
	suite.mockLedger.On("ListApprovedInRange", suite.ctx, suite.start, suite.end, (*models.EntryCategory)(nil)).Return(entries, nil)
	suite.mockCache.On("SetReport", suite.ctx, mock.AnythingOfType("string"), mock.Anything, reportCacheTTL).Return(nil)

	rows, err := suite.service.RevenueExpense(suite.ctx, suite.start, suite.end)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rows, 3)
	assert.Equal(suite.T(), 5000.0, rows[0].Revenue)
	assert.Equal(suite.T(), 1200.0, rows[0].Expenses)
	assert.Equal(suite.T(), 0.0, rows[1].Revenue)
	assert.Equal(suite.T(), 0.0, rows[1].Expenses)
	assert.Equal(suite.T(), 800.0, rows[2].Revenue)
}

func (suite *ReportingServiceTestSuite) TestExpenseBreakdown_SingleCategoryFilter() {
	category := models.CategorySalaries
	entries := []*models.LedgerEntry{
		approvedEntry(models.EntryTypeExpense, models.CategorySalaries, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 2000),
	}

	suite.mockCache.On("GetReport", suite.ctx, mock.AnythingOfType("string"), mock.Anything).Return(false, nil)
	suite.mockLedger.On("ListApprovedInRange", suite.ctx, suite.start, suite.end, &category).Return(entries, nil)
	suite.mockCache.On("SetReport", suite.ctx, mock.AnythingOfType("string"), mock.Anything, reportCacheTTL).Return(nil)

	rows, err := suite.service.ExpenseBreakdown(suite.ctx, suite.start, suite.end, &category)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rows, 3)
	assert.Len(suite.T(), rows[0].Categories, 1)
	assert.Equal(suite.T(), 2000.0, rows[0].Categories[models.CategorySalaries])
}

func (suite *ReportingServiceTestSuite) TestBreakdown_RevenueCategoryOnExpenseReport() {
	category := models.CategorySchoolFees

	_, err := suite.service.ExpenseBreakdown(suite.ctx, suite.start, suite.end, &category)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *ReportingServiceTestSuite) TestSummary_InvalidRange() {
	_, err := suite.service.Summary(suite.ctx, suite.end, suite.start, nil)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func TestDefaultRange(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	start, end := DefaultRange(now)

	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), start)
	assert.True(t, end.After(time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, end.Before(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
}
