package reporting

import (
	"context"
	"fmt"
	"log"
	"time"

	"gurukul/internal/caching"
	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"
)

// Service computes finance summaries and monthly breakdowns over
// approved ledger entries. Results are cached briefly in Redis; the
// approval workflow invalidates the cache on every status change.
type Service struct {
	ledgerRepo repositories.LedgerRepository
	cacheSvc   caching.CacheService
}

// Summary is the headline finance report for a date range.
type Summary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
	PendingCount  int     `json:"pending_count"`
}

// BreakdownRow is one calendar month of a category breakdown. Every
// tracked category is present even at zero.
type BreakdownRow struct {
	Month      string                           `json:"month"`
	Year       int                              `json:"year"`
	Categories map[models.EntryCategory]float64 `json:"categories"`
}

// MonthlyTotalsRow is one calendar month of the revenue-vs-expense
// series.
type MonthlyTotalsRow struct {
	Month    string  `json:"month"`
	Year     int     `json:"year"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
}

const reportCacheTTL = 5 * time.Minute

// NewService creates a new reporting service
func NewService(ledgerRepo repositories.LedgerRepository, cacheSvc caching.CacheService) *Service {
	return &Service{
		ledgerRepo: ledgerRepo,
		cacheSvc:   cacheSvc,
	}
}

// DefaultRange is used when the caller passes no dates: from the first
// day of the month three months back through the last instant of the
// current month.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := firstOfMonth.AddDate(0, -3, 0)
	end := firstOfMonth.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

func (s *Service) Summary(ctx context.Context, startDate, endDate time.Time, category *models.EntryCategory) (*Summary, error) {
	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return nil, common.NewValidationError("date_range", err.Error())
	}

	cacheKey := s.cacheKey("summary", startDate, endDate, category)
	cached := &Summary{}
	if hit, err := s.cacheSvc.GetReport(ctx, cacheKey, cached); err == nil && hit {
		return cached, nil
	}

	entries, err := s.ledgerRepo.ListApprovedInRange(ctx, startDate, endDate, category)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, entry := range entries {
		switch entry.EntryType {
		case models.EntryTypeRevenue:
			summary.TotalRevenue += entry.Earnings
		case models.EntryTypeExpense:
			summary.TotalExpenses += entry.Expenses
		}
	}
	summary.NetProfit = summary.TotalRevenue - summary.TotalExpenses

	pending, err := s.ledgerRepo.CountByStatus(ctx, models.EntryStatusPending)
	if err != nil {
		return nil, err
	}
	summary.PendingCount = pending

	s.cacheReport(ctx, cacheKey, summary)
	return summary, nil
}

// RevenueBreakdown returns per-month-per-category revenue totals.
func (s *Service) RevenueBreakdown(ctx context.Context, startDate, endDate time.Time, category *models.EntryCategory) ([]BreakdownRow, error) {
	return s.breakdown(ctx, models.EntryTypeRevenue, startDate, endDate, category)
}

// ExpenseBreakdown returns per-month-per-category expense totals.
func (s *Service) ExpenseBreakdown(ctx context.Context, startDate, endDate time.Time, category *models.EntryCategory) ([]BreakdownRow, error) {
	return s.breakdown(ctx, models.EntryTypeExpense, startDate, endDate, category)
}

// RevenueExpense returns month-by-month revenue and expense totals for
// the range, zero-filled for months with no approved entries.
func (s *Service) RevenueExpense(ctx context.Context, startDate, endDate time.Time) ([]MonthlyTotalsRow, error) {
	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return nil, common.NewValidationError("date_range", err.Error())
	}

	cacheKey := s.cacheKey("revenue-expense", startDate, endDate, nil)
	var cached []MonthlyTotalsRow
	if hit, err := s.cacheSvc.GetReport(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	rows := []MonthlyTotalsRow{}
	index := map[string]int{}
	for cursor := time.Date(startDate.Year(), startDate.Month(), 1, 0, 0, 0, 0, startDate.Location()); !cursor.After(endDate); cursor = cursor.AddDate(0, 1, 0) {
		index[cursor.Format("2006-01")] = len(rows)
		rows = append(rows, MonthlyTotalsRow{Month: cursor.Format("Jan"), Year: cursor.Year()})
	}

	entries, err := s.ledgerRepo.ListApprovedInRange(ctx, startDate, endDate, nil)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		idx, ok := index[entry.Date.Format("2006-01")]
		if !ok {
			continue
		}
		switch entry.EntryType {
		case models.EntryTypeRevenue:
			rows[idx].Revenue += entry.Earnings
		case models.EntryTypeExpense:
			rows[idx].Expenses += entry.Expenses
		}
	}

	s.cacheReport(ctx, cacheKey, rows)
	return rows, nil
}

func (s *Service) breakdown(ctx context.Context, entryType models.EntryType, startDate, endDate time.Time, category *models.EntryCategory) ([]BreakdownRow, error) {
	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return nil, common.NewValidationError("date_range", err.Error())
	}
	if category != nil {
		if _, err := models.ParseEntryCategory(string(*category), entryType); err != nil {
			return nil, common.NewValidationError("category", err.Error())
		}
	}

	cacheKey := s.cacheKey("breakdown:"+string(entryType), startDate, endDate, category)
	var cached []BreakdownRow
	if hit, err := s.cacheSvc.GetReport(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	// Pre-seed every month in range with every tracked category at
	// zero; a single-category filter narrows the series to just that
	// category.
	categories := models.CategoriesFor(entryType)
	if category != nil {
		categories = []models.EntryCategory{*category}
	}

	rows := []BreakdownRow{}
	index := map[string]int{}
	for cursor := time.Date(startDate.Year(), startDate.Month(), 1, 0, 0, 0, 0, startDate.Location()); !cursor.After(endDate); cursor = cursor.AddDate(0, 1, 0) {
		row := BreakdownRow{
			Month:      cursor.Format("Jan"),
			Year:       cursor.Year(),
			Categories: map[models.EntryCategory]float64{},
		}
		for _, cat := range categories {
			row.Categories[cat] = 0
		}
		index[cursor.Format("2006-01")] = len(rows)
		rows = append(rows, row)
	}

	entries, err := s.ledgerRepo.ListApprovedInRange(ctx, startDate, endDate, category)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.EntryType != entryType {
			continue
		}
		idx, ok := index[entry.Date.Format("2006-01")]
		if !ok {
			continue
		}
		if _, tracked := rows[idx].Categories[entry.Category]; !tracked {
			continue
		}
		rows[idx].Categories[entry.Category] += entry.Amount()
	}

	s.cacheReport(ctx, cacheKey, rows)
	return rows, nil
}

func (s *Service) cacheKey(kind string, startDate, endDate time.Time, category *models.EntryCategory) string {
	key := fmt.Sprintf("%s:%s:%s", kind, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if category != nil {
		key += ":" + string(*category)
	}
	return key
}

func (s *Service) cacheReport(ctx context.Context, key string, report interface{}) {
	if err := s.cacheSvc.SetReport(ctx, key, report, reportCacheTTL); err != nil {
		log.Printf("Failed to cache report %s: %v", key, err)
	}
}
