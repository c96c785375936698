package handlers

import (
	"net/http"
	"time"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/reporting"

	"github.com/labstack/echo/v4"
)

// FinanceHandlers serves the finance reports
type FinanceHandlers struct {
	reportingSvc *reporting.Service
}

// NewFinanceHandlers creates a new finance report handlers instance
func NewFinanceHandlers(reportingSvc *reporting.Service) *FinanceHandlers {
	return &FinanceHandlers{reportingSvc: reportingSvc}
}

// parseReportRange reads start_date/end_date query params. Each bound
// falls back to the default reporting window independently, so callers
// may supply just one of them.
func parseReportRange(c echo.Context) (time.Time, time.Time, error) {
	start, end := reporting.DefaultRange(time.Now())

	if startStr := c.QueryParam("start_date"); startStr != "" {
		parsed, err := common.ParseDate(startStr, "start_date")
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	if endStr := c.QueryParam("end_date"); endStr != "" {
		parsed, err := common.ParseDate(endStr, "end_date")
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// Include the whole end day
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, nil
}

func parseCategoryParam(c echo.Context) *models.EntryCategory {
	if catStr := c.QueryParam("category"); catStr != "" {
		category := models.EntryCategory(catStr)
		return &category
	}
	return nil
}

// GetSummary handles GET /finance/summary
func (h *FinanceHandlers) GetSummary(c echo.Context) error {
	ctx := c.Request().Context()

	start, end, err := parseReportRange(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	summary, err := h.reportingSvc.Summary(ctx, start, end, parseCategoryParam(c))
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}

// GetRevenueExpense handles GET /finance/revenue-expense
func (h *FinanceHandlers) GetRevenueExpense(c echo.Context) error {
	ctx := c.Request().Context()

	start, end, err := parseReportRange(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	rows, err := h.reportingSvc.RevenueExpense(ctx, start, end)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"months": rows})
}

// GetRevenueBreakdown handles GET /finance/revenue-breakdown
func (h *FinanceHandlers) GetRevenueBreakdown(c echo.Context) error {
	ctx := c.Request().Context()

	start, end, err := parseReportRange(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	rows, err := h.reportingSvc.RevenueBreakdown(ctx, start, end, parseCategoryParam(c))
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"breakdown": rows})
}

// GetExpenseBreakdown handles GET /finance/expense-breakdown
func (h *FinanceHandlers) GetExpenseBreakdown(c echo.Context) error {
	ctx := c.Request().Context()

	start, end, err := parseReportRange(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	rows, err := h.reportingSvc.ExpenseBreakdown(ctx, start, end, parseCategoryParam(c))
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"breakdown": rows})
}
