package handlers

import (
	"context"
	"net/http"
	"time"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"
	"gurukul/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LedgerHandlers handles HTTP requests for finance requests and the
// approval workflow
type LedgerHandlers struct {
	approvalService services.ApprovalServiceInterface
	attachmentSvc   services.AttachmentService
}

// NewLedgerHandlers creates a new ledger handlers instance
func NewLedgerHandlers(approvalService services.ApprovalServiceInterface, attachmentSvc services.AttachmentService) *LedgerHandlers {
	return &LedgerHandlers{
		approvalService: approvalService,
		attachmentSvc:   attachmentSvc,
	}
}

// CreateEntryRequest represents the finance request submission payload
type CreateEntryRequest struct {
	EntryType       string  `json:"entry_type"`
	Category        string  `json:"category"`
	Date            string  `json:"date"`
	TimeOfDay       string  `json:"time_of_day"`
	Amount          float64 `json:"amount"`
	Description     string  `json:"description"`
	PaymentMode     string  `json:"payment_mode"`
	FeePeriod       *string `json:"fee_period"`
	StudentUniqueID *string `json:"student_unique_id"`
}

// CreateEntry handles POST /finance-requests
func (h *LedgerHandlers) CreateEntry(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateEntryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	entryType, err := models.ParseEntryType(req.EntryType)
	if err != nil {
		return common.SendValidationError(c, "entry_type", err.Error())
	}
	category, err := models.ParseEntryCategory(req.Category, entryType)
	if err != nil {
		return common.SendValidationError(c, "category", err.Error())
	}
	paymentMode, err := models.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		return common.SendValidationError(c, "payment_mode", err.Error())
	}
	date, err := common.ParseDate(req.Date, "date")
	if err != nil {
		return common.SendValidationError(c, "date", err.Error())
	}

	entry := &models.LedgerEntry{
		ID:              uuid.New(),
		EntryType:       entryType,
		Category:        category,
		Date:            date,
		TimeOfDay:       req.TimeOfDay,
		Description:     req.Description,
		PaymentMode:     paymentMode,
		FeePeriod:       req.FeePeriod,
		StudentUniqueID: req.StudentUniqueID,
		RequestedBy:     userID,
	}
	if entryType == models.EntryTypeRevenue {
		entry.Earnings = req.Amount
	} else {
		entry.Expenses = req.Amount
	}

	if err := h.approvalService.Submit(ctx, entry); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, entry)
}

// GetEntry handles GET /finance-requests/:id
func (h *LedgerHandlers) GetEntry(c echo.Context) error {
	ctx := c.Request().Context()

	entryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	entry, err := h.approvalService.GetEntry(ctx, entryID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, entry)
}

// ListEntries handles GET /finance-requests with optional filters
func (h *LedgerHandlers) ListEntries(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := common.ValidatePaginationParams(
		parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	filter := repositories.LedgerFilter{Limit: limit, Offset: offset}

	if statusStr := c.QueryParam("status"); statusStr != "" {
		status, err := models.ParseEntryStatus(statusStr)
		if err != nil {
			return common.SendValidationError(c, "status", err.Error())
		}
		filter.Status = &status
	}
	var entryType *models.EntryType
	if typeStr := c.QueryParam("entry_type"); typeStr != "" {
		parsed, err := models.ParseEntryType(typeStr)
		if err != nil {
			return common.SendValidationError(c, "entry_type", err.Error())
		}
		entryType = &parsed
		filter.EntryType = entryType
	}
	if catStr := c.QueryParam("category"); catStr != "" {
		if entryType == nil {
			return common.SendValidationError(c, "category", "entry_type is required when filtering by category")
		}
		category, err := models.ParseEntryCategory(catStr, *entryType)
		if err != nil {
			return common.SendValidationError(c, "category", err.Error())
		}
		filter.Category = &category
	}
	if startStr := c.QueryParam("start_date"); startStr != "" {
		start, err := common.ParseDate(startStr, "start_date")
		if err != nil {
			return common.SendValidationError(c, "start_date", err.Error())
		}
		filter.StartDate = &start
	}
	if endStr := c.QueryParam("end_date"); endStr != "" {
		end, err := common.ParseDate(endStr, "end_date")
		if err != nil {
			return common.SendValidationError(c, "end_date", err.Error())
		}
		filter.EndDate = &end
	}

	entries, err := h.approvalService.ListEntries(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list finance requests: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}

// UpdateEntryRequest carries the editable fields of a pending request
type UpdateEntryRequest struct {
	Date        string  `json:"date"`
	TimeOfDay   string  `json:"time_of_day"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	PaymentMode string  `json:"payment_mode"`
	FeePeriod   *string `json:"fee_period"`
}

// UpdateEntry handles PUT /finance-requests/:id
func (h *LedgerHandlers) UpdateEntry(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	entryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req UpdateEntryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	date, err := common.ParseDate(req.Date, "date")
	if err != nil {
		return common.SendValidationError(c, "date", err.Error())
	}

	patch := &services.EntryPatch{
		Date:        date,
		TimeOfDay:   req.TimeOfDay,
		Amount:      req.Amount,
		Description: req.Description,
		PaymentMode: models.PaymentMode(req.PaymentMode),
		FeePeriod:   req.FeePeriod,
	}

	entry, err := h.approvalService.Edit(ctx, entryID, userID, patch)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, entry)
}

// DeleteEntry handles DELETE /finance-requests/:id
func (h *LedgerHandlers) DeleteEntry(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	roleStr, _ := common.GetRoleFromContext(ctx)

	entryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.approvalService.Delete(ctx, entryID, userID, models.UserRole(roleStr)); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ReviewRequest is the approve/decline payload
type ReviewRequest struct {
	Note *string `json:"note"`
}

// ApproveEntry handles POST /finance-requests/:id/approve
func (h *LedgerHandlers) ApproveEntry(c echo.Context) error {
	return h.review(c, h.approvalService.Approve)
}

// DeclineEntry handles POST /finance-requests/:id/decline
func (h *LedgerHandlers) DeclineEntry(c echo.Context) error {
	return h.review(c, h.approvalService.Decline)
}

func (h *LedgerHandlers) review(c echo.Context, reviewFn func(ctx context.Context, entryID, reviewerID uuid.UUID, note *string) (*models.LedgerEntry, error)) error {
	ctx := c.Request().Context()

	reviewerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	entryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	entry, err := reviewFn(ctx, entryID, reviewerID, req.Note)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, entry)
}

// BulkApprove handles POST /finance-requests/bulk-approve
func (h *LedgerHandlers) BulkApprove(c echo.Context) error {
	ctx := c.Request().Context()

	reviewerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	count, err := h.approvalService.BulkApprove(ctx, reviewerID, req.Note)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"approved": count})
}

// BulkDecline handles POST /finance-requests/bulk-decline
func (h *LedgerHandlers) BulkDecline(c echo.Context) error {
	ctx := c.Request().Context()

	reviewerID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	count, err := h.approvalService.BulkDecline(ctx, reviewerID, req.Note)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"declined": count})
}

// UploadReceipt handles POST /finance-requests/:id/receipts (multipart)
func (h *LedgerHandlers) UploadReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	entryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	// Entry must exist before accepting a file for it
	if _, err := h.approvalService.GetEntry(ctx, entryID); err != nil {
		return common.SendDomainError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendClientError(c, "Missing 'file' form field")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload: "+err.Error())
	}
	defer file.Close()

	objectKey, err := h.attachmentSvc.UploadReceipt(ctx, entryID, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		return common.SendServerError(c, "Failed to store receipt: "+err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{"object_key": objectKey})
}

// GetReceiptURL handles GET /finance-requests/:id/receipts/url?key=...
func (h *LedgerHandlers) GetReceiptURL(c echo.Context) error {
	objectKey := c.QueryParam("key")
	if objectKey == "" {
		return common.SendClientError(c, "Missing 'key' query parameter")
	}

	url, err := h.attachmentSvc.GetReceiptURL(objectKey, 15*time.Minute)
	if err != nil {
		return common.SendServerError(c, "Failed to presign receipt URL: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func parseIntQuery(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	var value int
	if err := echo.QueryParamsBinder(c).Int(name, &value).BindError(); err != nil {
		return fallback
	}
	return value
}
