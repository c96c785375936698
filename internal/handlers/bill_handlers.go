package handlers

import (
	"context"
	"net/http"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BillHandlers handles HTTP requests for student bills
type BillHandlers struct {
	billGenService services.BillGenServiceInterface
}

// NewBillHandlers creates a new bill handlers instance
func NewBillHandlers(billGenService services.BillGenServiceInterface) *BillHandlers {
	return &BillHandlers{billGenService: billGenService}
}

// GenerateBillsRequest selects who gets billed and from which fee source
type GenerateBillsRequest struct {
	StudentIDs  []string `json:"student_ids"`
	ClassName   string   `json:"class_name"`
	RollNumber  *int     `json:"roll_number"`
	Departments []string `json:"departments"`
	TemplateID  *string  `json:"template_id"`
	Months      int      `json:"months"`
	DueDate     string   `json:"due_date"`
	Description string   `json:"description"`
	RunKey      string   `json:"run_key"`
}

// GenerateBills handles POST /bills/generate
func (h *BillHandlers) GenerateBills(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req GenerateBillsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	dueDate, err := common.ParseDate(req.DueDate, "due_date")
	if err != nil {
		return common.SendValidationError(c, "due_date", err.Error())
	}

	genReq := &services.GenerateRequest{
		ClassName:   req.ClassName,
		RollNumber:  req.RollNumber,
		Months:      req.Months,
		DueDate:     dueDate,
		Description: req.Description,
		RunKey:      req.RunKey,
		GeneratedBy: userID,
	}

	for _, idStr := range req.StudentIDs {
		studentID, err := common.ValidateUUID(idStr, "student_ids")
		if err != nil {
			return common.SendValidationError(c, "student_ids", err.Error())
		}
		genReq.StudentIDs = append(genReq.StudentIDs, studentID)
	}
	for _, deptStr := range req.Departments {
		dept, err := models.ParseDepartment(deptStr)
		if err != nil {
			return common.SendValidationError(c, "departments", err.Error())
		}
		genReq.Departments = append(genReq.Departments, dept)
	}
	if req.TemplateID != nil && *req.TemplateID != "" {
		templateID, err := common.ValidateUUID(*req.TemplateID, "template_id")
		if err != nil {
			return common.SendValidationError(c, "template_id", err.Error())
		}
		genReq.TemplateID = &templateID
	}

	summary, err := h.billGenService.Generate(ctx, genReq)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, summary)
}

// GetBill handles GET /bills/:id
func (h *BillHandlers) GetBill(c echo.Context) error {
	ctx := c.Request().Context()

	billID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	bill, err := h.billGenService.GetBill(ctx, billID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, bill)
}

// ListBills handles GET /bills with optional unpaid_only filter
func (h *BillHandlers) ListBills(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := common.ValidatePaginationParams(
		parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var bills []*models.Bill
	if c.QueryParam("unpaid_only") == "true" {
		bills, err = h.billGenService.ListUnpaidBills(ctx, limit, offset)
	} else {
		bills, err = h.billGenService.ListBills(ctx, limit, offset)
	}
	if err != nil {
		return common.SendServerError(c, "Failed to list bills: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"bills":  bills,
		"limit":  limit,
		"offset": offset,
	})
}

// ListStudentBills handles GET /students/:id/bills
func (h *BillHandlers) ListStudentBills(c echo.Context) error {
	ctx := c.Request().Context()

	studentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	bills, err := h.billGenService.ListStudentBills(ctx, studentID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"bills": bills})
}

// PayBill handles POST /bills/:id/pay
func (h *BillHandlers) PayBill(c echo.Context) error {
	return h.transition(c, h.billGenService.Pay)
}

// RejectBill handles POST /bills/:id/reject
func (h *BillHandlers) RejectBill(c echo.Context) error {
	return h.transition(c, h.billGenService.Reject)
}

func (h *BillHandlers) transition(c echo.Context, fn func(ctx context.Context, billID uuid.UUID) (*models.Bill, error)) error {
	ctx := c.Request().Context()

	billID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	bill, err := fn(ctx, billID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, bill)
}
