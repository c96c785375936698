package handlers

import (
	"net/http"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ClassPaymentHandlers handles HTTP requests for per-class fee configs
type ClassPaymentHandlers struct {
	classPaymentRepo repositories.ClassPaymentRepository
}

// NewClassPaymentHandlers creates a new class payment handlers instance
func NewClassPaymentHandlers(classPaymentRepo repositories.ClassPaymentRepository) *ClassPaymentHandlers {
	return &ClassPaymentHandlers{classPaymentRepo: classPaymentRepo}
}

// ClassPaymentRequest is the upsert payload for one class
type ClassPaymentRequest struct {
	ClassName string `json:"class_name"`
	Payments  []struct {
		Department string  `json:"department"`
		Amount     float64 `json:"amount"`
		Editable   bool    `json:"editable"`
	} `json:"payments"`
}

// UpsertClassPayment handles PUT /class-payments
func (h *ClassPaymentHandlers) UpsertClassPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req ClassPaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	className, err := models.ValidateGrade(req.ClassName)
	if err != nil {
		return common.SendValidationError(c, "class_name", err.Error())
	}
	if len(req.Payments) == 0 {
		return common.SendValidationError(c, "payments", "at least one department amount is required")
	}

	seen := map[models.Department]bool{}
	items := make([]models.PaymentItem, 0, len(req.Payments))
	for _, p := range req.Payments {
		dept, err := models.ParseDepartment(p.Department)
		if err != nil {
			return common.SendValidationError(c, "payments", err.Error())
		}
		if seen[dept] {
			return common.SendValidationError(c, "payments", "duplicate department '"+string(dept)+"'")
		}
		seen[dept] = true
		if p.Amount < 0 {
			return common.SendValidationError(c, "payments", "amount for '"+string(dept)+"' must not be negative")
		}
		items = append(items, models.PaymentItem{
			Department: dept,
			Amount:     p.Amount,
			Editable:   p.Editable,
		})
	}

	config := &models.ClassPayment{
		ID:        uuid.New(),
		ClassName: className,
		Payments:  items,
	}
	if err := h.classPaymentRepo.Upsert(ctx, config); err != nil {
		return common.SendServerError(c, "Failed to save class payment config: "+err.Error())
	}

	return c.JSON(http.StatusOK, config)
}

// GetClassPayment handles GET /class-payments/:class
func (h *ClassPaymentHandlers) GetClassPayment(c echo.Context) error {
	ctx := c.Request().Context()

	className, err := models.ValidateGrade(c.Param("class"))
	if err != nil {
		return common.SendValidationError(c, "class", err.Error())
	}

	config, err := h.classPaymentRepo.GetByClass(ctx, className)
	if err != nil {
		return common.SendServerError(c, "Failed to load class payment config: "+err.Error())
	}
	if config == nil {
		return common.SendNotFoundError(c, "class payment config")
	}

	return c.JSON(http.StatusOK, config)
}

// ListClassPayments handles GET /class-payments
func (h *ClassPaymentHandlers) ListClassPayments(c echo.Context) error {
	ctx := c.Request().Context()

	configs, err := h.classPaymentRepo.List(ctx)
	if err != nil {
		return common.SendServerError(c, "Failed to list class payment configs: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"configs": configs})
}

// DeleteClassPayment handles DELETE /class-payments/:class
func (h *ClassPaymentHandlers) DeleteClassPayment(c echo.Context) error {
	ctx := c.Request().Context()

	className, err := models.ValidateGrade(c.Param("class"))
	if err != nil {
		return common.SendValidationError(c, "class", err.Error())
	}

	if err := h.classPaymentRepo.Delete(ctx, className); err != nil {
		return common.SendServerError(c, "Failed to delete class payment config: "+err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
