package handlers

import (
	"net/http"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// BillingTemplateHandlers handles HTTP requests for billing templates
type BillingTemplateHandlers struct {
	templateService services.TemplateServiceInterface
}

// NewBillingTemplateHandlers creates a new billing template handlers instance
func NewBillingTemplateHandlers(templateService services.TemplateServiceInterface) *BillingTemplateHandlers {
	return &BillingTemplateHandlers{templateService: templateService}
}

// TemplateRequest is the create/update payload
type TemplateRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Items       []models.TemplateItem `json:"items"`
	Tags        []string              `json:"tags"`
	Active      *bool                 `json:"active"`
}

// CreateTemplate handles POST /billing-templates
func (h *BillingTemplateHandlers) CreateTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	var req TemplateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	template := &models.BillingTemplate{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Items:       req.Items,
		Tags:        req.Tags,
		Active:      true,
	}
	if req.Active != nil {
		template.Active = *req.Active
	}

	if err := h.templateService.Create(ctx, template); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, template)
}

// GetTemplate handles GET /billing-templates/:id
func (h *BillingTemplateHandlers) GetTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	templateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	template, err := h.templateService.Get(ctx, templateID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, template)
}

// UpdateTemplate handles PUT /billing-templates/:id
func (h *BillingTemplateHandlers) UpdateTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	templateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req TemplateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	template := &models.BillingTemplate{
		ID:          templateID,
		Name:        req.Name,
		Description: req.Description,
		Items:       req.Items,
		Tags:        req.Tags,
		Active:      true,
	}
	if req.Active != nil {
		template.Active = *req.Active
	}

	if err := h.templateService.Update(ctx, template); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, template)
}

// DeleteTemplate handles DELETE /billing-templates/:id
func (h *BillingTemplateHandlers) DeleteTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	templateID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.templateService.Delete(ctx, templateID); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListTemplates handles GET /billing-templates?active_only=true
func (h *BillingTemplateHandlers) ListTemplates(c echo.Context) error {
	ctx := c.Request().Context()

	templates, err := h.templateService.List(ctx, c.QueryParam("active_only") == "true")
	if err != nil {
		return common.SendServerError(c, "Failed to list billing templates: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"templates": templates})
}
