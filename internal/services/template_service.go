package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"

	"github.com/google/uuid"
)

// TemplateServiceInterface manages reusable billing templates
type TemplateServiceInterface interface {
	Create(ctx context.Context, template *models.BillingTemplate) error
	Get(ctx context.Context, id uuid.UUID) (*models.BillingTemplate, error)
	Update(ctx context.Context, template *models.BillingTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*models.BillingTemplate, error)
}

type templateService struct {
	templateRepo repositories.BillingTemplateRepository
}

// NewTemplateService creates a new billing template service
func NewTemplateService(templateRepo repositories.BillingTemplateRepository) TemplateServiceInterface {
	return &templateService{templateRepo: templateRepo}
}

var descriptionTagPattern = regexp.MustCompile(`@([A-Za-z_]+)`)

func validateTemplate(template *models.BillingTemplate) error {
	if err := common.ValidateRequiredString(template.Name, "name"); err != nil {
		return common.NewValidationError("name", err.Error())
	}
	if len(template.Items) == 0 {
		return common.NewValidationError("items", "a template needs at least one fee item")
	}
	for i, item := range template.Items {
		if strings.TrimSpace(item.Name) == "" {
			return common.NewValidationError("items", fmt.Sprintf("item %d is missing a name", i+1))
		}
		if item.Amount < 0 {
			return common.NewValidationError("items", fmt.Sprintf("item '%s' has a negative amount", item.Name))
		}
	}

	// @tag references in the description and explicit tags both point
	// at the department catalog. Soft reference, validated here rather
	// than with a foreign key.
	for _, match := range descriptionTagPattern.FindAllStringSubmatch(template.Description, -1) {
		if _, err := models.ParseDepartment(strings.ToLower(match[1])); err != nil {
			return common.NewValidationError("description", fmt.Sprintf("unknown department tag '@%s'", match[1]))
		}
	}
	for _, tag := range template.Tags {
		if _, err := models.ParseDepartment(tag); err != nil {
			return common.NewValidationError("tags", err.Error())
		}
	}

	return nil
}

func (s *templateService) Create(ctx context.Context, template *models.BillingTemplate) error {
	if err := validateTemplate(template); err != nil {
		return err
	}

	existing, err := s.templateRepo.GetByName(ctx, template.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return common.NewValidationError("name", fmt.Sprintf("template '%s' already exists", template.Name))
	}

	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	if template.Tags == nil {
		template.Tags = []string{}
	}
	return s.templateRepo.Create(ctx, template)
}

func (s *templateService) Get(ctx context.Context, id uuid.UUID) (*models.BillingTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, common.NewNotFoundError("billing template")
	}
	return template, nil
}

func (s *templateService) Update(ctx context.Context, template *models.BillingTemplate) error {
	if err := validateTemplate(template); err != nil {
		return err
	}

	existing, err := s.templateRepo.GetByID(ctx, template.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return common.NewNotFoundError("billing template")
	}

	if existing.Name != template.Name {
		clash, err := s.templateRepo.GetByName(ctx, template.Name)
		if err != nil {
			return err
		}
		if clash != nil {
			return common.NewValidationError("name", fmt.Sprintf("template '%s' already exists", template.Name))
		}
	}

	return s.templateRepo.Update(ctx, template)
}

func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return common.NewNotFoundError("billing template")
	}
	return s.templateRepo.Delete(ctx, id)
}

func (s *templateService) List(ctx context.Context, activeOnly bool) ([]*models.BillingTemplate, error) {
	return s.templateRepo.List(ctx, activeOnly)
}
