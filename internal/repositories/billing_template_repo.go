package repositories

import (
	"context"
	"errors"

	"gurukul/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BillingTemplateRepository interface {
	Create(ctx context.Context, template *models.BillingTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BillingTemplate, error)
	GetByName(ctx context.Context, name string) (*models.BillingTemplate, error)
	Update(ctx context.Context, template *models.BillingTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]*models.BillingTemplate, error)
}

type billingTemplateRepo struct {
	db DB
}

func NewBillingTemplateRepo(db DB) BillingTemplateRepository {
	return &billingTemplateRepo{db: db}
}

const templateColumns = `id, name, description, items, tags, active, created_at, updated_at`

func scanTemplate(row pgx.Row) (*models.BillingTemplate, error) {
	template := &models.BillingTemplate{}
	err := row.Scan(&template.ID, &template.Name, &template.Description, &template.Items, &template.Tags, &template.Active, &template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return template, nil
}

func (r *billingTemplateRepo) Create(ctx context.Context, template *models.BillingTemplate) error {
	query := `
		INSERT INTO billing_templates (id, name, description, items, tags, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, template.ID, template.Name, template.Description, template.Items, template.Tags, template.Active)
	return err
}

func (r *billingTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BillingTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM billing_templates WHERE id = $1`
	template, err := scanTemplate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return template, nil
}

func (r *billingTemplateRepo) GetByName(ctx context.Context, name string) (*models.BillingTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM billing_templates WHERE name = $1`
	template, err := scanTemplate(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return template, nil
}

func (r *billingTemplateRepo) Update(ctx context.Context, template *models.BillingTemplate) error {
	query := `
		UPDATE billing_templates
		SET name = $1, description = $2, items = $3, tags = $4, active = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, template.Name, template.Description, template.Items, template.Tags, template.Active, template.ID)
	return err
}

func (r *billingTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM billing_templates WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *billingTemplateRepo) List(ctx context.Context, activeOnly bool) ([]*models.BillingTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM billing_templates`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.BillingTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}
