package repositories

import (
	"context"
	"errors"

	"gurukul/internal/models"

	"github.com/jackc/pgx/v5"
)

type ClassPaymentRepository interface {
	Upsert(ctx context.Context, config *models.ClassPayment) error
	GetByClass(ctx context.Context, className string) (*models.ClassPayment, error)
	List(ctx context.Context) ([]*models.ClassPayment, error)
	Delete(ctx context.Context, className string) error
}

type classPaymentRepo struct {
	db DB
}

func NewClassPaymentRepo(db DB) ClassPaymentRepository {
	return &classPaymentRepo{db: db}
}

// Upsert keeps one config per class: re-configuring a grade replaces
// its payment tuples.
func (r *classPaymentRepo) Upsert(ctx context.Context, config *models.ClassPayment) error {
	query := `
		INSERT INTO class_payments (id, class_name, payments, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (class_name)
		DO UPDATE SET payments = EXCLUDED.payments, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, config.ID, config.ClassName, config.Payments)
	return err
}

func (r *classPaymentRepo) GetByClass(ctx context.Context, className string) (*models.ClassPayment, error) {
	config := &models.ClassPayment{}
	query := `SELECT id, class_name, payments, created_at, updated_at FROM class_payments WHERE class_name = $1`
	err := r.db.QueryRow(ctx, query, className).Scan(&config.ID, &config.ClassName, &config.Payments, &config.CreatedAt, &config.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return config, nil
}

func (r *classPaymentRepo) List(ctx context.Context) ([]*models.ClassPayment, error) {
	query := `SELECT id, class_name, payments, created_at, updated_at FROM class_payments ORDER BY class_name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.ClassPayment
	for rows.Next() {
		config := &models.ClassPayment{}
		if err := rows.Scan(&config.ID, &config.ClassName, &config.Payments, &config.CreatedAt, &config.UpdatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	return configs, rows.Err()
}

func (r *classPaymentRepo) Delete(ctx context.Context, className string) error {
	query := `DELETE FROM class_payments WHERE class_name = $1`
	_, err := r.db.Exec(ctx, query, className)
	return err
}
