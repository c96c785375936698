package repositories

import (
	"context"
	"errors"
	"time"

	"gurukul/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateRunKey reports that a generation run with the same run
// key already committed.
var ErrDuplicateRunKey = errors.New("duplicate generation run key")

// uniqueViolationCode is the Postgres error code for a unique
// constraint violation.
const uniqueViolationCode = "23505"

type BillRepository interface {
	// InsertGeneration writes one bill run and all of its bills in a
	// single transaction. The unique run_key constraint makes an
	// identical re-run fail as a whole instead of duplicating bills;
	// such a failure surfaces as ErrDuplicateRunKey.
	InsertGeneration(ctx context.Context, run *models.BillRun, bills []*models.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	List(ctx context.Context, limit, offset int) ([]*models.Bill, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Bill, error)
	ListUnpaid(ctx context.Context, limit, offset int) ([]*models.Bill, error)
	// SetStatusIfPending transitions one bill out of pending. Returns
	// false if the bill was already settled.
	SetStatusIfPending(ctx context.Context, id uuid.UUID, status models.BillStatus, paidDate *time.Time) (bool, error)
	// MarkOverdue flips every pending bill past its due date and
	// returns the affected count.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	RunKeyExists(ctx context.Context, runKey string) (bool, error)
}

type billRepo struct {
	db DB
}

func NewBillRepo(db DB) BillRepository {
	return &billRepo{db: db}
}

const billColumns = `id, student_id, template_id, run_id, status, due_date, paid_date, description, total_amount, departments, line_items, generated_by, created_at`

func scanBill(row pgx.Row) (*models.Bill, error) {
	bill := &models.Bill{}
	err := row.Scan(&bill.ID, &bill.StudentID, &bill.TemplateID, &bill.RunID, &bill.Status, &bill.DueDate, &bill.PaidDate, &bill.Description, &bill.TotalAmount, &bill.Departments, &bill.LineItems, &bill.GeneratedBy, &bill.CreatedAt)
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func (r *billRepo) InsertGeneration(ctx context.Context, run *models.BillRun, bills []*models.Bill) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	runQuery := `
		INSERT INTO bill_runs (id, run_key, bills_created, student_count, total_amount, generated_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	if _, err := tx.Exec(ctx, runQuery, run.ID, run.RunKey, run.BillsCreated, run.StudentCount, run.TotalAmount, run.GeneratedBy); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateRunKey
		}
		return err
	}

	billQuery := `
		INSERT INTO bills (id, student_id, template_id, run_id, status, due_date, description, total_amount, departments, line_items, generated_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`
	for _, bill := range bills {
		if _, err := tx.Exec(ctx, billQuery, bill.ID, bill.StudentID, bill.TemplateID, bill.RunID, bill.Status, bill.DueDate, bill.Description, bill.TotalAmount, bill.Departments, bill.LineItems, bill.GeneratedBy); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *billRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`
	bill, err := scanBill(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bill, nil
}

func (r *billRepo) List(ctx context.Context, limit, offset int) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.queryBills(ctx, query, limit, offset)
}

func (r *billRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE student_id = $1 ORDER BY due_date DESC`
	return r.queryBills(ctx, query, studentID)
}

func (r *billRepo) ListUnpaid(ctx context.Context, limit, offset int) ([]*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE status IN ('pending', 'overdue') ORDER BY due_date ASC LIMIT $1 OFFSET $2`
	return r.queryBills(ctx, query, limit, offset)
}

func (r *billRepo) queryBills(ctx context.Context, query string, args ...interface{}) ([]*models.Bill, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

func (r *billRepo) SetStatusIfPending(ctx context.Context, id uuid.UUID, status models.BillStatus, paidDate *time.Time) (bool, error) {
	query := `
		UPDATE bills
		SET status = $1, paid_date = $2
		WHERE id = $3 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, status, paidDate, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *billRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE bills SET status = 'overdue' WHERE status = 'pending' AND due_date < $1`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *billRepo) RunKeyExists(ctx context.Context, runKey string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bill_runs WHERE run_key = $1)`
	if err := r.db.QueryRow(ctx, query, runKey).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
