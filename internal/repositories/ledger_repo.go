package repositories

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gurukul/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerFilter narrows ledger entry listings.
type LedgerFilter struct {
	Status    *models.EntryStatus
	EntryType *models.EntryType
	Category  *models.EntryCategory
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error)
	UpdateEditableFields(ctx context.Context, entry *models.LedgerEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter LedgerFilter) ([]*models.LedgerEntry, error)
	ListApprovedInRange(ctx context.Context, startDate, endDate time.Time, category *models.EntryCategory) ([]*models.LedgerEntry, error)
	CountByStatus(ctx context.Context, status models.EntryStatus) (int, error)
	// SetStatusIfPending transitions a single entry out of pending.
	// Returns false when the entry was no longer pending, so two
	// racing reviewers cannot both win.
	SetStatusIfPending(ctx context.Context, id uuid.UUID, status models.EntryStatus, reviewerID uuid.UUID, note *string) (bool, error)
	// BulkSetStatus settles every currently-pending entry in one
	// statement and returns the settled rows, so callers can apply
	// per-entry side effects.
	BulkSetStatus(ctx context.Context, status models.EntryStatus, reviewerID uuid.UUID, note *string) ([]*models.LedgerEntry, error)
}

type ledgerRepo struct {
	db DB
}

func NewLedgerRepo(db DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

const ledgerColumns = `id, entry_type, category, date, time_of_day, month_label, earnings, expenses, description, payment_mode, fee_period, attachments, status, requested_by, reviewed_by, review_note, reviewed_at, student_unique_id, created_at, updated_at`

func scanLedgerEntry(row pgx.Row) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{}
	err := row.Scan(&entry.ID, &entry.EntryType, &entry.Category, &entry.Date, &entry.TimeOfDay, &entry.MonthLabel, &entry.Earnings, &entry.Expenses, &entry.Description, &entry.PaymentMode, &entry.FeePeriod, &entry.Attachments, &entry.Status, &entry.RequestedBy, &entry.ReviewedBy, &entry.ReviewNote, &entry.ReviewedAt, &entry.StudentUniqueID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *ledgerRepo) Create(ctx context.Context, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, entry_type, category, date, time_of_day, month_label, earnings, expenses, description, payment_mode, fee_period, attachments, status, requested_by, student_unique_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.EntryType, entry.Category, entry.Date, entry.TimeOfDay, entry.MonthLabel, entry.Earnings, entry.Expenses, entry.Description, entry.PaymentMode, entry.FeePeriod, entry.Attachments, entry.Status, entry.RequestedBy, entry.StudentUniqueID)
	return err
}

func (r *ledgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`
	entry, err := scanLedgerEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// UpdateEditableFields replaces the mutable fields of a pending entry.
// Identity, type, category, requester and attachments are never
// touched here.
func (r *ledgerRepo) UpdateEditableFields(ctx context.Context, entry *models.LedgerEntry) error {
	query := `
		UPDATE ledger_entries
		SET date = $1, time_of_day = $2, month_label = $3, earnings = $4, expenses = $5, description = $6, payment_mode = $7, fee_period = $8, updated_at = NOW()
		WHERE id = $9 AND status = 'pending'
	`
	_, err := r.db.Exec(ctx, query, entry.Date, entry.TimeOfDay, entry.MonthLabel, entry.Earnings, entry.Expenses, entry.Description, entry.PaymentMode, entry.FeePeriod, entry.ID)
	return err
}

func (r *ledgerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM ledger_entries WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *ledgerRepo) List(ctx context.Context, filter LedgerFilter) ([]*models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil {
		query += ` AND status = $` + strconv.Itoa(argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EntryType != nil {
		query += ` AND entry_type = $` + strconv.Itoa(argIdx)
		args = append(args, *filter.EntryType)
		argIdx++
	}
	if filter.Category != nil {
		query += ` AND category = $` + strconv.Itoa(argIdx)
		args = append(args, *filter.Category)
		argIdx++
	}
	if filter.StartDate != nil {
		query += ` AND date >= $` + strconv.Itoa(argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		query += ` AND date <= $` + strconv.Itoa(argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += ` ORDER BY date DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(argIdx)
		args = append(args, filter.Limit)
		argIdx++
		query += ` OFFSET $` + strconv.Itoa(argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *ledgerRepo) ListApprovedInRange(ctx context.Context, startDate, endDate time.Time, category *models.EntryCategory) ([]*models.LedgerEntry, error) {
	status := models.EntryStatusApproved
	return r.List(ctx, LedgerFilter{
		Status:    &status,
		Category:  category,
		StartDate: &startDate,
		EndDate:   &endDate,
	})
}

func (r *ledgerRepo) CountByStatus(ctx context.Context, status models.EntryStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM ledger_entries WHERE status = $1`
	if err := r.db.QueryRow(ctx, query, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ledgerRepo) SetStatusIfPending(ctx context.Context, id uuid.UUID, status models.EntryStatus, reviewerID uuid.UUID, note *string) (bool, error) {
	query := `
		UPDATE ledger_entries
		SET status = $1, reviewed_by = $2, review_note = $3, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $4 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, status, reviewerID, note, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ledgerRepo) BulkSetStatus(ctx context.Context, status models.EntryStatus, reviewerID uuid.UUID, note *string) ([]*models.LedgerEntry, error) {
	query := `
		UPDATE ledger_entries
		SET status = $1, reviewed_by = $2, review_note = $3, reviewed_at = NOW(), updated_at = NOW()
		WHERE status = 'pending'
		RETURNING ` + ledgerColumns
	rows, err := r.db.Query(ctx, query, status, reviewerID, note)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
