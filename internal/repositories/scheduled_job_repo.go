package repositories

import (
	"context"
	"errors"
	"time"

	"gurukul/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ScheduledJobRepository interface {
	// Schedule inserts a pending job, cancelling any prior pending job
	// of the same type in the same transaction. Only one schedule may
	// be pending per job type.
	Schedule(ctx context.Context, job *models.ScheduledJob) error
	GetPending(ctx context.Context, jobType string) (*models.ScheduledJob, error)
	CancelPending(ctx context.Context, jobType string) (bool, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledJob, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

type scheduledJobRepo struct {
	db DB
}

func NewScheduledJobRepo(db DB) ScheduledJobRepository {
	return &scheduledJobRepo{db: db}
}

const scheduledJobColumns = `id, job_type, run_at, status, created_by, created_at, completed_at`

func scanScheduledJob(row pgx.Row) (*models.ScheduledJob, error) {
	job := &models.ScheduledJob{}
	err := row.Scan(&job.ID, &job.JobType, &job.RunAt, &job.Status, &job.CreatedBy, &job.CreatedAt, &job.CompletedAt)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *scheduledJobRepo) Schedule(ctx context.Context, job *models.ScheduledJob) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cancelQuery := `UPDATE scheduled_jobs SET status = 'cancelled' WHERE job_type = $1 AND status = 'pending'`
	if _, err := tx.Exec(ctx, cancelQuery, job.JobType); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO scheduled_jobs (id, job_type, run_at, status, created_by, created_at)
		VALUES ($1, $2, $3, 'pending', $4, NOW())
	`
	if _, err := tx.Exec(ctx, insertQuery, job.ID, job.JobType, job.RunAt, job.CreatedBy); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *scheduledJobRepo) GetPending(ctx context.Context, jobType string) (*models.ScheduledJob, error) {
	query := `SELECT ` + scheduledJobColumns + ` FROM scheduled_jobs WHERE job_type = $1 AND status = 'pending'`
	job, err := scanScheduledJob(r.db.QueryRow(ctx, query, jobType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

func (r *scheduledJobRepo) CancelPending(ctx context.Context, jobType string) (bool, error) {
	query := `UPDATE scheduled_jobs SET status = 'cancelled' WHERE job_type = $1 AND status = 'pending'`
	tag, err := r.db.Exec(ctx, query, jobType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *scheduledJobRepo) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledJob, error) {
	query := `SELECT ` + scheduledJobColumns + ` FROM scheduled_jobs WHERE status = 'pending' AND run_at <= $1 ORDER BY run_at`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ScheduledJob
	for rows.Next() {
		job, err := scanScheduledJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *scheduledJobRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE scheduled_jobs SET status = 'completed', completed_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
