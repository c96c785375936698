package models

import (
	"time"

	"github.com/google/uuid"
)

// Job types known to the background scheduler.
const (
	JobTypeRollNumberAssignment = "roll_number_assignment"
)

// ScheduledJobStatus is the lifecycle of a one-shot scheduled job.
type ScheduledJobStatus string

const (
	ScheduledJobPending   ScheduledJobStatus = "pending"
	ScheduledJobCompleted ScheduledJobStatus = "completed"
	ScheduledJobCancelled ScheduledJobStatus = "cancelled"
)

// ScheduledJob is a persisted one-shot job. At most one pending row
// exists per job type: scheduling again cancels the previous one.
// Persisting the schedule keeps it across restarts.
type ScheduledJob struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	JobType     string             `json:"job_type" db:"job_type"`
	RunAt       time.Time          `json:"run_at" db:"run_at"`
	Status      ScheduledJobStatus `json:"status" db:"status"`
	CreatedBy   uuid.UUID          `json:"created_by" db:"created_by"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	CompletedAt *time.Time         `json:"completed_at" db:"completed_at"`
}
