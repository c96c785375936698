package services

import (
	"context"
	"log"
	"sort"
	"time"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"

	"github.com/google/uuid"
)

// RollNumberServiceInterface recomputes roll numbers for the whole
// roster and manages the single pending schedule for doing so later.
type RollNumberServiceInterface interface {
	AssignRollNumbers(ctx context.Context) (int, error)
	Schedule(ctx context.Context, runAt time.Time, createdBy uuid.UUID) (*models.ScheduledJob, error)
	GetSchedule(ctx context.Context) (*models.ScheduledJob, error)
	CancelSchedule(ctx context.Context) error
	// RunDueJobs executes any due pending schedule. Called by the
	// background scheduler poller.
	RunDueJobs(ctx context.Context) error
}

type rollNumberService struct {
	studentRepo repositories.StudentRepository
	jobRepo     repositories.ScheduledJobRepository
}

// NewRollNumberService creates a new roll-number assignment service
func NewRollNumberService(studentRepo repositories.StudentRepository, jobRepo repositories.ScheduledJobRepository) RollNumberServiceInterface {
	return &rollNumberService{
		studentRepo: studentRepo,
		jobRepo:     jobRepo,
	}
}

// AssignRollNumbers renumbers every student: bucket by normalized
// grade, sort by name with the unique ID as a stable tie-break, assign
// 1-based positions. Deterministic, so re-running over an unchanged
// roster is a no-op in effect.
func (s *rollNumberService) AssignRollNumbers(ctx context.Context) (int, error) {
	students, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	buckets := map[string][]*models.Student{}
	for _, student := range students {
		grade := models.NormalizeGrade(student.Grade)
		buckets[grade] = append(buckets[grade], student)
	}

	assigned := 0
	for _, bucket := range buckets {
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].Name != bucket[j].Name {
				return bucket[i].Name < bucket[j].Name
			}
			return bucket[i].UniqueID < bucket[j].UniqueID
		})

		for idx, student := range bucket {
			rollNumber := idx + 1
			if student.RollNumber != nil && *student.RollNumber == rollNumber {
				continue // already correct, skip the write
			}
			if err := s.studentRepo.UpdateRollNumber(ctx, student.ID, rollNumber); err != nil {
				return assigned, err
			}
			assigned++
		}
	}

	return len(students), nil
}

func (s *rollNumberService) Schedule(ctx context.Context, runAt time.Time, createdBy uuid.UUID) (*models.ScheduledJob, error) {
	if runAt.Before(time.Now()) {
		return nil, common.NewValidationError("date", "scheduled date must be in the future")
	}

	job := &models.ScheduledJob{
		ID:        uuid.New(),
		JobType:   models.JobTypeRollNumberAssignment,
		RunAt:     runAt,
		Status:    models.ScheduledJobPending,
		CreatedBy: createdBy,
	}

	// Schedule replaces any prior pending schedule; there is no queue.
	if err := s.jobRepo.Schedule(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *rollNumberService) GetSchedule(ctx context.Context) (*models.ScheduledJob, error) {
	job, err := s.jobRepo.GetPending(ctx, models.JobTypeRollNumberAssignment)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, common.NewNotFoundError("roll-number schedule")
	}
	return job, nil
}

func (s *rollNumberService) CancelSchedule(ctx context.Context) error {
	cancelled, err := s.jobRepo.CancelPending(ctx, models.JobTypeRollNumberAssignment)
	if err != nil {
		return err
	}
	if !cancelled {
		return common.NewNotFoundError("roll-number schedule")
	}
	return nil
}

func (s *rollNumberService) RunDueJobs(ctx context.Context) error {
	jobs, err := s.jobRepo.ListDue(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if job.JobType != models.JobTypeRollNumberAssignment {
			continue
		}
		count, err := s.AssignRollNumbers(ctx)
		if err != nil {
			log.Printf("Scheduled roll-number assignment failed: %v", err)
			continue
		}
		if err := s.jobRepo.MarkCompleted(ctx, job.ID); err != nil {
			log.Printf("Failed to mark scheduled job %s completed: %v", job.ID, err)
			continue
		}
		log.Printf("Scheduled roll-number assignment completed for %d students", count)
	}

	return nil
}
