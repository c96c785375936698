package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"

	"github.com/google/uuid"
)

// DuplicateUniqueIDError reports an admission attempt with an already
// assigned unique ID and carries the next free one instead of silently
// retrying.
type DuplicateUniqueIDError struct {
	UniqueID    string
	SuggestedID string
}

func (e *DuplicateUniqueIDError) Error() string {
	return fmt.Sprintf("unique ID '%s' is already assigned; next available is '%s'", e.UniqueID, e.SuggestedID)
}

// StudentServiceInterface handles admissions and roster queries
type StudentServiceInterface interface {
	Admit(ctx context.Context, req *AdmitStudentRequest) (*models.Student, error)
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	GetByUniqueID(ctx context.Context, uniqueID string) (*models.Student, error)
	ListStudents(ctx context.Context, limit, offset int) ([]*models.Student, error)
}

// AdmitStudentRequest is the admission payload. UniqueID is optional:
// left empty, the next serial under the school's city+year prefix is
// assigned.
type AdmitStudentRequest struct {
	UniqueID string
	Name     string
	Grade    string
	Section  string
}

type studentService struct {
	studentRepo repositories.StudentRepository
	cityCode    string
}

// NewStudentService creates a new student admission service
func NewStudentService(studentRepo repositories.StudentRepository, cityCode string) StudentServiceInterface {
	return &studentService{
		studentRepo: studentRepo,
		cityCode:    strings.ToUpper(cityCode),
	}
}

func (s *studentService) Admit(ctx context.Context, req *AdmitStudentRequest) (*models.Student, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, common.NewValidationError("name", err.Error())
	}
	grade, err := models.ValidateGrade(req.Grade)
	if err != nil {
		return nil, common.NewValidationError("grade", err.Error())
	}

	uniqueID := strings.ToUpper(strings.TrimSpace(req.UniqueID))
	if uniqueID == "" {
		uniqueID, err = s.nextUniqueID(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		existing, err := s.studentRepo.GetByUniqueID(ctx, uniqueID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			suggested, err := s.nextUniqueID(ctx)
			if err != nil {
				return nil, err
			}
			return nil, &DuplicateUniqueIDError{UniqueID: uniqueID, SuggestedID: suggested}
		}
	}

	student := &models.Student{
		ID:       uuid.New(),
		UniqueID: uniqueID,
		Name:     strings.TrimSpace(req.Name),
		Grade:    grade,
		Section:  strings.TrimSpace(req.Section),
		Payments: []models.StudentPayment{},
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// nextUniqueID produces <CITY><YY>-<NNNN>: city code, 2-digit admission
// year, zero-padded serial scoped to that prefix.
func (s *studentService) nextUniqueID(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%s%s-", s.cityCode, time.Now().Format("06"))

	last, err := s.studentRepo.LastUniqueIDForPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	serial := 1
	if last != "" {
		lastSerial, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed unique ID '%s' in roster: %w", last, err)
		}
		serial = lastSerial + 1
	}

	return fmt.Sprintf("%s%04d", prefix, serial), nil
}

func (s *studentService) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, common.NewNotFoundError("student")
	}
	return student, nil
}

func (s *studentService) GetByUniqueID(ctx context.Context, uniqueID string) (*models.Student, error) {
	student, err := s.studentRepo.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, common.NewNotFoundError("student")
	}
	return student, nil
}

func (s *studentService) ListStudents(ctx context.Context, limit, offset int) ([]*models.Student, error) {
	return s.studentRepo.List(ctx, limit, offset)
}
