package services

import (
	"context"
	"time"

	"gurukul/internal/models"
	"gurukul/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) UpdateEditableFields(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerRepository) List(ctx context.Context, filter repositories.LedgerFilter) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListApprovedInRange(ctx context.Context, startDate, endDate time.Time, category *models.EntryCategory) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, startDate, endDate, category)
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) CountByStatus(ctx context.Context, status models.EntryStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) SetStatusIfPending(ctx context.Context, id uuid.UUID, status models.EntryStatus, reviewerID uuid.UUID, note *string) (bool, error) {
	args := m.Called(ctx, id, status, reviewerID, note)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) BulkSetStatus(ctx context.Context, status models.EntryStatus, reviewerID uuid.UUID, note *string) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, status, reviewerID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) Create(ctx context.Context, student *models.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepository) GetByUniqueID(ctx context.Context, uniqueID string) (*models.Student, error) {
	args := m.Called(ctx, uniqueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepository) List(ctx context.Context, limit, offset int) ([]*models.Student, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Student), args.Error(1)
}

func (m *MockStudentRepository) ListAll(ctx context.Context) ([]*models.Student, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Student), args.Error(1)
}

func (m *MockStudentRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Student, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.Student), args.Error(1)
}

func (m *MockStudentRepository) ListByClass(ctx context.Context, className string) ([]*models.Student, error) {
	args := m.Called(ctx, className)
	return args.Get(0).([]*models.Student), args.Error(1)
}

func (m *MockStudentRepository) UpdateRollNumber(ctx context.Context, id uuid.UUID, rollNumber int) error {
	args := m.Called(ctx, id, rollNumber)
	return args.Error(0)
}

func (m *MockStudentRepository) AppendPayment(ctx context.Context, id uuid.UUID, payment models.StudentPayment) error {
	args := m.Called(ctx, id, payment)
	return args.Error(0)
}

func (m *MockStudentRepository) LastUniqueIDForPrefix(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetReport(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetReport(ctx context.Context, key string, report interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, report, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateReports(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) InsertGeneration(ctx context.Context, run *models.BillRun, bills []*models.Bill) error {
	args := m.Called(ctx, run, bills)
	return args.Error(0)
}

func (m *MockBillRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillRepository) List(ctx context.Context, limit, offset int) ([]*models.Bill, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Bill), args.Error(1)
}

func (m *MockBillRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Bill, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]*models.Bill), args.Error(1)
}

func (m *MockBillRepository) ListUnpaid(ctx context.Context, limit, offset int) ([]*models.Bill, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Bill), args.Error(1)
}

func (m *MockBillRepository) SetStatusIfPending(ctx context.Context, id uuid.UUID, status models.BillStatus, paidDate *time.Time) (bool, error) {
	args := m.Called(ctx, id, status, paidDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockBillRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) RunKeyExists(ctx context.Context, runKey string) (bool, error) {
	args := m.Called(ctx, runKey)
	return args.Bool(0), args.Error(1)
}

type MockClassPaymentRepository struct {
	mock.Mock
}

func (m *MockClassPaymentRepository) Upsert(ctx context.Context, config *models.ClassPayment) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockClassPaymentRepository) GetByClass(ctx context.Context, className string) (*models.ClassPayment, error) {
	args := m.Called(ctx, className)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClassPayment), args.Error(1)
}

func (m *MockClassPaymentRepository) List(ctx context.Context) ([]*models.ClassPayment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.ClassPayment), args.Error(1)
}

func (m *MockClassPaymentRepository) Delete(ctx context.Context, className string) error {
	args := m.Called(ctx, className)
	return args.Error(0)
}

type MockBillingTemplateRepository struct {
	mock.Mock
}

func (m *MockBillingTemplateRepository) Create(ctx context.Context, template *models.BillingTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockBillingTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BillingTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillingTemplate), args.Error(1)
}

func (m *MockBillingTemplateRepository) GetByName(ctx context.Context, name string) (*models.BillingTemplate, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillingTemplate), args.Error(1)
}

func (m *MockBillingTemplateRepository) Update(ctx context.Context, template *models.BillingTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockBillingTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBillingTemplateRepository) List(ctx context.Context, activeOnly bool) ([]*models.BillingTemplate, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]*models.BillingTemplate), args.Error(1)
}

type MockScheduledJobRepository struct {
	mock.Mock
}

func (m *MockScheduledJobRepository) Schedule(ctx context.Context, job *models.ScheduledJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockScheduledJobRepository) GetPending(ctx context.Context, jobType string) (*models.ScheduledJob, error) {
	args := m.Called(ctx, jobType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduledJob), args.Error(1)
}

func (m *MockScheduledJobRepository) CancelPending(ctx context.Context, jobType string) (bool, error) {
	args := m.Called(ctx, jobType)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduledJobRepository) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledJob, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*models.ScheduledJob), args.Error(1)
}

func (m *MockScheduledJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
