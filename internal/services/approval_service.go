package services

import (
	"context"
	"log"
	"time"

	"gurukul/internal/caching"
	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"

	"github.com/google/uuid"
)

// ApprovalServiceInterface defines the finance-request approval workflow
type ApprovalServiceInterface interface {
	Submit(ctx context.Context, entry *models.LedgerEntry) error
	Approve(ctx context.Context, entryID, reviewerID uuid.UUID, note *string) (*models.LedgerEntry, error)
	Decline(ctx context.Context, entryID, reviewerID uuid.UUID, note *string) (*models.LedgerEntry, error)
	Edit(ctx context.Context, entryID, requesterID uuid.UUID, patch *EntryPatch) (*models.LedgerEntry, error)
	Delete(ctx context.Context, entryID, actorID uuid.UUID, actorRole models.UserRole) error
	BulkApprove(ctx context.Context, reviewerID uuid.UUID, note *string) (int64, error)
	BulkDecline(ctx context.Context, reviewerID uuid.UUID, note *string) (int64, error)
	GetEntry(ctx context.Context, entryID uuid.UUID) (*models.LedgerEntry, error)
	ListEntries(ctx context.Context, filter repositories.LedgerFilter) ([]*models.LedgerEntry, error)
}

// EntryPatch carries the fields a requester may change while an entry
// is still pending. Entry type and category are fixed at submission;
// a miscategorized request is deleted and resubmitted.
type EntryPatch struct {
	Date        time.Time
	TimeOfDay   string
	Amount      float64
	Description string
	PaymentMode models.PaymentMode
	FeePeriod   *string
}

type approvalService struct {
	ledgerRepo  repositories.LedgerRepository
	studentRepo repositories.StudentRepository
	cacheSvc    caching.CacheService
}

// NewApprovalService creates a new approval workflow service
func NewApprovalService(ledgerRepo repositories.LedgerRepository, studentRepo repositories.StudentRepository, cacheSvc caching.CacheService) ApprovalServiceInterface {
	return &approvalService{
		ledgerRepo:  ledgerRepo,
		studentRepo: studentRepo,
		cacheSvc:    cacheSvc,
	}
}

// validateEntry checks required fields and the revenue/expense
// exclusivity invariant.
func validateEntry(entry *models.LedgerEntry) error {
	if _, err := models.ParseEntryType(string(entry.EntryType)); err != nil {
		return common.NewValidationError("entry_type", err.Error())
	}
	if _, err := models.ParseEntryCategory(string(entry.Category), entry.EntryType); err != nil {
		return common.NewValidationError("category", err.Error())
	}
	if entry.Date.IsZero() {
		return common.NewValidationError("date", "date is required")
	}
	if err := common.ValidateTimeOfDay(entry.TimeOfDay, "time_of_day"); err != nil {
		return common.NewValidationError("time_of_day", err.Error())
	}
	if _, err := models.ParsePaymentMode(string(entry.PaymentMode)); err != nil {
		return common.NewValidationError("payment_mode", err.Error())
	}
	if err := common.ValidateRequiredString(entry.Description, "description"); err != nil {
		return common.NewValidationError("description", err.Error())
	}
	if entry.RequestedBy == uuid.Nil {
		return common.NewValidationError("requested_by", "requester identity is required")
	}

	switch entry.EntryType {
	case models.EntryTypeRevenue:
		if entry.Expenses != 0 {
			return common.NewValidationError("expenses", "a revenue entry cannot carry an expense amount")
		}
		if entry.Earnings <= 0 {
			return common.NewValidationError("earnings", "earnings must be positive for a revenue entry")
		}
	case models.EntryTypeExpense:
		if entry.Earnings != 0 {
			return common.NewValidationError("earnings", "an expense entry cannot carry an earnings amount")
		}
		if entry.Expenses <= 0 {
			return common.NewValidationError("expenses", "expenses must be positive for an expense entry")
		}
	}

	return nil
}

func (s *approvalService) Submit(ctx context.Context, entry *models.LedgerEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.Status = models.EntryStatusPending
	entry.MonthLabel = entry.Date.Format("Jan")
	if entry.Attachments == nil {
		entry.Attachments = []string{}
	}

	if entry.StudentUniqueID != nil {
		student, err := s.studentRepo.GetByUniqueID(ctx, *entry.StudentUniqueID)
		if err != nil {
			return err
		}
		if student == nil {
			return common.NewNotFoundError("student")
		}
	}

	return s.ledgerRepo.Create(ctx, entry)
}

func (s *approvalService) Approve(ctx context.Context, entryID, reviewerID uuid.UUID, note *string) (*models.LedgerEntry, error) {
	entry, err := s.review(ctx, entryID, reviewerID, models.EntryStatusApproved, note)
	if err != nil {
		return nil, err
	}

	// A payment lands on the student record only once the entry is
	// approved, never at submission time.
	if entry.EntryType == models.EntryTypeRevenue && entry.StudentUniqueID != nil {
		if err := s.recordStudentPayment(ctx, entry); err != nil {
			log.Printf("Failed to record student payment for entry %s: %v", entry.ID, err)
		}
	}

	s.invalidateReports(ctx)
	return entry, nil
}

func (s *approvalService) Decline(ctx context.Context, entryID, reviewerID uuid.UUID, note *string) (*models.LedgerEntry, error) {
	entry, err := s.review(ctx, entryID, reviewerID, models.EntryStatusDeclined, note)
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return entry, nil
}

func (s *approvalService) review(ctx context.Context, entryID, reviewerID uuid.UUID, status models.EntryStatus, note *string) (*models.LedgerEntry, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, common.NewNotFoundError("ledger entry")
	}
	if entry.Status != models.EntryStatusPending {
		return nil, common.NewInvalidStateError("ledger entry", string(entry.Status), "review")
	}

	// Conditional update guards against two reviewers racing: only one
	// transition out of pending can win.
	ok, err := s.ledgerRepo.SetStatusIfPending(ctx, entryID, status, reviewerID, note)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.NewInvalidStateError("ledger entry", "settled", "review")
	}

	return s.ledgerRepo.GetByID(ctx, entryID)
}

func (s *approvalService) recordStudentPayment(ctx context.Context, entry *models.LedgerEntry) error {
	student, err := s.studentRepo.GetByUniqueID(ctx, *entry.StudentUniqueID)
	if err != nil {
		return err
	}
	if student == nil {
		return common.NewNotFoundError("student")
	}

	payment := models.StudentPayment{
		Amount:        entry.Earnings,
		Date:          entry.Date,
		Description:   entry.Description,
		LedgerEntryID: entry.ID,
	}
	return s.studentRepo.AppendPayment(ctx, student.ID, payment)
}

func (s *approvalService) Edit(ctx context.Context, entryID, requesterID uuid.UUID, patch *EntryPatch) (*models.LedgerEntry, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, common.NewNotFoundError("ledger entry")
	}
	if entry.Status != models.EntryStatusPending {
		return nil, common.NewInvalidStateError("ledger entry", string(entry.Status), "edit")
	}
	if entry.RequestedBy != requesterID {
		return nil, common.NewAuthorizationError("only the original requester may edit a pending entry")
	}

	entry.Date = patch.Date
	entry.TimeOfDay = patch.TimeOfDay
	entry.MonthLabel = patch.Date.Format("Jan")
	entry.Description = patch.Description
	entry.PaymentMode = patch.PaymentMode
	entry.FeePeriod = patch.FeePeriod
	if entry.EntryType == models.EntryTypeRevenue {
		entry.Earnings = patch.Amount
		entry.Expenses = 0
	} else {
		entry.Expenses = patch.Amount
		entry.Earnings = 0
	}

	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	if err := s.ledgerRepo.UpdateEditableFields(ctx, entry); err != nil {
		return nil, err
	}
	return s.ledgerRepo.GetByID(ctx, entryID)
}

func (s *approvalService) Delete(ctx context.Context, entryID, actorID uuid.UUID, actorRole models.UserRole) error {
	entry, err := s.ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return common.NewNotFoundError("ledger entry")
	}
	if entry.Status != models.EntryStatusPending {
		return common.NewInvalidStateError("ledger entry", string(entry.Status), "delete")
	}
	if entry.RequestedBy != actorID && actorRole != models.RoleChairman && actorRole != models.RoleAdmin {
		return common.NewAuthorizationError("only the requester or an administrator may delete a pending entry")
	}

	return s.ledgerRepo.Delete(ctx, entryID)
}

func (s *approvalService) BulkApprove(ctx context.Context, reviewerID uuid.UUID, note *string) (int64, error) {
	entries, err := s.ledgerRepo.BulkSetStatus(ctx, models.EntryStatusApproved, reviewerID, note)
	if err != nil {
		return 0, err
	}

	// Bulk approval carries the same side effect as a single approval:
	// revenue entries tied to a student land on that student's payment
	// history.
	for _, entry := range entries {
		if entry.EntryType == models.EntryTypeRevenue && entry.StudentUniqueID != nil {
			if err := s.recordStudentPayment(ctx, entry); err != nil {
				log.Printf("Failed to record student payment for entry %s: %v", entry.ID, err)
			}
		}
	}

	s.invalidateReports(ctx)
	return int64(len(entries)), nil
}

func (s *approvalService) BulkDecline(ctx context.Context, reviewerID uuid.UUID, note *string) (int64, error) {
	entries, err := s.ledgerRepo.BulkSetStatus(ctx, models.EntryStatusDeclined, reviewerID, note)
	if err != nil {
		return 0, err
	}
	s.invalidateReports(ctx)
	return int64(len(entries)), nil
}

func (s *approvalService) GetEntry(ctx context.Context, entryID uuid.UUID) (*models.LedgerEntry, error) {
	entry, err := s.ledgerRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, common.NewNotFoundError("ledger entry")
	}
	return entry, nil
}

func (s *approvalService) ListEntries(ctx context.Context, filter repositories.LedgerFilter) ([]*models.LedgerEntry, error) {
	return s.ledgerRepo.List(ctx, filter)
}

func (s *approvalService) invalidateReports(ctx context.Context) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.InvalidateReports(ctx); err != nil {
		log.Printf("Failed to invalidate report cache: %v", err)
	}
}
