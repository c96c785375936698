package services

import (
	"context"
	"testing"
	"time"

	"gurukul/internal/common"
	"gurukul/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ApprovalServiceTestSuite struct {
	suite.Suite
	mockLedger  *MockLedgerRepository
	mockStudent *MockStudentRepository
	mockCache   *MockCacheService
	service     ApprovalServiceInterface
	ctx         context.Context
	requesterID uuid.UUID
	reviewerID  uuid.UUID
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.mockLedger = &MockLedgerRepository{}
	suite.mockStudent = &MockStudentRepository{}
	suite.mockCache = &MockCacheService{}
	suite.service = NewApprovalService(suite.mockLedger, suite.mockStudent, suite.mockCache)
	suite.ctx = context.Background()
	suite.requesterID = uuid.New()
	suite.reviewerID = uuid.New()

	suite.mockLedger.Test(suite.T())
	suite.mockStudent.Test(suite.T())
	suite.mockCache.Test(suite.T())
}

func (suite *ApprovalServiceTestSuite) TearDownTest() {
	suite.mockLedger.AssertExpectations(suite.T())
	suite.mockStudent.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}

func (suite *ApprovalServiceTestSuite) validRevenueEntry() *models.LedgerEntry {
	return &models.LedgerEntry{
		EntryType:   models.EntryTypeRevenue,
		Category:    models.CategorySchoolFees,
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		TimeOfDay:   "10:30",
		Earnings:    1500,
		Description: "Term fee installment",
		PaymentMode: models.PaymentModeCash,
		RequestedBy: suite.requesterID,
	}
}

func (suite *ApprovalServiceTestSuite) TestSubmit_Success() {
	entry := suite.validRevenueEntry()

	suite.mockLedger.On("Create", suite.ctx, mock.AnythingOfType("*models.LedgerEntry")).Return(nil).Run(func(args mock.Arguments) {
		created := args.Get(1).(*models.LedgerEntry)
		assert.Equal(suite.T(), models.EntryStatusPending, created.Status)
		assert.Equal(suite.T(), "Mar", created.MonthLabel)
		assert.NotEqual(suite.T(), uuid.Nil, created.ID)
		assert.NotNil(suite.T(), created.Attachments)
	})

	err := suite.service.Submit(suite.ctx, entry)
	assert.NoError(suite.T(), err)
}

func (suite *ApprovalServiceTestSuite) TestSubmit_RevenueWithExpenseAmount() {
	entry := suite.validRevenueEntry()
	entry.Expenses = 200

	err := suite.service.Submit(suite.ctx, entry)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *ApprovalServiceTestSuite) TestSubmit_ExpenseCategoryOnRevenueEntry() {
	entry := suite.validRevenueEntry()
	entry.Category = models.CategorySalaries

	err := suite.service.Submit(suite.ctx, entry)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *ApprovalServiceTestSuite) TestSubmit_UnknownStudent() {
	entry := suite.validRevenueEntry()
	studentID := "HYD25-0042"
	entry.StudentUniqueID = &studentID

	suite.mockStudent.On("GetByUniqueID", suite.ctx, studentID).Return(nil, nil)

	err := suite.service.Submit(suite.ctx, entry)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}

func (suite *ApprovalServiceTestSuite) TestApprove_Success() {
	entryID := uuid.New()
	pending := suite.validRevenueEntry()
	pending.ID = entryID
	pending.Status = models.EntryStatusPending

	approved := *pending
	approved.Status = models.EntryStatusApproved
	approved.ReviewedBy = &suite.reviewerID

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(pending, nil).Once()
	suite.mockLedger.On("SetStatusIfPending", suite.ctx, entryID, models.EntryStatusApproved, suite.reviewerID, (*string)(nil)).Return(true, nil)
	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(&approved, nil).Once()
	suite.mockCache.On("InvalidateReports", suite.ctx).Return(nil)

	entry, err := suite.service.Approve(suite.ctx, entryID, suite.reviewerID, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.EntryStatusApproved, entry.Status)
}

func (suite *ApprovalServiceTestSuite) TestApprove_RecordsStudentPayment() {
	entryID := uuid.New()
	studentUID := "HYD25-0042"
	student := &models.Student{ID: uuid.New(), UniqueID: studentUID}

	pending := suite.validRevenueEntry()
	pending.ID = entryID
	pending.Status = models.EntryStatusPending
	pending.StudentUniqueID = &studentUID

	approved := *pending
	approved.Status = models.EntryStatusApproved

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(pending, nil).Once()
	suite.mockLedger.On("SetStatusIfPending", suite.ctx, entryID, models.EntryStatusApproved, suite.reviewerID, (*string)(nil)).Return(true, nil)
	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(&approved, nil).Once()
	suite.mockStudent.On("GetByUniqueID", suite.ctx, studentUID).Return(student, nil)
	suite.mockStudent.On("AppendPayment", suite.ctx, student.ID, mock.AnythingOfType("models.StudentPayment")).Return(nil).Run(func(args mock.Arguments) {
		payment := args.Get(2).(models.StudentPayment)
		assert.Equal(suite.T(), approved.Earnings, payment.Amount)
		assert.Equal(suite.T(), entryID, payment.LedgerEntryID)
	})
	suite.mockCache.On("InvalidateReports", suite.ctx).Return(nil)

	_, err := suite.service.Approve(suite.ctx, entryID, suite.reviewerID, nil)
	assert.NoError(suite.T(), err)
}

func (suite *ApprovalServiceTestSuite) TestApprove_AlreadySettled() {
	entryID := uuid.New()
	settled := suite.validRevenueEntry()
	settled.ID = entryID
	settled.Status = models.EntryStatusApproved

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(settled, nil)

	_, err := suite.service.Approve(suite.ctx, entryID, suite.reviewerID, nil)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsInvalidState(err))
}

func (suite *ApprovalServiceTestSuite) TestApprove_LosesRace() {
	entryID := uuid.New()
	pending := suite.validRevenueEntry()
	pending.ID = entryID
	pending.Status = models.EntryStatusPending

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(pending, nil)
	suite.mockLedger.On("SetStatusIfPending", suite.ctx, entryID, models.EntryStatusApproved, suite.reviewerID, (*string)(nil)).Return(false, nil)

	_, err := suite.service.Approve(suite.ctx, entryID, suite.reviewerID, nil)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsInvalidState(err))
}

func (suite *ApprovalServiceTestSuite) TestDecline_Success() {
	entryID := uuid.New()
	note := "insufficient documentation"
	pending := suite.validRevenueEntry()
	pending.ID = entryID
	pending.Status = models.EntryStatusPending

	declined := *pending
	declined.Status = models.EntryStatusDeclined
	declined.ReviewNote = &note

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(pending, nil).Once()
	suite.mockLedger.On("SetStatusIfPending", suite.ctx, entryID, models.EntryStatusDeclined, suite.reviewerID, &note).Return(true, nil)
	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(&declined, nil).Once()
	suite.mockCache.On("InvalidateReports", suite.ctx).Return(nil)

	entry, err := suite.service.Decline(suite.ctx, entryID, suite.reviewerID, &note)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.EntryStatusDeclined, entry.Status)
}

func (suite *ApprovalServiceTestSuite) TestEdit_OnlyRequester() {
	entryID := uuid.New()
	pending := suite.validRevenueEntry()
	pending.ID = entryID
	pending.Status = models.EntryStatusPending

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(pending, nil)

	intruder := uuid.New()
	patch := &EntryPatch{
		Date:        pending.Date,
		TimeOfDay:   "11:00",
		Amount:      2000,
		Description: "Adjusted amount",
		PaymentMode: models.PaymentModeCash,
	}

	_, err := suite.service.Edit(suite.ctx, entryID, intruder, patch)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsAuthorization(err))
}

func (suite *ApprovalServiceTestSuite) TestEdit_Success() {
	entryID := uuid.New()
	pending := suite.validRevenueEntry()
	pending.ID = entryID
	pending.Status = models.EntryStatusPending

	patch := &EntryPatch{
		Date:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		TimeOfDay:   "09:15",
		Amount:      2500,
		Description: "Corrected fee amount",
		PaymentMode: models.PaymentModeUPI,
	}

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(pending, nil).Twice()
	suite.mockLedger.On("UpdateEditableFields", suite.ctx, mock.AnythingOfType("*models.LedgerEntry")).Return(nil).Run(func(args mock.Arguments) {
		updated := args.Get(1).(*models.LedgerEntry)
		// Category is fixed at submission and survives an edit
		assert.Equal(suite.T(), models.CategorySchoolFees, updated.Category)
		assert.Equal(suite.T(), "Apr", updated.MonthLabel)
		assert.Equal(suite.T(), 2500.0, updated.Earnings)
		assert.Equal(suite.T(), 0.0, updated.Expenses)
	})

	_, err := suite.service.Edit(suite.ctx, entryID, suite.requesterID, patch)
	assert.NoError(suite.T(), err)
}

func (suite *ApprovalServiceTestSuite) TestDelete_RequesterAllowed() {
	entryID := uuid.New()
	pending := suite.validRevenueEntry()
	pending.ID = entryID
	pending.Status = models.EntryStatusPending

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(pending, nil)
	suite.mockLedger.On("Delete", suite.ctx, entryID).Return(nil)

	err := suite.service.Delete(suite.ctx, entryID, suite.requesterID, models.RoleAccountant)
	assert.NoError(suite.T(), err)
}

func (suite *ApprovalServiceTestSuite) TestDelete_StrangerDenied() {
	entryID := uuid.New()
	pending := suite.validRevenueEntry()
	pending.ID = entryID
	pending.Status = models.EntryStatusPending

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(pending, nil)

	err := suite.service.Delete(suite.ctx, entryID, uuid.New(), models.RoleAccountant)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsAuthorization(err))
}

func (suite *ApprovalServiceTestSuite) TestDelete_ApprovedEntryRejected() {
	entryID := uuid.New()
	approved := suite.validRevenueEntry()
	approved.ID = entryID
	approved.Status = models.EntryStatusApproved

	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(approved, nil)

	err := suite.service.Delete(suite.ctx, entryID, suite.requesterID, models.RoleChairman)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsInvalidState(err))
}

func (suite *ApprovalServiceTestSuite) TestBulkApprove_Success() {
	settled := []*models.LedgerEntry{}
	for i := 0; i < 7; i++ {
		entry := suite.validRevenueEntry()
		entry.ID = uuid.New()
		entry.Status = models.EntryStatusApproved
		settled = append(settled, entry)
	}

	suite.mockLedger.On("BulkSetStatus", suite.ctx, models.EntryStatusApproved, suite.reviewerID, (*string)(nil)).Return(settled, nil)
	suite.mockCache.On("InvalidateReports", suite.ctx).Return(nil)

	count, err := suite.service.BulkApprove(suite.ctx, suite.reviewerID, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(7), count)
}

func (suite *ApprovalServiceTestSuite) TestBulkApprove_RecordsStudentPayments() {
	studentUID := "HYD25-0042"
	student := &models.Student{ID: uuid.New(), UniqueID: studentUID}

	withStudent := suite.validRevenueEntry()
	withStudent.ID = uuid.New()
	withStudent.Status = models.EntryStatusApproved
	withStudent.StudentUniqueID = &studentUID

	withoutStudent := suite.validRevenueEntry()
	withoutStudent.ID = uuid.New()
	withoutStudent.Status = models.EntryStatusApproved

	expense := suite.validRevenueEntry()
	expense.ID = uuid.New()
	expense.EntryType = models.EntryTypeExpense
	expense.Category = models.CategorySalaries
	expense.Earnings = 0
	expense.Expenses = 900
	expense.Status = models.EntryStatusApproved

	settled := []*models.LedgerEntry{withStudent, withoutStudent, expense}

	suite.mockLedger.On("BulkSetStatus", suite.ctx, models.EntryStatusApproved, suite.reviewerID, (*string)(nil)).Return(settled, nil)
	suite.mockStudent.On("GetByUniqueID", suite.ctx, studentUID).Return(student, nil).Once()
	suite.mockStudent.On("AppendPayment", suite.ctx, student.ID, mock.AnythingOfType("models.StudentPayment")).Return(nil).Once().Run(func(args mock.Arguments) {
		payment := args.Get(2).(models.StudentPayment)
		assert.Equal(suite.T(), withStudent.Earnings, payment.Amount)
		assert.Equal(suite.T(), withStudent.ID, payment.LedgerEntryID)
	})
	suite.mockCache.On("InvalidateReports", suite.ctx).Return(nil)

	count, err := suite.service.BulkApprove(suite.ctx, suite.reviewerID, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), count)
}

func (suite *ApprovalServiceTestSuite) TestBulkDecline_EmptyQueue() {
	suite.mockLedger.On("BulkSetStatus", suite.ctx, models.EntryStatusDeclined, suite.reviewerID, (*string)(nil)).Return([]*models.LedgerEntry{}, nil)
	suite.mockCache.On("InvalidateReports", suite.ctx).Return(nil)

	count, err := suite.service.BulkDecline(suite.ctx, suite.reviewerID, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *ApprovalServiceTestSuite) TestBulkDecline_NoStudentSideEffects() {
	withStudent := suite.validRevenueEntry()
	withStudent.ID = uuid.New()
	studentUID := "HYD25-0042"
	withStudent.StudentUniqueID = &studentUID
	withStudent.Status = models.EntryStatusDeclined

	suite.mockLedger.On("BulkSetStatus", suite.ctx, models.EntryStatusDeclined, suite.reviewerID, (*string)(nil)).Return([]*models.LedgerEntry{withStudent}, nil)
	suite.mockCache.On("InvalidateReports", suite.ctx).Return(nil)

	count, err := suite.service.BulkDecline(suite.ctx, suite.reviewerID, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), count)
	suite.mockStudent.AssertNotCalled(suite.T(), "AppendPayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestGetEntry_NotFound() {
	entryID := uuid.New()
	suite.mockLedger.On("GetByID", suite.ctx, entryID).Return(nil, nil)

	_, err := suite.service.GetEntry(suite.ctx, entryID)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}
