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

type RollNumberServiceTestSuite struct {
	suite.Suite
	mockStudent *MockStudentRepository
	mockJobs    *MockScheduledJobRepository
	service     RollNumberServiceInterface
	ctx         context.Context
	chairmanID  uuid.UUID
}

func (suite *RollNumberServiceTestSuite) SetupTest() {
	suite.mockStudent = &MockStudentRepository{}
	suite.mockJobs = &MockScheduledJobRepository{}
	suite.service = NewRollNumberService(suite.mockStudent, suite.mockJobs)
	suite.ctx = context.Background()
	suite.chairmanID = uuid.New()

	suite.mockStudent.Test(suite.T())
	suite.mockJobs.Test(suite.T())
}

func (suite *RollNumberServiceTestSuite) TearDownTest() {
	suite.mockStudent.AssertExpectations(suite.T())
	suite.mockJobs.AssertExpectations(suite.T())
}

func TestRollNumberServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RollNumberServiceTestSuite))
}

func (suite *RollNumberServiceTestSuite) TestAssignRollNumbers_SortsByNameWithinGrade() {
	zoya := &models.Student{ID: uuid.New(), UniqueID: "HYD25-0003", Name: "Zoya Khan", Grade: "7"}
	anil := &models.Student{ID: uuid.New(), UniqueID: "HYD25-0001", Name: "Anil Kumar", Grade: "7th"}
	mira := &models.Student{ID: uuid.New(), UniqueID: "HYD25-0002", Name: "Mira Shah", Grade: "8"}

	suite.mockStudent.On("ListAll", suite.ctx).Return([]*models.Student{zoya, anil, mira}, nil)
	// "7" and "7th" normalize to one class: Anil sorts first
	suite.mockStudent.On("UpdateRollNumber", suite.ctx, anil.ID, 1).Return(nil)
	suite.mockStudent.On("UpdateRollNumber", suite.ctx, zoya.ID, 2).Return(nil)
	suite.mockStudent.On("UpdateRollNumber", suite.ctx, mira.ID, 1).Return(nil)

	count, err := suite.service.AssignRollNumbers(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, count)
}

func (suite *RollNumberServiceTestSuite) TestAssignRollNumbers_TieBreakByUniqueID() {
	first := &models.Student{ID: uuid.New(), UniqueID: "HYD25-0001", Name: "Ravi Varma", Grade: "5"}
	second := &models.Student{ID: uuid.New(), UniqueID: "HYD25-0002", Name: "Ravi Varma", Grade: "5"}

	suite.mockStudent.On("ListAll", suite.ctx).Return([]*models.Student{second, first}, nil)
	suite.mockStudent.On("UpdateRollNumber", suite.ctx, first.ID, 1).Return(nil)
	suite.mockStudent.On("UpdateRollNumber", suite.ctx, second.ID, 2).Return(nil)

	_, err := suite.service.AssignRollNumbers(suite.ctx)
	assert.NoError(suite.T(), err)
}

func (suite *RollNumberServiceTestSuite) TestAssignRollNumbers_SkipsUnchanged() {
	roll := 1
	only := &models.Student{ID: uuid.New(), UniqueID: "HYD25-0001", Name: "Anil Kumar", Grade: "3", RollNumber: &roll}

	suite.mockStudent.On("ListAll", suite.ctx).Return([]*models.Student{only}, nil)
	// No UpdateRollNumber expectation: the write must be skipped

	count, err := suite.service.AssignRollNumbers(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *RollNumberServiceTestSuite) TestSchedule_PastDateRejected() {
	_, err := suite.service.Schedule(suite.ctx, time.Now().Add(-time.Hour), suite.chairmanID)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *RollNumberServiceTestSuite) TestSchedule_ReplacesPrior() {
	runAt := time.Now().Add(24 * time.Hour)

	suite.mockJobs.On("Schedule", suite.ctx, mock.AnythingOfType("*models.ScheduledJob")).Return(nil).Run(func(args mock.Arguments) {
		job := args.Get(1).(*models.ScheduledJob)
		assert.Equal(suite.T(), models.JobTypeRollNumberAssignment, job.JobType)
		assert.Equal(suite.T(), models.ScheduledJobPending, job.Status)
		assert.Equal(suite.T(), suite.chairmanID, job.CreatedBy)
	})

	job, err := suite.service.Schedule(suite.ctx, runAt, suite.chairmanID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), runAt, job.RunAt)
}

func (suite *RollNumberServiceTestSuite) TestGetSchedule_NonePending() {
	suite.mockJobs.On("GetPending", suite.ctx, models.JobTypeRollNumberAssignment).Return(nil, nil)

	_, err := suite.service.GetSchedule(suite.ctx)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}

func (suite *RollNumberServiceTestSuite) TestCancelSchedule_NonePending() {
	suite.mockJobs.On("CancelPending", suite.ctx, models.JobTypeRollNumberAssignment).Return(false, nil)

	err := suite.service.CancelSchedule(suite.ctx)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}

func (suite *RollNumberServiceTestSuite) TestRunDueJobs_ExecutesAndCompletes() {
	job := &models.ScheduledJob{
		ID:      uuid.New(),
		JobType: models.JobTypeRollNumberAssignment,
		RunAt:   time.Now().Add(-time.Minute),
		Status:  models.ScheduledJobPending,
	}
	student := &models.Student{ID: uuid.New(), UniqueID: "HYD25-0001", Name: "Anil Kumar", Grade: "3"}

	suite.mockJobs.On("ListDue", suite.ctx, mock.AnythingOfType("time.Time")).Return([]*models.ScheduledJob{job}, nil)
	suite.mockStudent.On("ListAll", suite.ctx).Return([]*models.Student{student}, nil)
	suite.mockStudent.On("UpdateRollNumber", suite.ctx, student.ID, 1).Return(nil)
	suite.mockJobs.On("MarkCompleted", suite.ctx, job.ID).Return(nil)

	err := suite.service.RunDueJobs(suite.ctx)
	assert.NoError(suite.T(), err)
}
