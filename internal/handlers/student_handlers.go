package handlers

import (
	"errors"
	"net/http"
	"time"

	"gurukul/internal/common"
	"gurukul/internal/services"

	"github.com/labstack/echo/v4"
)

// StudentHandlers handles HTTP requests for admissions, the roster and
// roll number assignment
type StudentHandlers struct {
	studentService    services.StudentServiceInterface
	rollNumberService services.RollNumberServiceInterface
}

// NewStudentHandlers creates a new student handlers instance
func NewStudentHandlers(studentService services.StudentServiceInterface, rollNumberService services.RollNumberServiceInterface) *StudentHandlers {
	return &StudentHandlers{
		studentService:    studentService,
		rollNumberService: rollNumberService,
	}
}

// AdmitStudentRequest represents the admission payload
type AdmitStudentRequest struct {
	UniqueID string `json:"unique_id"`
	Name     string `json:"name"`
	Grade    string `json:"grade"`
	Section  string `json:"section"`
}

// AdmitStudent handles POST /students
func (h *StudentHandlers) AdmitStudent(c echo.Context) error {
	ctx := c.Request().Context()

	var req AdmitStudentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	student, err := h.studentService.Admit(ctx, &services.AdmitStudentRequest{
		UniqueID: req.UniqueID,
		Name:     req.Name,
		Grade:    req.Grade,
		Section:  req.Section,
	})
	if err != nil {
		var dupErr *services.DuplicateUniqueIDError
		if errors.As(err, &dupErr) {
			return c.JSON(http.StatusConflict, common.CreateErrorResponse("DUPLICATE_UNIQUE_ID", dupErr.Error(), map[string]string{
				"unique_id":    dupErr.UniqueID,
				"suggested_id": dupErr.SuggestedID,
			}))
		}
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, student)
}

// GetStudent handles GET /students/:id
func (h *StudentHandlers) GetStudent(c echo.Context) error {
	ctx := c.Request().Context()

	studentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	student, err := h.studentService.GetStudent(ctx, studentID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, student)
}

// GetStudentByUniqueID handles GET /students/by-unique-id/:uniqueID
func (h *StudentHandlers) GetStudentByUniqueID(c echo.Context) error {
	ctx := c.Request().Context()

	uniqueID := c.Param("uniqueID")
	if uniqueID == "" {
		return common.SendClientError(c, "Missing unique ID")
	}

	student, err := h.studentService.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, student)
}

// ListStudents handles GET /students
func (h *StudentHandlers) ListStudents(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset, err := common.ValidatePaginationParams(
		parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	students, err := h.studentService.ListStudents(ctx, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list students: "+err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"students": students,
		"limit":    limit,
		"offset":   offset,
	})
}

// AssignRollNumbers handles POST /roll-numbers/assign
func (h *StudentHandlers) AssignRollNumbers(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.rollNumberService.AssignRollNumbers(ctx)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"students_processed": count})
}

// ScheduleRollNumbersRequest carries the future run time
type ScheduleRollNumbersRequest struct {
	RunAt string `json:"run_at"` // RFC 3339
}

// ScheduleRollNumbers handles POST /roll-numbers/schedule
func (h *StudentHandlers) ScheduleRollNumbers(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req ScheduleRollNumbersRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	runAt, err := time.Parse(time.RFC3339, req.RunAt)
	if err != nil {
		return common.SendValidationError(c, "run_at", "run_at must be an RFC 3339 timestamp")
	}

	job, err := h.rollNumberService.Schedule(ctx, runAt, userID)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, job)
}

// GetRollNumberSchedule handles GET /roll-numbers/schedule
func (h *StudentHandlers) GetRollNumberSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	job, err := h.rollNumberService.GetSchedule(ctx)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, job)
}

// CancelRollNumberSchedule handles DELETE /roll-numbers/schedule
func (h *StudentHandlers) CancelRollNumberSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.rollNumberService.CancelSchedule(ctx); err != nil {
		return common.SendDomainError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
