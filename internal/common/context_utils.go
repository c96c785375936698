package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	RoleKey   contextKey = "role"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// SendForbiddenError sends a forbidden error response
func SendForbiddenError(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, CreateErrorResponse("FORBIDDEN", message, nil))
}

// SendConflictError sends a conflict error response for illegal state
// transitions
func SendConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, CreateErrorResponse("INVALID_STATE", message, nil))
}

// SendDomainError maps a service-layer error onto the HTTP error
// taxonomy: validation 400, not-found 404, invalid-state 409,
// authorization 403, anything else 500.
func SendDomainError(c echo.Context, err error) error {
	switch {
	case IsValidation(err):
		return SendClientError(c, err.Error())
	case IsNotFound(err):
		return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", err.Error(), nil))
	case IsInvalidState(err):
		return SendConflictError(c, err.Error())
	case IsAuthorization(err):
		return SendForbiddenError(c, err.Error())
	}
	return SendServerError(c, err.Error())
}

// ValidateUUID validates UUID format
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID: %v", fieldName, err)
	}

	return id, nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateOptionalString validates optional string fields
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil {
		if len(*value) > maxLength {
			return fmt.Errorf("%s cannot exceed %d characters", fieldName, maxLength)
		}
		*value = strings.TrimSpace(*value)
	}
	return nil
}

// ValidatePositiveFloat validates positive float values with upper bounds
func ValidatePositiveFloat(value float64, fieldName string, maxValue float64) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	if value > maxValue {
		return fmt.Errorf("%s cannot exceed %.2f", fieldName, maxValue)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date string with reasonable bounds.
func ParseDate(dateStr, fieldName string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("%s is required", fieldName)
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format", fieldName)
	}

	if date.After(time.Now().AddDate(10, 0, 0)) {
		return time.Time{}, fmt.Errorf("%s cannot be more than 10 years in the future", fieldName)
	}
	if date.Before(time.Now().AddDate(-100, 0, 0)) {
		return time.Time{}, fmt.Errorf("%s cannot be more than 100 years ago", fieldName)
	}

	return date, nil
}

// ValidateTimeOfDay validates HH:MM time strings
func ValidateTimeOfDay(timeStr, fieldName string) error {
	if strings.TrimSpace(timeStr) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return fmt.Errorf("%s must be in HH:MM format", fieldName)
	}
	return nil
}

// ValidateDateRange validates date ranges to prevent abuse
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return fmt.Errorf("end date cannot be before start date")
	}

	duration := endDate.Sub(startDate)
	maxDuration := time.Hour * 24 * 365 * 10 // 10 years
	if duration > maxDuration {
		return fmt.Errorf("date range cannot exceed 10 years")
	}

	return nil
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 50 // Default
	}
	if limit > 1000 {
		limit = 1000 // Maximum
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, fmt.Errorf("offset cannot exceed 1,000,000")
	}

	return limit, offset, nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetRoleFromContext extracts the caller's role from the request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
