package handlers

import (
	"net/http"
	"strings"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"
	"gurukul/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandlers handles login, token refresh and staff registration
type AuthHandlers struct {
	userRepo    repositories.UserRepository
	authService services.AuthService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(userRepo repositories.UserRepository, authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{
		userRepo:    userRepo,
		authService: authService,
	}
}

// RegisterRequest represents the staff registration payload
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Register handles POST /auth/register. Restricted to chairman via
// route middleware: staff accounts are provisioned, not self-served.
func (h *AuthHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		return common.SendClientError(c, "Email, first name and last name are required")
	}
	if len(req.Password) < 8 {
		return common.SendValidationError(c, "password", "password must be at least 8 characters")
	}
	role, err := models.ParseUserRole(req.Role)
	if err != nil {
		return common.SendValidationError(c, "role", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return common.SendServerError(c, "Failed to hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		Status:       "active",
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, user)
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	user, err := h.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return common.SendServerError(c, "Failed to look up user")
	}
	if user == nil || user.Status != "active" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	tokens, err := h.authService.GenerateTokens(ctx, user.ID, user.Role)
	if err != nil {
		return common.SendServerError(c, "Failed to issue tokens")
	}

	return c.JSON(http.StatusOK, tokens)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return common.SendClientError(c, "Missing refresh token")
	}

	tokens, err := h.authService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	return c.JSON(http.StatusOK, tokens)
}

// Logout handles POST /auth/logout
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.RefreshToken != "" {
		if err := h.authService.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			return common.SendServerError(c, "Failed to revoke refresh token")
		}
	}

	return c.NoContent(http.StatusNoContent)
}
