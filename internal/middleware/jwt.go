package middleware

import (
	"context"

	"gurukul/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims mirrors the claims issued by the auth service.
type JWTCustomClaims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// AttachClaims copies verified JWT claims onto the request context so
// handlers read identity through the common helpers. Wired as the
// echo-jwt success handler.
func AttachClaims(c echo.Context) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return
	}
	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok {
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return
	}

	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	ctx = context.WithValue(ctx, common.RoleKey, claims.Role)
	c.SetRequest(c.Request().WithContext(ctx))
}
