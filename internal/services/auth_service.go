package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gurukul/internal/caching"
	"gurukul/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthService handles JWT access tokens and Redis-backed refresh tokens
type AuthService interface {
	GenerateTokens(ctx context.Context, userID uuid.UUID, role models.UserRole) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

type authService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// NewAuthService creates a new authentication service
func NewAuthService(cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

// GenerateTokens generates access and refresh tokens for a user
func (s *authService) GenerateTokens(ctx context.Context, userID uuid.UUID, role models.UserRole) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:  userID.String(),
		Role:    string(role),
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gurukul-auth",
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"gurukul-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken := s.generateSecureToken()
	refreshTokenHash := s.hashToken(refreshToken)

	refreshTokenData := fmt.Sprintf("%s:%s:%d", userID.String(), role, now.Unix()+int64(s.refreshTTL))
	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		// Continue - token generation succeeded
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		UserID:       userID.String(),
		Role:         string(role),
		TokenID:      tokenID,
		IssuedAt:     now,
	}, nil
}

// RefreshToken validates and uses a refresh token to generate new tokens
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	refreshTokenHash := s.hashToken(refreshToken)

	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)
	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil || tokenData == "" {
		return nil, fmt.Errorf("invalid refresh token")
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid token data")
	}

	userIDStr, roleStr, expiryStr := parts[0], parts[1], parts[2]
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token expiry")
	}

	if time.Now().Unix() > expiry {
		s.cacheSvc.Delete(ctx, cacheKey)
		return nil, fmt.Errorf("refresh token expired")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token")
	}
	role, err := models.ParseUserRole(roleStr)
	if err != nil {
		return nil, fmt.Errorf("invalid role in token")
	}

	// Rotate: drop the used refresh token before issuing new ones
	s.cacheSvc.Delete(ctx, cacheKey)

	return s.GenerateTokens(ctx, userID, role)
}

// ValidateToken validates a JWT access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	if claims, ok := jwtToken.Claims.(*TokenClaims); ok && jwtToken.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token claims")
}

// RevokeRefreshToken drops a refresh token from the store
func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	cacheKey := fmt.Sprintf("refresh_token:%s", s.hashToken(refreshToken))
	return s.cacheSvc.Delete(ctx, cacheKey)
}

func (s *authService) generateSecureToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return uuid.NewString()
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}

func (s *authService) hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
