package models

import "time"

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	TokenID      string    `json:"token_id"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest is the refresh grant payload.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
	GrantType    string `json:"grant_type"`
}
