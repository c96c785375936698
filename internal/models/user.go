package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserRole is the closed set of staff roles.
type UserRole string

const (
	RoleChairman   UserRole = "chairman"
	RoleAdmin      UserRole = "admin"
	RoleAccountant UserRole = "accountant"
)

// ParseUserRole validates a role value
func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case RoleChairman, RoleAdmin, RoleAccountant:
		return UserRole(s), nil
	}
	return "", fmt.Errorf("role must be one of: chairman, admin, accountant")
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize in JSON
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         UserRole  `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
