package models

import (
	"time"

	"github.com/google/uuid"
)

// StudentPayment is an embedded payment record appended when a revenue
// ledger entry referencing the student is approved.
type StudentPayment struct {
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	LedgerEntryID uuid.UUID `json:"ledger_entry_id"`
}

// Student holds the admission record subset the finance core works
// with. UniqueID is immutable once assigned: city code + 2-digit year +
// zero-padded serial, e.g. "HYD25-0042".
type Student struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	UniqueID   string           `json:"unique_id" db:"unique_id"`
	Name       string           `json:"name" db:"name"`
	Grade      string           `json:"grade" db:"grade"`
	Section    string           `json:"section" db:"section"`
	RollNumber *int             `json:"roll_number" db:"roll_number"`
	Payments   []StudentPayment `json:"payments" db:"payments"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}
