package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateItem is one reusable fee line of a billing template.
type TemplateItem struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// BillingTemplate is a named, reusable fee definition. The description
// may embed @department tag references and the placeholders
// {studentName}, {className}, {month} and {year}, substituted at bill
// generation time.
type BillingTemplate struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Items       []TemplateItem `json:"items" db:"items"`
	Tags        []string       `json:"tags" db:"tags"`
	Active      bool           `json:"active" db:"active"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Total sums the template's item amounts.
func (t *BillingTemplate) Total() float64 {
	total := 0.0
	for _, item := range t.Items {
		total += item.Amount
	}
	return total
}
