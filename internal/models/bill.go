package models

import (
	"time"

	"github.com/google/uuid"
)

// BillStatus is the payment lifecycle of a generated bill.
type BillStatus string

const (
	BillStatusPending  BillStatus = "pending"
	BillStatusPaid     BillStatus = "paid"
	BillStatusOverdue  BillStatus = "overdue"
	BillStatusRejected BillStatus = "rejected"
)

// BillLineItem is a single fee line on a bill.
type BillLineItem struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// Bill is one student's payable for one month, produced by the bill
// generator. TotalAmount always equals the sum of LineItems amounts.
type Bill struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	StudentID   uuid.UUID      `json:"student_id" db:"student_id"`
	TemplateID  *uuid.UUID     `json:"template_id" db:"template_id"`
	RunID       *uuid.UUID     `json:"run_id" db:"run_id"`
	Status      BillStatus     `json:"status" db:"status"`
	DueDate     time.Time      `json:"due_date" db:"due_date"`
	PaidDate    *time.Time     `json:"paid_date" db:"paid_date"`
	Description string         `json:"description" db:"description"`
	TotalAmount float64        `json:"total_amount" db:"total_amount"`
	Departments string         `json:"departments" db:"departments"`
	LineItems   []BillLineItem `json:"line_items" db:"line_items"`
	GeneratedBy uuid.UUID      `json:"generated_by" db:"generated_by"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// BillRun records one bill-generation invocation. RunKey is a hash of
// the selector and fee config; a unique constraint on it stops an
// identical re-run from inserting duplicate bills.
type BillRun struct {
	ID           uuid.UUID `json:"id" db:"id"`
	RunKey       string    `json:"run_key" db:"run_key"`
	BillsCreated int       `json:"bills_created" db:"bills_created"`
	StudentCount int       `json:"student_count" db:"student_count"`
	TotalAmount  float64   `json:"total_amount" db:"total_amount"`
	GeneratedBy  uuid.UUID `json:"generated_by" db:"generated_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
