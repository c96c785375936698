package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntryType discriminates revenue entries from expense entries.
type EntryType string

const (
	EntryTypeRevenue EntryType = "revenue"
	EntryTypeExpense EntryType = "expense"
)

// ParseEntryType validates an entry type value
func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(s) {
	case EntryTypeRevenue:
		return EntryTypeRevenue, nil
	case EntryTypeExpense:
		return EntryTypeExpense, nil
	}
	return "", fmt.Errorf("entry type must be either 'revenue' or 'expense'")
}

// EntryCategory is the closed category set for ledger entries.
// Revenue and expense categories are disjoint lists.
type EntryCategory string

const (
	// Revenue categories
	CategorySchoolFees    EntryCategory = "school_fees"
	CategoryAdmissionFees EntryCategory = "admission_fees"
	CategoryHostelFees    EntryCategory = "hostel_fees"
	CategoryTransportFees EntryCategory = "transport_fees"
	CategoryDonations     EntryCategory = "donations"
	CategoryOtherIncome   EntryCategory = "other_income"

	// Expense categories
	CategorySalaries     EntryCategory = "salaries"
	CategoryFood         EntryCategory = "food"
	CategoryMaintenance  EntryCategory = "maintenance"
	CategoryUtilities    EntryCategory = "utilities"
	CategoryStationery   EntryCategory = "stationery"
	CategoryTransport    EntryCategory = "transport"
	CategoryEvents       EntryCategory = "events"
	CategoryOtherExpense EntryCategory = "other_expense"
)

// RevenueCategories lists every category legal for revenue entries, in
// reporting order.
var RevenueCategories = []EntryCategory{
	CategorySchoolFees,
	CategoryAdmissionFees,
	CategoryHostelFees,
	CategoryTransportFees,
	CategoryDonations,
	CategoryOtherIncome,
}

// ExpenseCategories lists every category legal for expense entries, in
// reporting order.
var ExpenseCategories = []EntryCategory{
	CategorySalaries,
	CategoryFood,
	CategoryMaintenance,
	CategoryUtilities,
	CategoryStationery,
	CategoryTransport,
	CategoryEvents,
	CategoryOtherExpense,
}

// CategoriesFor returns the category list legal for the given entry type.
func CategoriesFor(entryType EntryType) []EntryCategory {
	if entryType == EntryTypeRevenue {
		return RevenueCategories
	}
	return ExpenseCategories
}

// ParseEntryCategory validates a category against the entry type's
// closed list.
func ParseEntryCategory(s string, entryType EntryType) (EntryCategory, error) {
	for _, cat := range CategoriesFor(entryType) {
		if EntryCategory(s) == cat {
			return cat, nil
		}
	}
	return "", fmt.Errorf("category '%s' is not a valid %s category", s, entryType)
}

// PaymentMode is the closed set of accepted payment modes.
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeCard         PaymentMode = "card"
)

// ParsePaymentMode validates a payment mode value
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(s) {
	case PaymentModeCash, PaymentModeUPI, PaymentModeBankTransfer, PaymentModeCheque, PaymentModeCard:
		return PaymentMode(s), nil
	}
	return "", fmt.Errorf("payment mode must be one of: cash, upi, bank_transfer, cheque, card")
}

// EntryStatus is the approval lifecycle of a ledger entry.
type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusApproved EntryStatus = "approved"
	EntryStatusDeclined EntryStatus = "declined"
)

// ParseEntryStatus validates a status value
func ParseEntryStatus(s string) (EntryStatus, error) {
	switch EntryStatus(s) {
	case EntryStatusPending, EntryStatusApproved, EntryStatusDeclined:
		return EntryStatus(s), nil
	}
	return "", fmt.Errorf("status must be one of: pending, approved, declined")
}

// LedgerEntry is a single finance request: either a revenue receipt or
// an expense claim, submitted by a staff member and reviewed by the
// chairman. Exactly one of Earnings/Expenses is non-zero, matching
// EntryType.
type LedgerEntry struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	EntryType       EntryType     `json:"entry_type" db:"entry_type"`
	Category        EntryCategory `json:"category" db:"category"`
	Date            time.Time     `json:"date" db:"date"`
	TimeOfDay       string        `json:"time_of_day" db:"time_of_day"`
	MonthLabel      string        `json:"month_label" db:"month_label"`
	Earnings        float64       `json:"earnings" db:"earnings"`
	Expenses        float64       `json:"expenses" db:"expenses"`
	Description     string        `json:"description" db:"description"`
	PaymentMode     PaymentMode   `json:"payment_mode" db:"payment_mode"`
	FeePeriod       *string       `json:"fee_period" db:"fee_period"`
	Attachments     []string      `json:"attachments" db:"attachments"`
	Status          EntryStatus   `json:"status" db:"status"`
	RequestedBy     uuid.UUID     `json:"requested_by" db:"requested_by"`
	ReviewedBy      *uuid.UUID    `json:"reviewed_by" db:"reviewed_by"`
	ReviewNote      *string       `json:"review_note" db:"review_note"`
	ReviewedAt      *time.Time    `json:"reviewed_at" db:"reviewed_at"`
	StudentUniqueID *string       `json:"student_unique_id" db:"student_unique_id"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// Amount returns the entry's single non-zero amount.
func (e *LedgerEntry) Amount() float64 {
	if e.EntryType == EntryTypeRevenue {
		return e.Earnings
	}
	return e.Expenses
}
