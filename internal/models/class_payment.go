package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Department is the closed set of fee departments a class payment or
// billing template may charge under.
type Department string

const (
	DepartmentTuition   Department = "tuition"
	DepartmentHostel    Department = "hostel"
	DepartmentFood      Department = "food"
	DepartmentTransport Department = "transport"
	DepartmentLibrary   Department = "library"
	DepartmentLab       Department = "lab"
	DepartmentSports    Department = "sports"
	DepartmentUniform   Department = "uniform"
)

// Departments lists every fee department.
var Departments = []Department{
	DepartmentTuition,
	DepartmentHostel,
	DepartmentFood,
	DepartmentTransport,
	DepartmentLibrary,
	DepartmentLab,
	DepartmentSports,
	DepartmentUniform,
}

// ParseDepartment validates a department value
func ParseDepartment(s string) (Department, error) {
	for _, d := range Departments {
		if Department(s) == d {
			return d, nil
		}
	}
	return "", fmt.Errorf("department '%s' is not a valid fee department", s)
}

// GradeLabels is the fixed set of 12 class labels.
var GradeLabels = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

var ordinalSuffix = regexp.MustCompile(`(?i)^(\d+)(st|nd|rd|th)$`)

// NormalizeGrade strips an ordinal suffix so "1st" and "1" group
// together.
func NormalizeGrade(grade string) string {
	if m := ordinalSuffix.FindStringSubmatch(grade); m != nil {
		return m[1]
	}
	return grade
}

// ValidateGrade checks a class label against the fixed grade set after
// normalization.
func ValidateGrade(grade string) (string, error) {
	normalized := NormalizeGrade(grade)
	for _, g := range GradeLabels {
		if normalized == g {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("class '%s' is not a valid grade (1-12)", grade)
}

// PaymentItem is one (department, amount) tuple of a class payment
// config. Editable marks whether the amount may be overridden per
// student at generation time.
type PaymentItem struct {
	Department Department `json:"department"`
	Amount     float64    `json:"amount"`
	Editable   bool       `json:"editable"`
}

// ClassPayment is the per-class fee configuration the bill generator
// expands. One config exists per grade.
type ClassPayment struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	ClassName string        `json:"class_name" db:"class_name"`
	Payments  []PaymentItem `json:"payments" db:"payments"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Total sums the config's amounts, optionally restricted to a
// department subset. A nil or empty filter keeps every tuple.
func (cp *ClassPayment) Total(departments []Department) float64 {
	total := 0.0
	for _, item := range cp.Payments {
		if len(departments) == 0 || containsDepartment(departments, item.Department) {
			total += item.Amount
		}
	}
	return total
}

func containsDepartment(list []Department, d Department) bool {
	for _, item := range list {
		if item == d {
			return true
		}
	}
	return false
}
