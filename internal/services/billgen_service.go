package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gurukul/internal/common"
	"gurukul/internal/models"
	"gurukul/internal/repositories"

	"github.com/google/uuid"
)

// BillGenServiceInterface expands a fee configuration and a target
// population into per-student monthly bills.
type BillGenServiceInterface interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateSummary, error)
	Pay(ctx context.Context, billID uuid.UUID) (*models.Bill, error)
	Reject(ctx context.Context, billID uuid.UUID) (*models.Bill, error)
	MarkOverdueBills(ctx context.Context) (int64, error)
	GetBill(ctx context.Context, billID uuid.UUID) (*models.Bill, error)
	ListBills(ctx context.Context, limit, offset int) ([]*models.Bill, error)
	ListUnpaidBills(ctx context.Context, limit, offset int) ([]*models.Bill, error)
	ListStudentBills(ctx context.Context, studentID uuid.UUID) ([]*models.Bill, error)
}

// GenerateRequest selects a target population and a fee source. The
// selector is either an explicit student ID list or a class filter
// (optionally narrowed to one roll number); a department subset
// restricts the class-payment tuples; a template replaces class-payment
// amounts entirely.
type GenerateRequest struct {
	StudentIDs  []uuid.UUID
	ClassName   string
	RollNumber  *int
	Departments []models.Department
	TemplateID  *uuid.UUID
	Months      int
	DueDate     time.Time
	Description string
	RunKey      string
	GeneratedBy uuid.UUID
}

// GenerateSummary reports one generation run.
type GenerateSummary struct {
	RunID        uuid.UUID `json:"run_id"`
	BillsCreated int       `json:"bills_created"`
	StudentCount int       `json:"student_count"`
	TotalAmount  float64   `json:"total_amount"`
}

type billGenService struct {
	billRepo         repositories.BillRepository
	studentRepo      repositories.StudentRepository
	classPaymentRepo repositories.ClassPaymentRepository
	templateRepo     repositories.BillingTemplateRepository
}

// NewBillGenService creates a new bill generator service
func NewBillGenService(billRepo repositories.BillRepository, studentRepo repositories.StudentRepository, classPaymentRepo repositories.ClassPaymentRepository, templateRepo repositories.BillingTemplateRepository) BillGenServiceInterface {
	return &billGenService{
		billRepo:         billRepo,
		studentRepo:      studentRepo,
		classPaymentRepo: classPaymentRepo,
		templateRepo:     templateRepo,
	}
}

func duplicateRunError() error {
	return common.NewValidationError("run_key", "an identical generation run already exists; pass a new run_key to force regeneration")
}

func (s *billGenService) Generate(ctx context.Context, req *GenerateRequest) (*GenerateSummary, error) {
	if req.Months <= 0 {
		return nil, common.NewValidationError("months", "months must be at least 1")
	}
	if req.DueDate.IsZero() {
		return nil, common.NewValidationError("due_date", "due date is required")
	}
	if req.GeneratedBy == uuid.Nil {
		return nil, common.NewValidationError("generated_by", "generator identity is required")
	}

	students, err := s.resolveStudents(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, common.NewNotFoundError("matching students")
	}

	runKey := req.RunKey
	if runKey == "" {
		runKey = computeRunKey(req)
	}
	exists, err := s.billRepo.RunKeyExists(ctx, runKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateRunError()
	}

	var template *models.BillingTemplate
	if req.TemplateID != nil {
		template, err = s.templateRepo.GetByID(ctx, *req.TemplateID)
		if err != nil {
			return nil, err
		}
		if template == nil {
			return nil, common.NewNotFoundError("billing template")
		}
		if !template.Active {
			return nil, common.NewValidationError("template_id", fmt.Sprintf("template '%s' is inactive", template.Name))
		}
	}

	runID := uuid.New()
	var bills []*models.Bill
	totalAmount := 0.0

	// Class-payment configs looked up once per grade; an explicit ID
	// list may span grades.
	configs := map[string]*models.ClassPayment{}

	for _, student := range students {
		lineItems, departments, err := s.resolveFeeSchedule(ctx, student, template, req, configs)
		if err != nil {
			return nil, err
		}

		perStudentTotal := 0.0
		for _, item := range lineItems {
			perStudentTotal += item.Amount
		}

		for month := 0; month < req.Months; month++ {
			dueDate := req.DueDate.AddDate(0, month, 0)
			bill := &models.Bill{
				ID:          uuid.New(),
				StudentID:   student.ID,
				TemplateID:  req.TemplateID,
				RunID:       &runID,
				Status:      models.BillStatusPending,
				DueDate:     dueDate,
				Description: s.renderDescription(student, template, req, dueDate),
				TotalAmount: perStudentTotal,
				Departments: departments,
				LineItems:   lineItems,
				GeneratedBy: req.GeneratedBy,
			}
			bills = append(bills, bill)
			totalAmount += perStudentTotal
		}
	}

	if totalAmount == 0 {
		return nil, common.NewValidationError("amount", "configure payment amounts first")
	}

	run := &models.BillRun{
		ID:           runID,
		RunKey:       runKey,
		BillsCreated: len(bills),
		StudentCount: len(students),
		TotalAmount:  totalAmount,
		GeneratedBy:  req.GeneratedBy,
	}

	if err := s.billRepo.InsertGeneration(ctx, run, bills); err != nil {
		// Two concurrent identical runs can both pass the RunKeyExists
		// pre-check; the loser hits the unique constraint instead.
		if errors.Is(err, repositories.ErrDuplicateRunKey) {
			return nil, duplicateRunError()
		}
		return nil, err
	}

	return &GenerateSummary{
		RunID:        runID,
		BillsCreated: len(bills),
		StudentCount: len(students),
		TotalAmount:  totalAmount,
	}, nil
}

func (s *billGenService) resolveStudents(ctx context.Context, req *GenerateRequest) ([]*models.Student, error) {
	if len(req.StudentIDs) > 0 {
		return s.studentRepo.ListByIDs(ctx, req.StudentIDs)
	}

	if req.ClassName == "" {
		return nil, common.NewValidationError("selector", "either student_ids or class_name is required")
	}

	className, err := models.ValidateGrade(req.ClassName)
	if err != nil {
		return nil, common.NewValidationError("class_name", err.Error())
	}

	students, err := s.studentRepo.ListByClass(ctx, className)
	if err != nil {
		return nil, err
	}

	if req.RollNumber != nil {
		for _, student := range students {
			if student.RollNumber != nil && *student.RollNumber == *req.RollNumber {
				return []*models.Student{student}, nil
			}
		}
		return nil, nil
	}

	return students, nil
}

// resolveFeeSchedule returns the line items and the comma-joined
// department list for one student. Template mode ignores class-payment
// configs entirely.
func (s *billGenService) resolveFeeSchedule(ctx context.Context, student *models.Student, template *models.BillingTemplate, req *GenerateRequest, configs map[string]*models.ClassPayment) ([]models.BillLineItem, string, error) {
	if template != nil {
		lineItems := make([]models.BillLineItem, 0, len(template.Items))
		for _, item := range template.Items {
			lineItems = append(lineItems, models.BillLineItem{Name: item.Name, Amount: item.Amount, Description: item.Description})
		}
		return lineItems, strings.Join(template.Tags, ","), nil
	}

	grade := models.NormalizeGrade(student.Grade)
	config, ok := configs[grade]
	if !ok {
		loaded, err := s.classPaymentRepo.GetByClass(ctx, grade)
		if err != nil {
			return nil, "", err
		}
		if loaded == nil {
			return nil, "", common.NewNotFoundError(fmt.Sprintf("class payment config for class %s", grade))
		}
		configs[grade] = loaded
		config = loaded
	}

	var lineItems []models.BillLineItem
	var departments []string
	for _, item := range config.Payments {
		if len(req.Departments) > 0 && !departmentSelected(req.Departments, item.Department) {
			continue
		}
		lineItems = append(lineItems, models.BillLineItem{Name: string(item.Department), Amount: item.Amount})
		departments = append(departments, string(item.Department))
	}

	return lineItems, strings.Join(departments, ","), nil
}

func departmentSelected(list []models.Department, d models.Department) bool {
	for _, item := range list {
		if item == d {
			return true
		}
	}
	return false
}

// renderDescription substitutes template placeholders; a plain request
// description passes through untouched.
func (s *billGenService) renderDescription(student *models.Student, template *models.BillingTemplate, req *GenerateRequest, dueDate time.Time) string {
	if template == nil {
		return req.Description
	}

	replacer := strings.NewReplacer(
		"{studentName}", student.Name,
		"{className}", models.NormalizeGrade(student.Grade),
		"{month}", dueDate.Format("January"),
		"{year}", fmt.Sprintf("%d", dueDate.Year()),
	)
	return replacer.Replace(template.Description)
}

// computeRunKey hashes the selector and fee config so an identical
// re-run maps onto the same bill_runs row.
func computeRunKey(req *GenerateRequest) string {
	ids := make([]string, 0, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)

	departments := make([]string, 0, len(req.Departments))
	for _, d := range req.Departments {
		departments = append(departments, string(d))
	}
	sort.Strings(departments)

	payload := map[string]interface{}{
		"student_ids": ids,
		"class_name":  req.ClassName,
		"departments": departments,
		"months":      req.Months,
		"due_date":    req.DueDate.Format("2006-01-02"),
		"description": req.Description,
	}
	if req.RollNumber != nil {
		payload["roll_number"] = *req.RollNumber
	}
	if req.TemplateID != nil {
		payload["template_id"] = req.TemplateID.String()
	}

	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *billGenService) Pay(ctx context.Context, billID uuid.UUID) (*models.Bill, error) {
	now := time.Now()
	return s.transition(ctx, billID, models.BillStatusPaid, &now)
}

func (s *billGenService) Reject(ctx context.Context, billID uuid.UUID) (*models.Bill, error) {
	return s.transition(ctx, billID, models.BillStatusRejected, nil)
}

func (s *billGenService) transition(ctx context.Context, billID uuid.UUID, status models.BillStatus, paidDate *time.Time) (*models.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, common.NewNotFoundError("bill")
	}
	if bill.Status != models.BillStatusPending {
		return nil, common.NewInvalidStateError("bill", string(bill.Status), string(status))
	}

	ok, err := s.billRepo.SetStatusIfPending(ctx, billID, status, paidDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.NewInvalidStateError("bill", "settled", string(status))
	}

	return s.billRepo.GetByID(ctx, billID)
}

// MarkOverdueBills flips pending bills past their due date. Run
// periodically by the background scheduler.
func (s *billGenService) MarkOverdueBills(ctx context.Context) (int64, error) {
	return s.billRepo.MarkOverdue(ctx, time.Now())
}

func (s *billGenService) GetBill(ctx context.Context, billID uuid.UUID) (*models.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, common.NewNotFoundError("bill")
	}
	return bill, nil
}

func (s *billGenService) ListBills(ctx context.Context, limit, offset int) ([]*models.Bill, error) {
	return s.billRepo.List(ctx, limit, offset)
}

func (s *billGenService) ListUnpaidBills(ctx context.Context, limit, offset int) ([]*models.Bill, error) {
	return s.billRepo.ListUnpaid(ctx, limit, offset)
}

func (s *billGenService) ListStudentBills(ctx context.Context, studentID uuid.UUID) ([]*models.Bill, error) {
	return s.billRepo.ListByStudent(ctx, studentID)
}
