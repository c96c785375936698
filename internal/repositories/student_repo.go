package repositories

import (
	"context"
	"errors"

	"gurukul/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	GetByUniqueID(ctx context.Context, uniqueID string) (*models.Student, error)
	List(ctx context.Context, limit, offset int) ([]*models.Student, error)
	ListAll(ctx context.Context) ([]*models.Student, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Student, error)
	// ListByClass matches students whose grade normalizes to the given
	// class label, so "7", "7th" and "7TH" all land in class 7.
	ListByClass(ctx context.Context, className string) ([]*models.Student, error)
	UpdateRollNumber(ctx context.Context, id uuid.UUID, rollNumber int) error
	AppendPayment(ctx context.Context, id uuid.UUID, payment models.StudentPayment) error
	// LastUniqueIDForPrefix returns the highest assigned unique ID
	// under a city+year prefix, or "" when none exists yet.
	LastUniqueIDForPrefix(ctx context.Context, prefix string) (string, error)
}

type studentRepo struct {
	db DB
}

func NewStudentRepo(db DB) StudentRepository {
	return &studentRepo{db: db}
}

const studentColumns = `id, unique_id, name, grade, section, roll_number, payments, created_at, updated_at`

func scanStudent(row pgx.Row) (*models.Student, error) {
	student := &models.Student{}
	err := row.Scan(&student.ID, &student.UniqueID, &student.Name, &student.Grade, &student.Section, &student.RollNumber, &student.Payments, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (r *studentRepo) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (id, unique_id, name, grade, section, roll_number, payments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, student.ID, student.UniqueID, student.Name, student.Grade, student.Section, student.RollNumber, student.Payments)
	return err
}

func (r *studentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	student, err := scanStudent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return student, nil
}

func (r *studentRepo) GetByUniqueID(ctx context.Context, uniqueID string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE unique_id = $1`
	student, err := scanStudent(r.db.QueryRow(ctx, query, uniqueID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return student, nil
}

func (r *studentRepo) List(ctx context.Context, limit, offset int) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY grade, name LIMIT $1 OFFSET $2`
	return r.queryStudents(ctx, query, limit, offset)
}

func (r *studentRepo) ListAll(ctx context.Context) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY grade, name, unique_id`
	return r.queryStudents(ctx, query)
}

func (r *studentRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = ANY($1) ORDER BY name`
	return r.queryStudents(ctx, query, ids)
}

func (r *studentRepo) ListByClass(ctx context.Context, className string) ([]*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE lower(regexp_replace(grade, '(st|nd|rd|th)$', '', 'i')) = lower($1) ORDER BY roll_number NULLS LAST, name`
	return r.queryStudents(ctx, query, className)
}

func (r *studentRepo) queryStudents(ctx context.Context, query string, args ...interface{}) ([]*models.Student, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

func (r *studentRepo) UpdateRollNumber(ctx context.Context, id uuid.UUID, rollNumber int) error {
	query := `UPDATE students SET roll_number = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, rollNumber, id)
	return err
}

func (r *studentRepo) AppendPayment(ctx context.Context, id uuid.UUID, payment models.StudentPayment) error {
	query := `
		UPDATE students
		SET payments = payments || $1::jsonb, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, []models.StudentPayment{payment}, id)
	return err
}

func (r *studentRepo) LastUniqueIDForPrefix(ctx context.Context, prefix string) (string, error) {
	var uniqueID string
	query := `SELECT unique_id FROM students WHERE unique_id LIKE $1 || '%' ORDER BY unique_id DESC LIMIT 1`
	err := r.db.QueryRow(ctx, query, prefix).Scan(&uniqueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return uniqueID, nil
}
