package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

// StudentRepository handles persistence of students and their subtype rows.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentDetailColumns = `s.id, s.name, s.ic, s.address, s.email, s.phone, s.type, s.created_at, s.updated_at,
        p.year, sec.form, sec.stream`

const studentDetailJoins = `FROM students s
        LEFT JOIN primary_students p ON p.student_id = s.id
        LEFT JOIN secondary_students sec ON sec.student_id = s.id`

// List returns students joined with their subtype fields.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(s.name ILIKE $%d OR s.ic ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("s.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
        %s%s ORDER BY s.created_at DESC LIMIT %d OFFSET %d`, studentDetailColumns, studentDetailJoins, clause, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s%s", studentDetailJoins, clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns one student with subtype fields.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s
        %s WHERE s.id = $1`, studentDetailColumns, studentDetailJoins)
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// SubtypeFields carries the subtype attributes for create and update flows.
type SubtypeFields struct {
	Year   string
	Form   int
	Stream string
}

// Create inserts the student and its matching subtype row in one transaction.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student, subtype SubtypeFields) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}

	const insertStudent = `INSERT INTO students (id, name, ic, address, email, phone, type, created_at, updated_at)
        VALUES (:id, :name, :ic, :address, :email, :phone, :type, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertStudent, student); err != nil {
		tx.Rollback()
		return fmt.Errorf("create student: %w", err)
	}

	if err := insertSubtype(ctx, tx, student.ID, student.Type, subtype); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student: %w", err)
	}
	return nil
}

// Update mutates the student and reconciles its subtype row. When the type
// changes, both subtype rows are removed before the new one is written, so
// exactly one subtype row survives.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student, subtype SubtypeFields) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update student: %w", err)
	}

	var oldType models.StudentType
	if err := tx.GetContext(ctx, &oldType, `SELECT type FROM students WHERE id = $1`, student.ID); err != nil {
		tx.Rollback()
		return err
	}

	student.UpdatedAt = time.Now().UTC()
	const updateStudent = `UPDATE students SET name = :name, ic = :ic, address = :address, email = :email,
        phone = :phone, type = :type, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateStudent, student); err != nil {
		tx.Rollback()
		return fmt.Errorf("update student: %w", err)
	}

	if oldType != student.Type {
		if _, err := tx.ExecContext(ctx, `DELETE FROM primary_students WHERE student_id = $1`, student.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("clear primary subtype: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM secondary_students WHERE student_id = $1`, student.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("clear secondary subtype: %w", err)
		}
	}

	if err := upsertSubtype(ctx, tx, student.ID, student.Type, subtype); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update student: %w", err)
	}
	return nil
}

// Delete removes both subtype rows and then the student, one transaction.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM primary_students WHERE student_id = $1`, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete primary subtype: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM secondary_students WHERE student_id = $1`, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete secondary subtype: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("delete student rows affected: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete student: %w", err)
	}
	return nil
}

func insertSubtype(ctx context.Context, tx *sqlx.Tx, studentID string, t models.StudentType, subtype SubtypeFields) error {
	switch t {
	case models.StudentTypePrimary:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO primary_students (student_id, year) VALUES ($1, $2)`,
			studentID, subtype.Year); err != nil {
			return fmt.Errorf("create primary subtype: %w", err)
		}
	case models.StudentTypeSecondary:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO secondary_students (student_id, form, stream) VALUES ($1, $2, $3)`,
			studentID, subtype.Form, subtype.Stream); err != nil {
			return fmt.Errorf("create secondary subtype: %w", err)
		}
	}
	return nil
}

func upsertSubtype(ctx context.Context, tx *sqlx.Tx, studentID string, t models.StudentType, subtype SubtypeFields) error {
	switch t {
	case models.StudentTypePrimary:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO primary_students (student_id, year) VALUES ($1, $2)
             ON CONFLICT (student_id) DO UPDATE SET year = EXCLUDED.year`,
			studentID, subtype.Year); err != nil {
			return fmt.Errorf("upsert primary subtype: %w", err)
		}
	case models.StudentTypeSecondary:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO secondary_students (student_id, form, stream) VALUES ($1, $2, $3)
             ON CONFLICT (student_id) DO UPDATE SET form = EXCLUDED.form, stream = EXCLUDED.stream`,
			studentID, subtype.Form, subtype.Stream); err != nil {
			return fmt.Errorf("upsert secondary subtype: %w", err)
		}
	}
	return nil
}
