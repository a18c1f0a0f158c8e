package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns the fully joined enrollment listing, newest first.
func (r *EnrollmentRepository) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.package_id, e.enroll_date, e.status, e.payment_id,
        s.name AS student_name,
        p.name AS package_name,
        sub.name AS subject_name,
        c.id AS class_id, c.name AS class_name, c.day AS class_day, c.time AS class_time,
        t.name AS teacher_name,
        COALESCE(pay.total_fees, 0) AS total_fees_paid
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        LEFT JOIN packages p ON p.id = e.package_id
        LEFT JOIN subjects sub ON sub.package_id = p.id
        LEFT JOIN classes c ON c.subject_id = sub.id
        LEFT JOIN teachers t ON t.id = c.teacher_id
        LEFT JOIN payments pay ON pay.id = e.payment_id
        ORDER BY e.enroll_date DESC, e.id DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns one enrollment.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, package_id, enroll_date, status, payment_id FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists reports whether the (student, package) pair is already enrolled.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, packageID string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one,
		`SELECT 1 FROM enrollments WHERE student_id = $1 AND package_id = $2 LIMIT 1`,
		studentID, packageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment exists: %w", err)
	}
	return true, nil
}

// CountSubjectEnrollments counts how many of the named subjects the student
// holds an enrollment for, via the packages those subjects belong to.
func (r *EnrollmentRepository) CountSubjectEnrollments(ctx context.Context, studentID string, subjectNames []string) (int, error) {
	if len(subjectNames) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(
		`SELECT COUNT(DISTINCT s.name) FROM enrollments e
         JOIN subjects s ON s.package_id = e.package_id
         WHERE e.student_id = ? AND s.name IN (?)`,
		studentID, subjectNames)
	if err != nil {
		return 0, fmt.Errorf("build subject enrollment query: %w", err)
	}
	query = r.db.Rebind(query)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count subject enrollments: %w", err)
	}
	return count, nil
}

// Create persists a new enrollment with no payment attached. The unique
// (student_id, package_id) constraint backstops the duplicate check.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO enrollments (id, student_id, package_id, enroll_date, status, payment_id)
        VALUES (:id, :student_id, :package_id, :enroll_date, :status, NULL)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update replaces the package and status for an enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, id, packageID string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET package_id = $2, status = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, packageID, status)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update enrollment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
