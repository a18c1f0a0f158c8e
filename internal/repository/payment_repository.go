package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

// Attachment failures distinguished for error mapping.
var (
	// ErrEnrollmentMissing signals the target enrollment does not exist.
	ErrEnrollmentMissing = errors.New("enrollment not found")
	// ErrAlreadyPaid signals the enrollment already carries a payment.
	ErrAlreadyPaid = errors.New("enrollment already has a payment")
)

// PaymentRepository handles persistence of payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Attach creates the payment and links it to an unpaid enrollment in one
// transaction. When the conditional link touches zero rows the whole
// operation rolls back, leaving no orphan payment.
func (r *PaymentRepository) Attach(ctx context.Context, enrollmentID string, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attach payment: %w", err)
	}

	const insertPayment = `INSERT INTO payments (id, payment_date, total_fees) VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertPayment, payment.ID, payment.PaymentDate, payment.TotalFees); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert payment: %w", err)
	}

	const claimSlot = `UPDATE enrollments SET payment_id = $1 WHERE id = $2 AND payment_id IS NULL`
	res, err := tx.ExecContext(ctx, claimSlot, payment.ID, enrollmentID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("attach payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("attach payment rows affected: %w", err)
	}
	if affected == 0 {
		var one int
		checkErr := tx.GetContext(ctx, &one, `SELECT 1 FROM enrollments WHERE id = $1`, enrollmentID)
		tx.Rollback()
		if checkErr == sql.ErrNoRows {
			return ErrEnrollmentMissing
		}
		if checkErr != nil {
			return fmt.Errorf("inspect enrollment: %w", checkErr)
		}
		return ErrAlreadyPaid
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attach payment: %w", err)
	}
	return nil
}

// StudentPackageGroups summarises a student's enrollments grouped by package,
// flagging paid and unpaid slots for the payment screen.
func (r *PaymentRepository) StudentPackageGroups(ctx context.Context, studentID string) ([]models.StudentPackageGroup, error) {
	const query = `SELECT p.id AS package_id, p.name AS package_name, COALESCE(p.fee, 0) AS package_fee,
        COUNT(e.id) AS enrollment_count,
        SUM(CASE WHEN e.payment_id IS NULL THEN 1 ELSE 0 END) AS unpaid_count,
        SUM(CASE WHEN e.payment_id IS NOT NULL THEN 1 ELSE 0 END) AS paid_count,
        string_agg(e.id, ', ' ORDER BY e.id) AS enrollment_ids,
        string_agg(e.id, ', ' ORDER BY e.id) FILTER (WHERE e.payment_id IS NOT NULL) AS paid_enrollment_ids,
        MIN(e.id) FILTER (WHERE e.payment_id IS NULL) AS first_unpaid_enrollment_id,
        MIN(e.id) FILTER (WHERE e.payment_id IS NOT NULL) AS first_paid_enrollment_id
        FROM enrollments e
        JOIN packages p ON p.id = e.package_id
        WHERE e.student_id = $1
        GROUP BY p.id, p.name, p.fee
        ORDER BY MIN(e.id)`
	var groups []models.StudentPackageGroup
	if err := r.db.SelectContext(ctx, &groups, query, studentID); err != nil {
		return nil, fmt.Errorf("list student package groups: %w", err)
	}
	return groups, nil
}

// StudentSummary totals all payments made by a student.
func (r *PaymentRepository) StudentSummary(ctx context.Context, studentID string) (*models.PaymentSummary, error) {
	const query = `SELECT s.name AS student_name, COALESCE(SUM(p.total_fees), 0) AS total_paid
        FROM students s
        JOIN enrollments e ON e.student_id = s.id
        LEFT JOIN payments p ON p.id = e.payment_id
        WHERE s.id = $1
        GROUP BY s.name`
	var summary models.PaymentSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID); err != nil {
		return nil, err
	}
	return &summary, nil
}

// StudentOutstanding sums the package fees of a student's unpaid enrollments.
func (r *PaymentRepository) StudentOutstanding(ctx context.Context, studentID string) (*models.OutstandingBalance, error) {
	const query = `SELECT COALESCE(SUM(CASE WHEN e.payment_id IS NULL THEN p.fee ELSE 0 END), 0) AS outstanding_fees
        FROM enrollments e
        JOIN packages p ON p.id = e.package_id
        WHERE e.student_id = $1`
	var balance models.OutstandingBalance
	if err := r.db.GetContext(ctx, &balance, query, studentID); err != nil {
		return nil, fmt.Errorf("student outstanding fees: %w", err)
	}
	return &balance, nil
}

// Receipt returns the full payment context for one paid enrollment.
func (r *PaymentRepository) Receipt(ctx context.Context, enrollmentID string) (*models.Receipt, error) {
	const query = `SELECT s.name AS student_name, s.ic AS student_ic,
        e.id AS enroll_id, e.enroll_date,
        p.name AS package_name, COALESCE(p.fee, 0) AS package_fee,
        pay.id AS payment_id, pay.payment_date, pay.total_fees
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN packages p ON p.id = e.package_id
        JOIN payments pay ON pay.id = e.payment_id
        WHERE e.id = $1`
	var receipt models.Receipt
	if err := r.db.GetContext(ctx, &receipt, query, enrollmentID); err != nil {
		return nil, err
	}
	return &receipt, nil
}
