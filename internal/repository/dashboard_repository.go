package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

// DashboardRepository runs the KPI queries behind the admin landing page.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// StudentBreakdown counts students in total and per subtype.
func (r *DashboardRepository) StudentBreakdown(ctx context.Context) (*models.StudentBreakdown, error) {
	const query = `SELECT COUNT(*) AS total,
        SUM(CASE WHEN type = 'Primary' THEN 1 ELSE 0 END) AS primary,
        SUM(CASE WHEN type = 'Secondary' THEN 1 ELSE 0 END) AS secondary
        FROM students`
	var breakdown models.StudentBreakdown
	if err := r.db.GetContext(ctx, &breakdown, query); err != nil {
		return nil, fmt.Errorf("student breakdown: %w", err)
	}
	return &breakdown, nil
}

// ClassCount returns the total number of classes.
func (r *DashboardRepository) ClassCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM classes`); err != nil {
		return 0, fmt.Errorf("class count: %w", err)
	}
	return count, nil
}

// AverageAttendance returns the overall present rate across all attendance
// records, 0 when no records exist.
func (r *DashboardRepository) AverageAttendance(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(ROUND(
        (SUM(CASE WHEN status = 'Present' THEN 1 ELSE 0 END)::numeric /
         NULLIF(COUNT(*), 0)) * 100, 2), 0)
        FROM attendance`
	var avg float64
	if err := r.db.GetContext(ctx, &avg, query); err != nil {
		return 0, fmt.Errorf("average attendance: %w", err)
	}
	return avg, nil
}

// LowAttendanceCount counts distinct students whose overall present rate
// falls under the threshold.
func (r *DashboardRepository) LowAttendanceCount(ctx context.Context, threshold float64) (int, error) {
	const query = `SELECT COUNT(*) FROM (
        SELECT a.student_id
        FROM attendance a
        GROUP BY a.student_id
        HAVING (SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END)::numeric /
                NULLIF(COUNT(*), 0)) * 100 < $1
        ) low`
	var count int
	if err := r.db.GetContext(ctx, &count, query, threshold); err != nil {
		return 0, fmt.Errorf("low attendance count: %w", err)
	}
	return count, nil
}

// FinancialSnapshot summarises how many enrollments are fully paid. An
// enrollment counts as paid only when the amount collected covers the
// package fee, so partial payments stay in the unpaid bucket.
func (r *DashboardRepository) FinancialSnapshot(ctx context.Context) (*models.FinancialSnapshot, error) {
	const query = `SELECT COUNT(*) AS total_enrollments,
        SUM(CASE WHEN COALESCE(pay.total_fees, 0) < p.fee THEN 1 ELSE 0 END) AS unpaid_enrollments,
        COALESCE(ROUND(
            (SUM(CASE WHEN COALESCE(pay.total_fees, 0) >= p.fee THEN 1 ELSE 0 END)::numeric /
             NULLIF(COUNT(*), 0)) * 100, 2), 0) AS payment_completion_rate
        FROM enrollments e
        JOIN packages p ON p.id = e.package_id
        LEFT JOIN payments pay ON pay.id = e.payment_id`
	var snapshot models.FinancialSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query); err != nil {
		return nil, fmt.Errorf("financial snapshot: %w", err)
	}
	return &snapshot, nil
}
