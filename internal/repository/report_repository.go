package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

// ReportRepository runs the aggregate report queries.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// AttendanceReport aggregates attendance per (student, class) for one month
// and keeps only rows on the requested side of the percentage threshold.
// Percentage is strict presence over total records; Late and Excused do not
// count as present.
func (r *ReportRepository) AttendanceReport(ctx context.Context, month string, threshold float64, direction models.AttendanceDirection) ([]models.AttendanceReportRow, error) {
	having := "HAVING ROUND((SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END)::numeric / COUNT(*)) * 100, 2) >= $2"
	if direction == models.AttendanceBelow {
		having = "HAVING ROUND((SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END)::numeric / COUNT(*)) * 100, 2) < $2"
	}
	query := fmt.Sprintf(`SELECT s.name AS student_name, c.name AS class_name,
        COUNT(*) AS total_classes,
        SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END) AS present_count,
        SUM(CASE WHEN a.status = 'Absent' THEN 1 ELSE 0 END) AS absent_count,
        ROUND((SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END)::numeric / COUNT(*)) * 100, 2) AS attendance_percentage
        FROM attendance a
        JOIN students s ON s.id = a.student_id
        JOIN classes c ON c.id = a.class_id
        WHERE to_char(a.date, 'YYYY-MM') = $1
        GROUP BY s.name, c.name
        %s
        ORDER BY attendance_percentage, s.name`, having)

	var rows []models.AttendanceReportRow
	if err := r.db.SelectContext(ctx, &rows, query, month, threshold); err != nil {
		return nil, fmt.Errorf("attendance report: %w", err)
	}
	return rows, nil
}

// FinancialRows details enrollments created in the report month, with the
// amount paid and the balance still owed per enrollment.
func (r *ReportRepository) FinancialRows(ctx context.Context, month string, outstandingOnly bool) ([]models.FinancialReportRow, error) {
	query := `SELECT s.name AS student_name, p.name AS package_name,
        COALESCE(p.fee, 0) AS total_fee,
        COALESCE(pay.total_fees, 0) AS amount_paid,
        COALESCE(p.fee, 0) - COALESCE(pay.total_fees, 0) AS outstanding
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN packages p ON p.id = e.package_id
        LEFT JOIN payments pay ON pay.id = e.payment_id
        WHERE to_char(e.enroll_date, 'YYYY-MM') = $1`
	if outstandingOnly {
		query += " AND COALESCE(p.fee, 0) - COALESCE(pay.total_fees, 0) > 0"
	}
	query += " ORDER BY s.name, p.name"

	var rows []models.FinancialReportRow
	if err := r.db.SelectContext(ctx, &rows, query, month); err != nil {
		return nil, fmt.Errorf("financial report rows: %w", err)
	}
	return rows, nil
}

// FinancialSummary totals revenue, collections and outstanding fees for
// enrollments created in the report month. outstandingOnly narrows the
// summary to the same rows the detail listing returns.
func (r *ReportRepository) FinancialSummary(ctx context.Context, month string, outstandingOnly bool) (*models.FinancialSummary, error) {
	query := `SELECT COALESCE(SUM(p.fee), 0) AS total_revenue,
        COALESCE(SUM(pay.total_fees), 0) AS total_collected,
        COALESCE(SUM(p.fee), 0) - COALESCE(SUM(pay.total_fees), 0) AS outstanding_fees,
        COUNT(e.id) AS total_enrollment
        FROM enrollments e
        JOIN packages p ON p.id = e.package_id
        LEFT JOIN payments pay ON pay.id = e.payment_id
        WHERE to_char(e.enroll_date, 'YYYY-MM') = $1`
	if outstandingOnly {
		query += " AND COALESCE(p.fee, 0) - COALESCE(pay.total_fees, 0) > 0"
	}
	var summary models.FinancialSummary
	if err := r.db.GetContext(ctx, &summary, query, month); err != nil {
		return nil, fmt.Errorf("financial report summary: %w", err)
	}
	return &summary, nil
}
