package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

// AttendanceRepository handles persistence of attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceRecordQuery = `SELECT a.id, a.student_id, a.class_id, a.date, a.status,
        s.name AS student_name, c.name AS class_name
        FROM attendance a
        JOIN students s ON s.id = a.student_id
        JOIN classes c ON c.id = a.class_id`

// List returns attendance records, optionally filtered by class and date.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	query := attendanceRecordQuery
	conditions := ""
	args := []interface{}{}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		conditions += fmt.Sprintf(" WHERE a.class_id = $%d", len(args))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		clause := " WHERE"
		if conditions != "" {
			clause = " AND"
		}
		conditions += fmt.Sprintf("%s a.date = $%d", clause, len(args))
	}
	query += conditions + " ORDER BY a.date DESC, s.name"

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// FindByID returns a single attendance record with names joined in.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	query := attendanceRecordQuery + " WHERE a.id = $1"
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts one attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	const query = `INSERT INTO attendance (id, student_id, class_id, date, status)
        VALUES (:id, :student_id, :class_id, :date, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// BulkCreate inserts one record per student for a single class sitting. The
// whole batch commits or rolls back together.
func (r *AttendanceRepository) BulkCreate(ctx context.Context, records []models.Attendance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk attendance: %w", err)
	}

	const query = `INSERT INTO attendance (id, student_id, class_id, date, status)
        VALUES (:id, :student_id, :class_id, :date, :status)`
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert attendance batch row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk attendance: %w", err)
	}
	return nil
}

// Update changes the status and date of an existing record.
func (r *AttendanceRepository) Update(ctx context.Context, id string, date models.Date, status models.AttendanceStatus) error {
	const query = `UPDATE attendance SET date = $1, status = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, date, status, id)
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attendance rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes one attendance record.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete attendance rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ClassRoster lists students enrolled in the package that owns a class'
// subject, i.e. the students markable for that class.
func (r *AttendanceRepository) ClassRoster(ctx context.Context, classID string) ([]models.ClassRosterEntry, error) {
	const query = `SELECT DISTINCT s.id AS student_id, s.name AS student_name
        FROM classes c
        JOIN subjects sub ON sub.id = c.subject_id
        JOIN enrollments e ON e.package_id = sub.package_id
        JOIN students s ON s.id = e.student_id
        WHERE c.id = $1
        ORDER BY s.name`
	var roster []models.ClassRosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, classID); err != nil {
		return nil, fmt.Errorf("class roster: %w", err)
	}
	return roster, nil
}
