package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

// ClassRepository handles persistence of classes and their prerequisite edges.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns all classes.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT id, name, day, time, subject_id, teacher_id, created_at, updated_at FROM classes ORDER BY name`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns one class.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, day, time, subject_id, teacher_id, created_at, updated_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Exists reports whether a class row exists.
func (r *ClassRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, `SELECT 1 FROM classes WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class exists: %w", err)
	}
	return true, nil
}

// ListWithPrereq returns classes joined with subject, package and teacher
// names plus a comma-delimited prerequisite class list.
func (r *ClassRepository) ListWithPrereq(ctx context.Context) ([]models.ClassWithPrereq, error) {
	const query = `SELECT c.id, c.name, c.day, c.time,
        s.name AS subject_name, p.name AS package_name, t.name AS teacher_name,
        string_agg(pc.id, ', ' ORDER BY pc.id) AS prerequisites
        FROM classes c
        JOIN subjects s ON s.id = c.subject_id
        JOIN packages p ON p.id = s.package_id
        JOIN teachers t ON t.id = c.teacher_id
        LEFT JOIN class_prerequisites cp ON cp.class_id = c.id
        LEFT JOIN classes pc ON pc.id = cp.prerequisite_class_id
        GROUP BY c.id, c.name, c.day, c.time, s.name, p.name, t.name
        ORDER BY c.name`
	var rows []models.ClassWithPrereq
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list classes with prerequisites: %w", err)
	}
	return rows, nil
}

// Schedule returns the timetable ordered by day and time.
func (r *ClassRepository) Schedule(ctx context.Context) ([]models.ScheduleRow, error) {
	const query = `SELECT c.id AS class_id, c.name AS class_name, c.day, c.time,
        s.name AS subject_name, t.name AS teacher_name
        FROM classes c
        JOIN subjects s ON s.id = c.subject_id
        JOIN teachers t ON t.id = c.teacher_id
        ORDER BY c.day, c.time`
	var rows []models.ScheduleRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list class schedule: %w", err)
	}
	return rows, nil
}

// Create inserts the class and its prerequisite edges in one transaction.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class, prerequisiteIDs []string) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create class: %w", err)
	}

	const insertClass = `INSERT INTO classes (id, name, day, time, subject_id, teacher_id, created_at, updated_at)
        VALUES (:id, :name, :day, :time, :subject_id, :teacher_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertClass, class); err != nil {
		tx.Rollback()
		return fmt.Errorf("create class: %w", err)
	}

	if err := insertPrerequisites(ctx, tx, class.ID, prerequisiteIDs); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create class: %w", err)
	}
	return nil
}

// Update replaces the class fields and its full prerequisite set.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class, prerequisiteIDs []string) error {
	class.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update class: %w", err)
	}

	const updateClass = `UPDATE classes SET name = :name, day = :day, time = :time,
        subject_id = :subject_id, teacher_id = :teacher_id, updated_at = :updated_at WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, updateClass, class)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("update class: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("update class rows affected: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM class_prerequisites WHERE class_id = $1`, class.ID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear prerequisites: %w", err)
	}

	if err := insertPrerequisites(ctx, tx, class.ID, prerequisiteIDs); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update class: %w", err)
	}
	return nil
}

// Delete removes the class and its outgoing prerequisite edges. Edges from
// other classes pointing at the deleted class are left untouched.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete class: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM class_prerequisites WHERE class_id = $1`, id); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete class prerequisites: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("delete class: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("delete class rows affected: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete class: %w", err)
	}
	return nil
}

// ListPrerequisites names the prerequisite classes for a class.
func (r *ClassRepository) ListPrerequisites(ctx context.Context, classID string) ([]models.PrerequisiteDetail, error) {
	const query = `SELECT cp.id AS edge_id, c.id AS class_id, c.name AS class_name
        FROM class_prerequisites cp
        JOIN classes c ON c.id = cp.prerequisite_class_id
        WHERE cp.class_id = $1
        ORDER BY c.name`
	var rows []models.PrerequisiteDetail
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("list prerequisites: %w", err)
	}
	return rows, nil
}

// AddPrerequisite inserts a single prerequisite edge.
func (r *ClassRepository) AddPrerequisite(ctx context.Context, classID, prerequisiteClassID string) (*models.ClassPrerequisite, error) {
	edge := &models.ClassPrerequisite{
		ID:                  uuid.NewString(),
		ClassID:             classID,
		PrerequisiteClassID: prerequisiteClassID,
	}
	const query = `INSERT INTO class_prerequisites (id, class_id, prerequisite_class_id) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, edge.ID, edge.ClassID, edge.PrerequisiteClassID); err != nil {
		return nil, fmt.Errorf("add prerequisite: %w", err)
	}
	return edge, nil
}

// DeletePrerequisite removes one edge by its identifier.
func (r *ClassRepository) DeletePrerequisite(ctx context.Context, edgeID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM class_prerequisites WHERE id = $1`, edgeID)
	if err != nil {
		return fmt.Errorf("delete prerequisite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete prerequisite rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func insertPrerequisites(ctx context.Context, tx *sqlx.Tx, classID string, prerequisiteIDs []string) error {
	const query = `INSERT INTO class_prerequisites (id, class_id, prerequisite_class_id) VALUES ($1, $2, $3)`
	for _, prereqID := range prerequisiteIDs {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), classID, prereqID); err != nil {
			return fmt.Errorf("insert prerequisite %s: %w", prereqID, err)
		}
	}
	return nil
}
