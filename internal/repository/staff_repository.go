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

// StaffRepository handles persistence of staff accounts.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs the repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// FindByID returns one staff account.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	const query = `SELECT id, name, email, phone, username, password_hash, created_at, updated_at FROM staff WHERE id = $1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// FindByUsername returns the staff account for a login attempt.
func (r *StaffRepository) FindByUsername(ctx context.Context, username string) (*models.Staff, error) {
	const query = `SELECT id, name, email, phone, username, password_hash, created_at, updated_at FROM staff WHERE username = $1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, username); err != nil {
		return nil, err
	}
	return &staff, nil
}

// Create persists a new staff account.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now
	const query = `INSERT INTO staff (id, name, email, phone, username, password_hash, created_at, updated_at)
        VALUES (:id, :name, :email, :phone, :username, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// StaffPatch lists the optional fields of a partial staff update.
type StaffPatch struct {
	Name         *string
	Email        *string
	Phone        *string
	Username     *string
	PasswordHash *string
}

// Empty reports whether the patch carries no changes.
func (p StaffPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Username == nil && p.PasswordHash == nil
}

// Update applies only the fields present in the patch.
func (r *StaffRepository) Update(ctx context.Context, id string, patch StaffPatch) error {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	add("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE staff SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)+1)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update staff rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
