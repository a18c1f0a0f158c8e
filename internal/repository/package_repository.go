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

// PackageRepository handles persistence of tuition packages.
type PackageRepository struct {
	db *sqlx.DB
}

// NewPackageRepository constructs the repository.
func NewPackageRepository(db *sqlx.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

// List returns all packages ordered by name.
func (r *PackageRepository) List(ctx context.Context) ([]models.Package, error) {
	const query = `SELECT id, name, fee, duration, created_at, updated_at FROM packages ORDER BY name`
	var packages []models.Package
	if err := r.db.SelectContext(ctx, &packages, query); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return packages, nil
}

// FindByID returns one package.
func (r *PackageRepository) FindByID(ctx context.Context, id string) (*models.Package, error) {
	const query = `SELECT id, name, fee, duration, created_at, updated_at FROM packages WHERE id = $1`
	var pkg models.Package
	if err := r.db.GetContext(ctx, &pkg, query, id); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// Create persists a new package.
func (r *PackageRepository) Create(ctx context.Context, pkg *models.Package) error {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	const query = `INSERT INTO packages (id, name, fee, duration, created_at, updated_at)
        VALUES (:id, :name, :fee, :duration, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pkg); err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	return nil
}

// Update replaces the mutable package fields.
func (r *PackageRepository) Update(ctx context.Context, pkg *models.Package) error {
	pkg.UpdatedAt = time.Now().UTC()
	const query = `UPDATE packages SET name = :name, fee = :fee, duration = :duration, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, pkg)
	if err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update package rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a package.
func (r *PackageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete package rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
