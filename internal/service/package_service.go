package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	"github.com/altius-edu/tuition-admin-api/internal/repository"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

type packageRepository interface {
	List(ctx context.Context) ([]models.Package, error)
	FindByID(ctx context.Context, id string) (*models.Package, error)
	Create(ctx context.Context, pkg *models.Package) error
	Update(ctx context.Context, pkg *models.Package) error
	Delete(ctx context.Context, id string) error
}

// CreatePackageRequest captures fields for creating a package.
type CreatePackageRequest struct {
	Name     string  `json:"name" validate:"required"`
	Fee      float64 `json:"fee" validate:"required,gt=0"`
	Duration string  `json:"duration" validate:"required"`
}

// UpdatePackageRequest mirrors the create payload for full updates.
type UpdatePackageRequest = CreatePackageRequest

// PackageService handles package domain workflows.
type PackageService struct {
	repo      packageRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPackageService creates a new package service.
func NewPackageService(repo packageRepository, validate *validator.Validate, logger *zap.Logger) *PackageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageService{repo: repo, validator: validate, logger: logger}
}

// List returns all packages ordered by name.
func (s *PackageService) List(ctx context.Context) ([]models.Package, error) {
	packages, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list packages")
	}
	return packages, nil
}

// Get returns one package by identifier.
func (s *PackageService) Get(ctx context.Context, id string) (*models.Package, error) {
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "package not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load package")
	}
	return pkg, nil
}

// Create adds a new package.
func (s *PackageService) Create(ctx context.Context, req CreatePackageRequest) (*models.Package, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid package payload")
	}

	pkg := &models.Package{
		Name:     req.Name,
		Fee:      req.Fee,
		Duration: req.Duration,
	}

	if err := s.repo.Create(ctx, pkg); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "package name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create package")
	}
	return pkg, nil
}

// Update modifies an existing package.
func (s *PackageService) Update(ctx context.Context, id string, req UpdatePackageRequest) (*models.Package, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid package payload")
	}

	pkg := &models.Package{
		ID:       id,
		Name:     req.Name,
		Fee:      req.Fee,
		Duration: req.Duration,
	}

	if err := s.repo.Update(ctx, pkg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "package not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update package")
	}

	return s.Get(ctx, id)
}

// Delete removes a package that has no subjects or enrollments.
func (s *PackageService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "package not found")
		}
		if repository.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "package has subjects or enrollments")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete package")
	}
	return nil
}
