package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	"github.com/altius-edu/tuition-admin-api/internal/repository"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

type staffRepository interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
	FindByUsername(ctx context.Context, username string) (*models.Staff, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, id string, patch repository.StaffPatch) error
}

// CreateStaffRequest captures fields for registering a staff account.
type CreateStaffRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
	Username string  `json:"username" validate:"required,min=3"`
	Password string  `json:"password" validate:"required,min=8"`
}

// UpdateStaffRequest carries the optional fields of a partial staff update.
type UpdateStaffRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Username *string `json:"username" validate:"omitempty,min=3"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// StaffService handles staff account workflows.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService creates a new staff service.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// Get returns one staff account.
func (s *StaffService) Get(ctx context.Context, id string) (*models.Staff, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}
	return staff, nil
}

// Create registers a staff account with a hashed password.
func (s *StaffService) Create(ctx context.Context, req CreateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	staff := &models.Staff{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Username:     req.Username,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, staff); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff")
	}
	return staff, nil
}

// Update applies the fields present in the patch, re-hashing the password
// when one is supplied.
func (s *StaffService) Update(ctx context.Context, id string, req UpdateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}

	patch := repository.StaffPatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Username: req.Username,
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		hashed := string(hash)
		patch.PasswordHash = &hashed
	}
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff")
	}

	return s.Get(ctx, id)
}
