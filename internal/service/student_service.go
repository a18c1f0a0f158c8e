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

// Subtype defaults applied when the payload omits them.
const (
	defaultPrimaryYear     = "Year 4"
	defaultSecondaryForm   = 1
	defaultSecondaryStream = "Science"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, student *models.Student, subtype repository.SubtypeFields) error
	Update(ctx context.Context, student *models.Student, subtype repository.SubtypeFields) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest captures fields for registering a student.
type CreateStudentRequest struct {
	Name    string             `json:"name" validate:"required"`
	IC      string             `json:"ic" validate:"required"`
	Address *string            `json:"address"`
	Email   *string            `json:"email" validate:"omitempty,email"`
	Phone   *string            `json:"phone"`
	Type    models.StudentType `json:"type" validate:"required"`
	Year    *string            `json:"year"`
	Form    *int               `json:"form" validate:"omitempty,min=1,max=5"`
	Stream  *string            `json:"stream"`
}

// UpdateStudentRequest mirrors the create payload for full updates.
type UpdateStudentRequest = CreateStudentRequest

// StudentService handles student domain workflows.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService creates a new student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated students with their subtype fields.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "type must be Primary or Secondary")
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns one student by identifier.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a student together with its subtype row.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be Primary or Secondary")
	}

	student := &models.Student{
		Name:    req.Name,
		IC:      req.IC,
		Address: req.Address,
		Email:   req.Email,
		Phone:   req.Phone,
		Type:    req.Type,
	}

	if err := s.repo.Create(ctx, student, subtypeFromRequest(req)); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student with this IC already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	return s.Get(ctx, student.ID)
}

// Update modifies a student. A type change swaps the subtype row so exactly
// one survives.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be Primary or Secondary")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student := &models.Student{
		ID:        existing.ID,
		Name:      req.Name,
		IC:        req.IC,
		Address:   req.Address,
		Email:     req.Email,
		Phone:     req.Phone,
		Type:      req.Type,
		CreatedAt: existing.CreatedAt,
	}

	if err := s.repo.Update(ctx, student, subtypeFromRequest(req)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student with this IC already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	return s.Get(ctx, id)
}

// Delete removes a student and its subtype row.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if repository.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "student has enrollments or attendance records")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

func subtypeFromRequest(req CreateStudentRequest) repository.SubtypeFields {
	fields := repository.SubtypeFields{
		Year:   defaultPrimaryYear,
		Form:   defaultSecondaryForm,
		Stream: defaultSecondaryStream,
	}
	if req.Year != nil && *req.Year != "" {
		fields.Year = *req.Year
	}
	if req.Form != nil {
		fields.Form = *req.Form
	}
	if req.Stream != nil && *req.Stream != "" {
		fields.Stream = *req.Stream
	}
	return fields
}
