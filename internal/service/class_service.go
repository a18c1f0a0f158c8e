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

type classRepository interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListWithPrereq(ctx context.Context) ([]models.ClassWithPrereq, error)
	Schedule(ctx context.Context) ([]models.ScheduleRow, error)
	Create(ctx context.Context, class *models.Class, prerequisiteIDs []string) error
	Update(ctx context.Context, class *models.Class, prerequisiteIDs []string) error
	Delete(ctx context.Context, id string) error
	ListPrerequisites(ctx context.Context, classID string) ([]models.PrerequisiteDetail, error)
	AddPrerequisite(ctx context.Context, classID, prerequisiteClassID string) (*models.ClassPrerequisite, error)
	DeletePrerequisite(ctx context.Context, edgeID string) error
}

// CreateClassRequest captures fields for scheduling a class.
type CreateClassRequest struct {
	Name            string   `json:"name" validate:"required"`
	Day             string   `json:"day" validate:"required"`
	Time            string   `json:"time" validate:"required"`
	SubjectID       string   `json:"subject_id" validate:"required"`
	TeacherID       string   `json:"teacher_id" validate:"required"`
	PrerequisiteIDs []string `json:"prerequisite_ids"`
}

// UpdateClassRequest mirrors the create payload for full updates.
type UpdateClassRequest = CreateClassRequest

// AddPrerequisiteRequest names the class a class depends on.
type AddPrerequisiteRequest struct {
	PrerequisiteClassID string `json:"prerequisite_class_id" validate:"required"`
}

// ClassService handles class scheduling and the prerequisite graph.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService creates a new class service.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// List returns all classes.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// ListWithPrereq returns the joined listing with aggregated prerequisites.
func (s *ClassService) ListWithPrereq(ctx context.Context) ([]models.ClassWithPrereq, error) {
	classes, err := s.repo.ListWithPrereq(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Schedule returns all classes ordered by day and time.
func (s *ClassService) Schedule(ctx context.Context) ([]models.ScheduleRow, error) {
	rows, err := s.repo.Schedule(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return rows, nil
}

// Get returns one class by identifier.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create schedules a class, optionally recording prerequisite edges.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	if err := s.checkPrerequisitesExist(ctx, req.PrerequisiteIDs); err != nil {
		return nil, err
	}

	class := &models.Class{
		Name:      req.Name,
		Day:       req.Day,
		Time:      req.Time,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
	}

	if err := s.repo.Create(ctx, class, req.PrerequisiteIDs); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject or teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update modifies a class and replaces its prerequisite edges.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	for _, prereqID := range req.PrerequisiteIDs {
		if prereqID == id {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class cannot be its own prerequisite")
		}
	}
	if err := s.checkPrerequisitesExist(ctx, req.PrerequisiteIDs); err != nil {
		return nil, err
	}

	class := &models.Class{
		ID:        id,
		Name:      req.Name,
		Day:       req.Day,
		Time:      req.Time,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
	}

	if err := s.repo.Update(ctx, class, req.PrerequisiteIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject or teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class and its outgoing prerequisite edges.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		if repository.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "class has attendance records or is a prerequisite")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}

// ListPrerequisites names the prerequisite classes of one class.
func (s *ClassService) ListPrerequisites(ctx context.Context, classID string) ([]models.PrerequisiteDetail, error) {
	exists, err := s.repo.Exists(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	prereqs, err := s.repo.ListPrerequisites(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list prerequisites")
	}
	return prereqs, nil
}

// AddPrerequisite records a "requires" edge between two classes. A class may
// not depend on itself.
func (s *ClassService) AddPrerequisite(ctx context.Context, classID string, req AddPrerequisiteRequest) (*models.ClassPrerequisite, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid prerequisite payload")
	}
	if classID == req.PrerequisiteClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class cannot be its own prerequisite")
	}

	for _, id := range []string{classID, req.PrerequisiteClassID} {
		exists, err := s.repo.Exists(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
		}
		if !exists {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
	}

	edge, err := s.repo.AddPrerequisite(ctx, classID, req.PrerequisiteClassID)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "prerequisite already recorded")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add prerequisite")
	}
	return edge, nil
}

// DeletePrerequisite removes one edge by its identifier.
func (s *ClassService) DeletePrerequisite(ctx context.Context, edgeID string) error {
	if err := s.repo.DeletePrerequisite(ctx, edgeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "prerequisite not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete prerequisite")
	}
	return nil
}

func (s *ClassService) checkPrerequisitesExist(ctx context.Context, ids []string) error {
	for _, id := range ids {
		exists, err := s.repo.Exists(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prerequisite class")
		}
		if !exists {
			return appErrors.Clone(appErrors.ErrNotFound, "prerequisite class not found")
		}
	}
	return nil
}
