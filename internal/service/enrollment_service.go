package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	"github.com/altius-edu/tuition-admin-api/internal/repository"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, packageID string) (bool, error)
	CountSubjectEnrollments(ctx context.Context, studentID string, subjectNames []string) (int, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, id, packageID string, status models.EnrollmentStatus) error
	Delete(ctx context.Context, id string) error
}

type enrollmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type enrollmentPackageRepository interface {
	FindByID(ctx context.Context, id string) (*models.Package, error)
}

// CreateEnrollmentRequest captures fields for enrolling a student.
type CreateEnrollmentRequest struct {
	StudentID  string                  `json:"student_id" validate:"required"`
	PackageID  string                  `json:"package_id" validate:"required"`
	EnrollDate *models.Date            `json:"enroll_date"`
	Status     models.EnrollmentStatus `json:"status"`
}

// UpdateEnrollmentRequest changes the package or status of an enrollment.
type UpdateEnrollmentRequest struct {
	PackageID string                  `json:"package_id" validate:"required"`
	Status    models.EnrollmentStatus `json:"status" validate:"required"`
}

// EnrollmentService enforces enrollment eligibility rules.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  enrollmentStudentRepository
	packages  enrollmentPackageRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService creates a new enrollment service.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentRepository, packages enrollmentPackageRepository, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, packages: packages, validator: validate, logger: logger}
}

// List returns all enrollments with their joined context.
func (s *EnrollmentService) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// Get returns one enrollment by identifier.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// Create enrolls a student into a package. Advanced packages require prior
// enrollments covering both the F4 and F5 variant of the same subject.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	pkg, err := s.packages.FindByID(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "package not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load package")
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, req.PackageID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this package")
	}

	if pkg.IsAdvanced() {
		if err := s.checkAdvancedEligibility(ctx, req.StudentID, pkg.AdvancedSubject()); err != nil {
			return nil, err
		}
	}

	enrollment := &models.Enrollment{
		StudentID:  req.StudentID,
		PackageID:  req.PackageID,
		Status:     req.Status,
		EnrollDate: models.NewDate(time.Now()),
	}
	if req.EnrollDate != nil {
		enrollment.EnrollDate = *req.EnrollDate
	}

	if err := s.repo.Create(ctx, enrollment); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this package")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	return enrollment, nil
}

// Update changes the package or status of an enrollment.
func (s *EnrollmentService) Update(ctx context.Context, id string, req UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if _, err := s.packages.FindByID(ctx, req.PackageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "package not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load package")
	}

	if err := s.repo.Update(ctx, id, req.PackageID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this package")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	return s.Get(ctx, id)
}

// Delete removes an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	return nil
}

// checkAdvancedEligibility verifies the student holds enrollments whose
// subjects cover both "<subject> F4" and "<subject> F5".
func (s *EnrollmentService) checkAdvancedEligibility(ctx context.Context, studentID, subject string) error {
	names := []string{subject + " F4", subject + " F5"}
	count, err := s.repo.CountSubjectEnrollments(ctx, studentID, names)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment eligibility")
	}
	if count < 2 {
		msg := fmt.Sprintf("Student must be enrolled in BOTH %s Form 4 and Form 5 before enrolling in Advanced %s", subject, subject)
		return appErrors.Clone(appErrors.ErrForbidden, msg)
	}
	return nil
}
