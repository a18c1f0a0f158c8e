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

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error)
	Create(ctx context.Context, attendance *models.Attendance) error
	BulkCreate(ctx context.Context, records []models.Attendance) error
	Update(ctx context.Context, id string, date models.Date, status models.AttendanceStatus) error
	Delete(ctx context.Context, id string) error
	ClassRoster(ctx context.Context, classID string) ([]models.ClassRosterEntry, error)
}

type attendanceClassRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CreateAttendanceRequest marks one student in one class on one date.
type CreateAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required"`
	ClassID   string                  `json:"class_id" validate:"required"`
	Date      models.Date             `json:"date"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
}

// BulkAttendanceRequest marks a whole class sitting in one call.
type BulkAttendanceRequest struct {
	ClassID string                 `json:"class_id" validate:"required"`
	Date    models.Date            `json:"date"`
	Marks   []BulkAttendanceRecord `json:"marks" validate:"required,min=1,dive"`
}

// BulkAttendanceRecord is one student's mark inside a bulk request.
type BulkAttendanceRecord struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
}

// UpdateAttendanceRequest corrects the date or status of a record.
type UpdateAttendanceRequest struct {
	Date   models.Date             `json:"date"`
	Status models.AttendanceStatus `json:"status" validate:"required"`
}

// AttendanceService handles attendance marking workflows.
type AttendanceService struct {
	repo      attendanceRepository
	classes   attendanceClassRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService creates a new attendance service.
func NewAttendanceService(repo attendanceRepository, classes attendanceClassRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// List returns attendance records, optionally filtered by class and date.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// Get returns one attendance record.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	return record, nil
}

// Create marks one student.
func (s *AttendanceService) Create(ctx context.Context, req CreateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Present, Absent, Late or Excused")
	}

	attendance := &models.Attendance{
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		Date:      req.Date,
		Status:    req.Status,
	}

	if err := s.repo.Create(ctx, attendance); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student or class not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already marked for this student, class and date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance record")
	}
	return attendance, nil
}

// BulkCreate marks every student in one class sitting atomically.
func (s *AttendanceService) BulkCreate(ctx context.Context, req BulkAttendanceRequest) ([]models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	exists, err := s.classes.Exists(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	records := make([]models.Attendance, 0, len(req.Marks))
	for _, mark := range req.Marks {
		if !mark.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Present, Absent, Late or Excused")
		}
		records = append(records, models.Attendance{
			StudentID: mark.StudentID,
			ClassID:   req.ClassID,
			Date:      req.Date,
			Status:    mark.Status,
		})
	}

	if err := s.repo.BulkCreate(ctx, records); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student or class not found")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already marked for this class and date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance records")
	}
	return records, nil
}

// Update corrects the date or status of a record.
func (s *AttendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Present, Absent, Late or Excused")
	}

	if err := s.repo.Update(ctx, id, req.Date, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance record")
	}
	return s.Get(ctx, id)
}

// Delete removes one attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance record")
	}
	return nil
}

// Roster lists the students markable for one class.
func (s *AttendanceService) Roster(ctx context.Context, classID string) ([]models.ClassRosterEntry, error) {
	exists, err := s.classes.Exists(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	roster, err := s.repo.ClassRoster(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	return roster, nil
}
