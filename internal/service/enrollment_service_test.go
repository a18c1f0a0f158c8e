package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments  map[string]models.Enrollment
	pairs        map[string]bool
	subjectCount int
	countedNames []string
	created      *models.Enrollment
	deleted      []string
}

func (m *mockEnrollmentRepo) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	var list []models.EnrollmentDetail
	for _, e := range m.enrollments {
		list = append(list, models.EnrollmentDetail{Enrollment: e})
	}
	return list, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, packageID string) (bool, error) {
	return m.pairs[studentID+"/"+packageID], nil
}

func (m *mockEnrollmentRepo) CountSubjectEnrollments(ctx context.Context, studentID string, subjectNames []string) (int, error) {
	m.countedNames = subjectNames
	return m.subjectCount, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "new-enroll"
	}
	m.enrollments[enrollment.ID] = *enrollment
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) Update(ctx context.Context, id, packageID string, status models.EnrollmentStatus) error {
	e, ok := m.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.PackageID = packageID
	e.Status = status
	m.enrollments[id] = e
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.enrollments, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStudentReader struct {
	students map[string]*models.StudentDetail
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockPackageReader struct {
	packages map[string]*models.Package
}

func (m *mockPackageReader) FindByID(ctx context.Context, id string) (*models.Package, error) {
	if p, ok := m.packages[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func enrollmentFixtures() (*mockStudentReader, *mockPackageReader) {
	students := &mockStudentReader{students: map[string]*models.StudentDetail{
		"s1": {Student: models.Student{ID: "s1", Name: "Aina", Type: models.StudentTypeSecondary}},
	}}
	packages := &mockPackageReader{packages: map[string]*models.Package{
		"p1":     {ID: "p1", Name: "Form 4 Science", Fee: 350},
		"p-adv":  {ID: "p-adv", Name: "Advanced Biology", Fee: 500},
		"p-next": {ID: "p-next", Name: "Form 5 Science", Fee: 350},
	}}
	return students, packages
}

func TestEnrollmentServiceCreate(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID: "s1",
		PackageID: "p1",
		Status:    models.EnrollmentStatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", enrollment.StudentID)
	assert.Equal(t, "p1", enrollment.PackageID)
	assert.NotNil(t, repo.created)
	assert.Nil(t, repo.created.PaymentID)
}

func TestEnrollmentServiceCreateDefaultsEnrollDate(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID: "s1",
		PackageID: "p1",
		Status:    models.EnrollmentStatusActive,
	})
	require.NoError(t, err)
	assert.False(t, enrollment.EnrollDate.IsZero())
	assert.Equal(t, models.NewDate(time.Now()).String(), enrollment.EnrollDate.String())
}

func TestEnrollmentServiceCreateKeepsProvidedEnrollDate(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	when, err := models.ParseDate("2026-01-05")
	require.NoError(t, err)
	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID:  "s1",
		PackageID:  "p1",
		Status:     models.EnrollmentStatusActive,
		EnrollDate: &when,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-05", enrollment.EnrollDate.String())
}

func TestEnrollmentServiceCreateDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{pairs: map[string]bool{"s1/p1": true}}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", PackageID: "p1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErr.Status)
	assert.Equal(t, "student is already enrolled in this package", appErr.Message)
}

func TestEnrollmentServiceCreateMissingStudent(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "nope", PackageID: "p1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestEnrollmentServiceCreateMissingPackage(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", PackageID: "nope"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErr.Status)
	assert.Equal(t, "package not found", appErr.Message)
}

func TestEnrollmentServiceCreateAdvancedEligible(t *testing.T) {
	repo := &mockEnrollmentRepo{subjectCount: 2}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", PackageID: "p-adv"})
	require.NoError(t, err)
	assert.Equal(t, "p-adv", enrollment.PackageID)
	assert.Equal(t, []string{"Biology F4", "Biology F5"}, repo.countedNames)
}

func TestEnrollmentServiceCreateAdvancedIneligible(t *testing.T) {
	repo := &mockEnrollmentRepo{subjectCount: 1}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{StudentID: "s1", PackageID: "p-adv"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErr.Status)
	assert.Equal(t, "Student must be enrolled in BOTH Biology Form 4 and Form 5 before enrolling in Advanced Biology", appErr.Message)
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceUpdate(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", PackageID: "p1", Status: models.EnrollmentStatusActive},
	}}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	enrollment, err := svc.Update(context.Background(), "e1", UpdateEnrollmentRequest{PackageID: "p-next", Status: models.EnrollmentStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, "p-next", enrollment.PackageID)
	assert.Equal(t, models.EnrollmentStatusCompleted, enrollment.Status)
}

func TestEnrollmentServiceDeleteMissing(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students, packages := enrollmentFixtures()
	svc := NewEnrollmentService(repo, students, packages, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "e404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}
