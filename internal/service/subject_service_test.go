package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects  map[string]models.Subject
	deleteErr error
	created   *models.Subject
}

func (m *mockSubjectRepo) List(ctx context.Context) ([]models.SubjectDetail, error) {
	var list []models.SubjectDetail
	for _, s := range m.subjects {
		list = append(list, models.SubjectDetail{Subject: s})
	}
	return list, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectRepo) ListByPackage(ctx context.Context, packageID string) ([]models.Subject, error) {
	var list []models.Subject
	for _, s := range m.subjects {
		if s.PackageID == packageID {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	if m.subjects == nil {
		m.subjects = make(map[string]models.Subject)
	}
	if subject.ID == "" {
		subject.ID = "new-subject"
	}
	m.subjects[subject.ID] = *subject
	m.created = subject
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	if _, ok := m.subjects[subject.ID]; !ok {
		return sql.ErrNoRows
	}
	m.subjects[subject.ID] = *subject
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.subjects[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.subjects, id)
	return nil
}

func TestSubjectServiceCreate(t *testing.T) {
	repo := &mockSubjectRepo{}
	packages := &mockPackageReader{packages: map[string]*models.Package{"p1": {ID: "p1", Name: "Form 4 Science"}}}
	svc := NewSubjectService(repo, packages, validator.New(), zap.NewNop())

	subject, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "Biology F4", PackageID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "Biology F4", subject.Name)
	assert.NotNil(t, repo.created)
}

func TestSubjectServiceCreateMissingPackage(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{}, &mockPackageReader{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "Biology F4", PackageID: "ghost"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErr.Status)
	assert.Equal(t, "package not found", appErr.Message)
}

func TestSubjectServiceListByPackageMissing(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{}, &mockPackageReader{}, validator.New(), zap.NewNop())

	_, err := svc.ListByPackage(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestSubjectServiceDeleteInUse(t *testing.T) {
	repo := &mockSubjectRepo{deleteErr: foreignKeyViolation()}
	packages := &mockPackageReader{}
	svc := NewSubjectService(repo, packages, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "sub1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}
