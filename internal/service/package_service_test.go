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

type mockPackageRepo struct {
	packages  map[string]models.Package
	deleteErr error
}

func (m *mockPackageRepo) List(ctx context.Context) ([]models.Package, error) {
	var list []models.Package
	for _, p := range m.packages {
		list = append(list, p)
	}
	return list, nil
}

func (m *mockPackageRepo) FindByID(ctx context.Context, id string) (*models.Package, error) {
	if p, ok := m.packages[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPackageRepo) Create(ctx context.Context, pkg *models.Package) error {
	if m.packages == nil {
		m.packages = make(map[string]models.Package)
	}
	if pkg.ID == "" {
		pkg.ID = "new-package"
	}
	m.packages[pkg.ID] = *pkg
	return nil
}

func (m *mockPackageRepo) Update(ctx context.Context, pkg *models.Package) error {
	if _, ok := m.packages[pkg.ID]; !ok {
		return sql.ErrNoRows
	}
	m.packages[pkg.ID] = *pkg
	return nil
}

func (m *mockPackageRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.packages[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.packages, id)
	return nil
}

func TestPackageServiceCreate(t *testing.T) {
	repo := &mockPackageRepo{}
	svc := NewPackageService(repo, validator.New(), zap.NewNop())

	pkg, err := svc.Create(context.Background(), CreatePackageRequest{Name: "Advanced Biology", Fee: 500, Duration: "6 months"})
	require.NoError(t, err)
	assert.True(t, pkg.IsAdvanced())
	assert.Equal(t, "Biology", pkg.AdvancedSubject())
}

func TestPackageServiceCreateZeroFee(t *testing.T) {
	svc := NewPackageService(&mockPackageRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreatePackageRequest{Name: "Form 4 Science", Fee: 0, Duration: "6 months"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestPackageServiceDeleteInUse(t *testing.T) {
	repo := &mockPackageRepo{deleteErr: foreignKeyViolation()}
	svc := NewPackageService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestPackageServiceGetMissing(t *testing.T) {
	svc := NewPackageService(&mockPackageRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}
