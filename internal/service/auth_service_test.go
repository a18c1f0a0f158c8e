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
	"golang.org/x/crypto/bcrypt"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

type mockAuthStaffRepo struct {
	staff map[string]*models.Staff
}

func (m *mockAuthStaffRepo) FindByUsername(ctx context.Context, username string) (*models.Staff, error) {
	for _, s := range m.staff {
		if s.Username == username {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthStaffRepo) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	if s, ok := m.staff[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthService(t *testing.T) (*AuthService, *mockAuthStaffRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthStaffRepo{staff: map[string]*models.Staff{
		"st1": {ID: "st1", Name: "Admin", Email: "admin@center.test", Username: "admin", PasswordHash: string(hash)},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "tuition-admin-api",
	})
	return svc, repo
}

func TestAuthServiceLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "st1", resp.Staff.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "st1", claims.StaffID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "tuition-admin-api", claims.Issuer)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Status, appErrors.FromError(err).Status)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "s3cret"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Status, appErr.Status)
	assert.Equal(t, "invalid username or password", appErr.Message)
}

func TestAuthServiceLoginMissingFields(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestAuthServiceValidateTokenTampered(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErrors.FromError(err).Status)
}
