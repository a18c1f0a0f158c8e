package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	"github.com/altius-edu/tuition-admin-api/internal/service"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

type fakeDashboardRepo struct {
	calls int
}

func (f *fakeDashboardRepo) StudentBreakdown(ctx context.Context) (*models.StudentBreakdown, error) {
	f.calls++
	return &models.StudentBreakdown{Total: 120, Primary: 40, Secondary: 80}, nil
}

func (f *fakeDashboardRepo) ClassCount(ctx context.Context) (int, error) { return 14, nil }

func (f *fakeDashboardRepo) AverageAttendance(ctx context.Context) (float64, error) {
	return 86.5, nil
}

func (f *fakeDashboardRepo) LowAttendanceCount(ctx context.Context, threshold float64) (int, error) {
	return 7, nil
}

func (f *fakeDashboardRepo) FinancialSnapshot(ctx context.Context) (*models.FinancialSnapshot, error) {
	return &models.FinancialSnapshot{TotalEnrollments: 200, UnpaidEnrollments: 30, PaymentCompletionRate: 85}, nil
}

type memoryCacheStore struct {
	entries map[string][]byte
}

func (m *memoryCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.entries {
		delete(m.entries, key)
	}
	return nil
}

func TestDashboardHandlerStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache := service.NewCacheService(&memoryCacheStore{}, nil, time.Minute, nil, true)
	svc := service.NewDashboardService(&fakeDashboardRepo{}, cache, service.DashboardServiceConfig{}, nil)
	handler := NewDashboardHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope.Meta["cache_hit"])
	students := envelope.Data["students"].(map[string]interface{})
	assert.Equal(t, float64(120), students["total"])

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
