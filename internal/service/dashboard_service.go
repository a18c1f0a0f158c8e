package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:stats"

type dashboardRepository interface {
	StudentBreakdown(ctx context.Context) (*models.StudentBreakdown, error)
	ClassCount(ctx context.Context) (int, error)
	AverageAttendance(ctx context.Context) (float64, error)
	LowAttendanceCount(ctx context.Context, threshold float64) (int, error)
	FinancialSnapshot(ctx context.Context) (*models.FinancialSnapshot, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL               time.Duration
	LowAttendanceThreshold float64
}

// DashboardService composes the KPI snapshot for the admin landing page.
type DashboardService struct {
	repo   dashboardRepository
	cache  *CacheService
	logger *zap.Logger
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(repo dashboardRepository, cache *CacheService, cfg DashboardServiceConfig, logger *zap.Logger) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.LowAttendanceThreshold <= 0 {
		cfg.LowAttendanceThreshold = 75
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, cfg: cfg}
}

// Stats returns the KPI snapshot and indicates cache utilisation.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, bool, error) {
	var cached models.DashboardStats
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	students, err := s.repo.StudentBreakdown(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student counts")
	}

	classes, err := s.repo.ClassCount(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class count")
	}

	avgAttendance, err := s.repo.AverageAttendance(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance average")
	}

	lowAttendance, err := s.repo.LowAttendanceCount(ctx, s.cfg.LowAttendanceThreshold)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load low attendance count")
	}

	financial, err := s.repo.FinancialSnapshot(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load financial snapshot")
	}

	stats := &models.DashboardStats{
		Students:              *students,
		Classes:               classes,
		AvgAttendance:         avgAttendance,
		LowAttendanceStudents: lowAttendance,
		Financial:             *financial,
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
	}
	return stats, false, nil
}

// Invalidate drops the cached snapshot. Called after writes that change KPIs.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
