package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

type mockReportRepo struct {
	lastMonth       string
	lastThreshold   float64
	lastDirection   models.AttendanceDirection
	lastOnly        bool
	lastSummaryOnly bool
	rows            []models.AttendanceReportRow
	finRows         []models.FinancialReportRow
	finSummary      *models.FinancialSummary
}

func (m *mockReportRepo) AttendanceReport(ctx context.Context, month string, threshold float64, direction models.AttendanceDirection) ([]models.AttendanceReportRow, error) {
	m.lastMonth = month
	m.lastThreshold = threshold
	m.lastDirection = direction
	return m.rows, nil
}

func (m *mockReportRepo) FinancialRows(ctx context.Context, month string, outstandingOnly bool) ([]models.FinancialReportRow, error) {
	m.lastMonth = month
	m.lastOnly = outstandingOnly
	return m.finRows, nil
}

func (m *mockReportRepo) FinancialSummary(ctx context.Context, month string, outstandingOnly bool) (*models.FinancialSummary, error) {
	m.lastSummaryOnly = outstandingOnly
	if m.finSummary == nil {
		return &models.FinancialSummary{}, nil
	}
	return m.finSummary, nil
}

func TestReportServiceAttendanceDefaults(t *testing.T) {
	repo := &mockReportRepo{rows: []models.AttendanceReportRow{{StudentName: "Aina", ClassName: "Biology F4", AttendancePercentage: 60}}}
	svc := NewReportService(repo, nil, ReportConfig{}, zap.NewNop())

	rows, err := svc.Attendance(context.Background(), AttendanceReportQuery{Month: "2026-03"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 75.0, repo.lastThreshold)
	assert.Equal(t, models.AttendanceBelow, repo.lastDirection)
}

func TestReportServiceAttendanceCustomThreshold(t *testing.T) {
	repo := &mockReportRepo{}
	svc := NewReportService(repo, nil, ReportConfig{}, zap.NewNop())

	threshold := 90.0
	_, err := svc.Attendance(context.Background(), AttendanceReportQuery{
		Month:     "2026-03",
		Threshold: &threshold,
		Direction: models.AttendanceAtOrAbove,
	})
	require.NoError(t, err)
	assert.Equal(t, 90.0, repo.lastThreshold)
	assert.Equal(t, models.AttendanceAtOrAbove, repo.lastDirection)
}

func TestReportServiceAttendanceBadMonth(t *testing.T) {
	svc := NewReportService(&mockReportRepo{}, nil, ReportConfig{}, zap.NewNop())

	for _, month := range []string{"", "2026", "03-2026", "2026-13"} {
		_, err := svc.Attendance(context.Background(), AttendanceReportQuery{Month: month})
		require.Error(t, err, "month %q", month)
		assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	}
}

func TestReportServiceAttendanceBadDirection(t *testing.T) {
	svc := NewReportService(&mockReportRepo{}, nil, ReportConfig{}, zap.NewNop())

	_, err := svc.Attendance(context.Background(), AttendanceReportQuery{Month: "2026-03", Direction: "sideways"})
	require.Error(t, err)
	assert.Equal(t, "direction must be below or atOrAbove", appErrors.FromError(err).Message)
}

func TestReportServiceAttendanceThresholdRange(t *testing.T) {
	svc := NewReportService(&mockReportRepo{}, nil, ReportConfig{}, zap.NewNop())

	threshold := 120.0
	_, err := svc.Attendance(context.Background(), AttendanceReportQuery{Month: "2026-03", Threshold: &threshold})
	require.Error(t, err)
	assert.Equal(t, "threshold must be between 0 and 100", appErrors.FromError(err).Message)
}

func TestReportServiceFinancial(t *testing.T) {
	repo := &mockReportRepo{
		finRows:    []models.FinancialReportRow{{StudentName: "Aina", PackageName: "Form 4 Science", TotalFee: 350, AmountPaid: 350}},
		finSummary: &models.FinancialSummary{TotalRevenue: 350, TotalCollected: 350, TotalEnrollment: 1},
	}
	svc := NewReportService(repo, nil, ReportConfig{}, zap.NewNop())

	report, err := svc.Financial(context.Background(), FinancialReportQuery{Month: "2026-03", OutstandingOnly: true})
	require.NoError(t, err)
	assert.True(t, repo.lastOnly)
	assert.Equal(t, 350.0, report.Summary.TotalRevenue)
	require.Len(t, report.Payments, 1)
}

func TestReportServiceFinancialSummaryMatchesRowFilter(t *testing.T) {
	repo := &mockReportRepo{}
	svc := NewReportService(repo, nil, ReportConfig{}, zap.NewNop())

	_, err := svc.Financial(context.Background(), FinancialReportQuery{Month: "2026-03", OutstandingOnly: true})
	require.NoError(t, err)
	assert.True(t, repo.lastSummaryOnly)

	_, err = svc.Financial(context.Background(), FinancialReportQuery{Month: "2026-03"})
	require.NoError(t, err)
	assert.False(t, repo.lastSummaryOnly)
}

func TestReportServiceFinancialCSV(t *testing.T) {
	repo := &mockReportRepo{
		finRows: []models.FinancialReportRow{{StudentName: "Aina", PackageName: "Form 4 Science", TotalFee: 350, AmountPaid: 100, Outstanding: 250}},
	}
	svc := NewReportService(repo, nil, ReportConfig{}, zap.NewNop())

	data, err := svc.FinancialCSV(context.Background(), FinancialReportQuery{Month: "2026-03"})
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "Student,Package,Total Fee,Amount Paid,Outstanding"))
	assert.Contains(t, out, "Aina,Form 4 Science,350.00,100.00,250.00")
}
