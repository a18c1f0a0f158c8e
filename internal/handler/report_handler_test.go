package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	"github.com/altius-edu/tuition-admin-api/internal/service"
)

type fakeReportRepo struct {
	lastThreshold float64
	lastDirection models.AttendanceDirection
}

func (f *fakeReportRepo) AttendanceReport(ctx context.Context, month string, threshold float64, direction models.AttendanceDirection) ([]models.AttendanceReportRow, error) {
	f.lastThreshold = threshold
	f.lastDirection = direction
	return []models.AttendanceReportRow{{StudentName: "Aina", ClassName: "Biology F4", AttendancePercentage: 60}}, nil
}

func (f *fakeReportRepo) FinancialRows(ctx context.Context, month string, outstandingOnly bool) ([]models.FinancialReportRow, error) {
	return []models.FinancialReportRow{{StudentName: "Aina", PackageName: "Form 4 Science", TotalFee: 350, AmountPaid: 100, Outstanding: 250}}, nil
}

func (f *fakeReportRepo) FinancialSummary(ctx context.Context, month string, outstandingOnly bool) (*models.FinancialSummary, error) {
	return &models.FinancialSummary{TotalRevenue: 350, TotalCollected: 100, OutstandingFees: 250, TotalEnrollment: 1}, nil
}

func newReportHandler(repo *fakeReportRepo) *ReportHandler {
	return NewReportHandler(service.NewReportService(repo, nil, service.ReportConfig{}, nil))
}

func TestReportHandlerAttendance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeReportRepo{}
	handler := newReportHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/attendance?month=2026-03&threshold=80", nil)

	handler.Attendance(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 80.0, repo.lastThreshold)
	assert.Equal(t, models.AttendanceBelow, repo.lastDirection)
}

func TestReportHandlerAttendanceBadThreshold(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportHandler(&fakeReportRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/attendance?month=2026-03&threshold=lots", nil)

	handler.Attendance(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandlerAttendanceMissingMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportHandler(&fakeReportRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/attendance", nil)

	handler.Attendance(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandlerFinancialCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newReportHandler(&fakeReportRepo{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/financial.csv?month=2026-03", nil)

	handler.FinancialCSV(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "financial-report-2026-03.csv")
	assert.Contains(t, rec.Body.String(), "Aina,Form 4 Science,350.00,100.00,250.00")
}
