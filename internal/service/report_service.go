package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
	"github.com/altius-edu/tuition-admin-api/pkg/export"
)

type reportRepository interface {
	AttendanceReport(ctx context.Context, month string, threshold float64, direction models.AttendanceDirection) ([]models.AttendanceReportRow, error)
	FinancialRows(ctx context.Context, month string, outstandingOnly bool) ([]models.FinancialReportRow, error)
	FinancialSummary(ctx context.Context, month string, outstandingOnly bool) (*models.FinancialSummary, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ReportConfig tunes report defaults.
type ReportConfig struct {
	LowAttendanceThreshold float64
}

// AttendanceReportQuery carries filters for the attendance report.
type AttendanceReportQuery struct {
	Month     string
	Threshold *float64
	Direction models.AttendanceDirection
}

// FinancialReportQuery carries filters for the financial report.
type FinancialReportQuery struct {
	Month           string
	OutstandingOnly bool
}

// ReportService produces the monthly attendance and financial reports.
type ReportService struct {
	repo   reportRepository
	csv    csvRenderer
	logger *zap.Logger
	config ReportConfig
}

// NewReportService creates a new report service.
func NewReportService(repo reportRepository, csv csvRenderer, config ReportConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if config.LowAttendanceThreshold <= 0 {
		config.LowAttendanceThreshold = 75
	}
	return &ReportService{repo: repo, csv: csv, logger: logger, config: config}
}

// Attendance builds the attendance report for one month. Rows below the
// threshold are returned by default; direction atOrAbove flips the filter.
func (s *ReportService) Attendance(ctx context.Context, query AttendanceReportQuery) ([]models.AttendanceReportRow, error) {
	if err := validateMonth(query.Month); err != nil {
		return nil, err
	}

	direction := query.Direction
	if direction == "" {
		direction = models.AttendanceBelow
	}
	if direction != models.AttendanceBelow && direction != models.AttendanceAtOrAbove {
		return nil, appErrors.Clone(appErrors.ErrValidation, "direction must be below or atOrAbove")
	}

	threshold := s.config.LowAttendanceThreshold
	if query.Threshold != nil {
		threshold = *query.Threshold
	}
	if threshold < 0 || threshold > 100 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "threshold must be between 0 and 100")
	}

	rows, err := s.repo.AttendanceReport(ctx, query.Month, threshold, direction)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build attendance report")
	}
	return rows, nil
}

// Financial builds the financial report for one month.
func (s *ReportService) Financial(ctx context.Context, query FinancialReportQuery) (*models.FinancialReport, error) {
	if err := validateMonth(query.Month); err != nil {
		return nil, err
	}

	rows, err := s.repo.FinancialRows(ctx, query.Month, query.OutstandingOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build financial report")
	}

	summary, err := s.repo.FinancialSummary(ctx, query.Month, query.OutstandingOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build financial summary")
	}

	return &models.FinancialReport{Summary: *summary, Payments: rows}, nil
}

// FinancialCSV renders the financial report detail rows as CSV bytes.
func (s *ReportService) FinancialCSV(ctx context.Context, query FinancialReportQuery) ([]byte, error) {
	report, err := s.Financial(ctx, query)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Package", "Total Fee", "Amount Paid", "Outstanding"},
	}
	for _, row := range report.Payments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":     row.StudentName,
			"Package":     row.PackageName,
			"Total Fee":   fmt.Sprintf("%.2f", row.TotalFee),
			"Amount Paid": fmt.Sprintf("%.2f", row.AmountPaid),
			"Outstanding": fmt.Sprintf("%.2f", row.Outstanding),
		})
	}

	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render financial report")
	}
	return data, nil
}

func validateMonth(month string) error {
	if month == "" {
		return appErrors.Clone(appErrors.ErrValidation, "month is required")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "month must use the YYYY-MM format")
	}
	return nil
}
