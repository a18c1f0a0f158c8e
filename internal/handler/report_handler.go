package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	"github.com/altius-edu/tuition-admin-api/internal/service"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
	"github.com/altius-edu/tuition-admin-api/pkg/response"
)

// ReportHandler handles the monthly report endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Attendance godoc
// @Summary Monthly attendance report
// @Tags Reports
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Param threshold query number false "Attendance percentage threshold"
// @Param direction query string false "below or atOrAbove"
// @Success 200 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	query := service.AttendanceReportQuery{
		Month:     c.Query("month"),
		Direction: models.AttendanceDirection(c.Query("direction")),
	}
	if raw := c.Query("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "threshold must be a number"))
			return
		}
		query.Threshold = &threshold
	}

	rows, err := h.service.Attendance(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Financial godoc
// @Summary Monthly financial report
// @Tags Reports
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Param outstanding_only query bool false "Only enrollments still owing"
// @Success 200 {object} response.Envelope
// @Router /reports/financial [get]
func (h *ReportHandler) Financial(c *gin.Context) {
	query := service.FinancialReportQuery{
		Month:           c.Query("month"),
		OutstandingOnly: c.Query("outstanding_only") == "true",
	}

	report, err := h.service.Financial(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// FinancialCSV godoc
// @Summary Monthly financial report as CSV
// @Tags Reports
// @Produce text/csv
// @Param month query string true "Month (YYYY-MM)"
// @Param outstanding_only query bool false "Only enrollments still owing"
// @Success 200 {file} binary
// @Router /reports/financial.csv [get]
func (h *ReportHandler) FinancialCSV(c *gin.Context) {
	query := service.FinancialReportQuery{
		Month:           c.Query("month"),
		OutstandingOnly: c.Query("outstanding_only") == "true",
	}

	data, err := h.service.FinancialCSV(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("financial-report-%s.csv", query.Month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}
