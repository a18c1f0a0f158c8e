package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/tuition-admin-api/internal/service"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
	"github.com/altius-edu/tuition-admin-api/pkg/response"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	service   *service.PaymentService
	dashboard *service.DashboardService
}

// NewPaymentHandler constructs a payment handler.
func NewPaymentHandler(svc *service.PaymentService, dashboard *service.DashboardService) *PaymentHandler {
	return &PaymentHandler{service: svc, dashboard: dashboard}
}

// Create godoc
// @Summary Record a payment against an enrollment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, payment)
}

// StudentGroups godoc
// @Summary Enrollments of a student grouped by package with payment state
// @Tags Payments
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /payments/students/{studentId}/groups [get]
func (h *PaymentHandler) StudentGroups(c *gin.Context) {
	groups, err := h.service.StudentGroups(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Summary godoc
// @Summary Total paid by a student
// @Tags Payments
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /payments/students/{studentId}/summary [get]
func (h *PaymentHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Outstanding godoc
// @Summary Outstanding fees of a student
// @Tags Payments
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /payments/students/{studentId}/outstanding [get]
func (h *PaymentHandler) Outstanding(c *gin.Context) {
	balance, err := h.service.Outstanding(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, balance, nil)
}

// Receipt godoc
// @Summary Receipt data for a paid enrollment
// @Tags Payments
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/enrollments/{enrollmentId}/receipt [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	receipt, err := h.service.Receipt(c.Request.Context(), c.Param("enrollmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, receipt, nil)
}

// ReceiptPDF godoc
// @Summary Receipt for a paid enrollment as PDF
// @Tags Payments
// @Produce application/pdf
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {file} binary
// @Router /payments/enrollments/{enrollmentId}/receipt.pdf [get]
func (h *PaymentHandler) ReceiptPDF(c *gin.Context) {
	enrollmentID := c.Param("enrollmentId")
	data, err := h.service.ReceiptPDF(c.Request.Context(), enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("receipt-%s.pdf", enrollmentID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
