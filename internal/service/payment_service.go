package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	"github.com/altius-edu/tuition-admin-api/internal/repository"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
	"github.com/altius-edu/tuition-admin-api/pkg/export"
)

type paymentRepository interface {
	Attach(ctx context.Context, enrollmentID string, payment *models.Payment) error
	StudentPackageGroups(ctx context.Context, studentID string) ([]models.StudentPackageGroup, error)
	StudentSummary(ctx context.Context, studentID string) (*models.PaymentSummary, error)
	StudentOutstanding(ctx context.Context, studentID string) (*models.OutstandingBalance, error)
	Receipt(ctx context.Context, enrollmentID string) (*models.Receipt, error)
}

type paymentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type receiptRenderer interface {
	Render(title string, fields []export.ReceiptField) ([]byte, error)
}

// CreatePaymentRequest records a payment against one enrollment.
type CreatePaymentRequest struct {
	EnrollmentID string      `json:"enrollment_id" validate:"required"`
	PaymentDate  models.Date `json:"payment_date"`
	TotalFees    float64     `json:"total_fees" validate:"required,gt=0"`
}

// PaymentService records payments and answers balance queries.
type PaymentService struct {
	repo      paymentRepository
	students  paymentStudentRepository
	receipts  receiptRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(repo paymentRepository, students paymentStudentRepository, receipts receiptRenderer, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if receipts == nil {
		receipts = export.NewReceiptPDF("")
	}
	return &PaymentService{repo: repo, students: students, receipts: receipts, validator: validate, logger: logger}
}

// Create records a payment and attaches it to an unpaid enrollment. The
// attach is atomic: an enrollment that is missing or already paid leaves no
// payment row behind.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	payment := &models.Payment{
		PaymentDate: req.PaymentDate,
		TotalFees:   req.TotalFees,
	}

	if err := s.repo.Attach(ctx, req.EnrollmentID, payment); err != nil {
		if errors.Is(err, repository.ErrEnrollmentMissing) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		if errors.Is(err, repository.ErrAlreadyPaid) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment already has a payment attached")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	return payment, nil
}

// StudentGroups summarises a student's enrollments grouped by package.
func (s *PaymentService) StudentGroups(ctx context.Context, studentID string) ([]models.StudentPackageGroup, error) {
	if err := s.checkStudent(ctx, studentID); err != nil {
		return nil, err
	}
	groups, err := s.repo.StudentPackageGroups(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment groups")
	}
	return groups, nil
}

// Summary totals all payments made by a student.
func (s *PaymentService) Summary(ctx context.Context, studentID string) (*models.PaymentSummary, error) {
	if err := s.checkStudent(ctx, studentID); err != nil {
		return nil, err
	}
	summary, err := s.repo.StudentSummary(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.PaymentSummary{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment summary")
	}
	return summary, nil
}

// Outstanding sums the unpaid package fees of a student.
func (s *PaymentService) Outstanding(ctx context.Context, studentID string) (*models.OutstandingBalance, error) {
	if err := s.checkStudent(ctx, studentID); err != nil {
		return nil, err
	}
	balance, err := s.repo.StudentOutstanding(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outstanding balance")
	}
	return balance, nil
}

// Receipt returns the payment context of one paid enrollment.
func (s *PaymentService) Receipt(ctx context.Context, enrollmentID string) (*models.Receipt, error) {
	receipt, err := s.repo.Receipt(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no payment found for this enrollment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receipt")
	}
	return receipt, nil
}

// ReceiptPDF renders the receipt of one paid enrollment as PDF bytes.
func (s *PaymentService) ReceiptPDF(ctx context.Context, enrollmentID string) ([]byte, error) {
	receipt, err := s.Receipt(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	fields := []export.ReceiptField{
		{Label: "Receipt No", Value: receipt.PaymentID},
		{Label: "Student", Value: receipt.StudentName},
		{Label: "IC", Value: receipt.StudentIC},
		{Label: "Enrollment", Value: receipt.EnrollID},
		{Label: "Enrolled On", Value: receipt.EnrollDate.String()},
		{Label: "Package", Value: receipt.PackageName},
		{Label: "Package Fee", Value: fmt.Sprintf("RM %.2f", receipt.PackageFee)},
		{Label: "Amount Paid", Value: fmt.Sprintf("RM %.2f", receipt.TotalFees)},
		{Label: "Payment Date", Value: receipt.PaymentDate.String()},
	}

	data, err := s.receipts.Render("Official Payment Receipt", fields)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return data, nil
}

func (s *PaymentService) checkStudent(ctx context.Context, studentID string) error {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return nil
}
