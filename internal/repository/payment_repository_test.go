package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

func newPaymentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPaymentRepositoryAttach(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	payment := &models.Payment{
		PaymentDate: models.NewDate(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)),
		TotalFees:   350,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments (id, payment_date, total_fees) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), payment.PaymentDate, 350.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET payment_id = $1 WHERE id = $2 AND payment_id IS NULL")).
		WithArgs(sqlmock.AnyArg(), "enr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Attach(context.Background(), "enr-1", payment)
	require.NoError(t, err)
	require.NotEmpty(t, payment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryAttachAlreadyPaid(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments (id, payment_date, total_fees) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 350.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET payment_id = $1 WHERE id = $2 AND payment_id IS NULL")).
		WithArgs(sqlmock.AnyArg(), "enr-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE id = $1")).
		WithArgs("enr-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Attach(context.Background(), "enr-1", &models.Payment{TotalFees: 350})
	require.ErrorIs(t, err, ErrAlreadyPaid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryAttachMissingEnrollment(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments (id, payment_date, total_fees) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 350.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET payment_id = $1 WHERE id = $2 AND payment_id IS NULL")).
		WithArgs(sqlmock.AnyArg(), "enr-404").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE id = $1")).
		WithArgs("enr-404").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	err := repo.Attach(context.Background(), "enr-404", &models.Payment{TotalFees: 350})
	require.ErrorIs(t, err, ErrEnrollmentMissing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryStudentPackageGroups(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	first := "enr-1"
	rows := sqlmock.NewRows([]string{
		"package_id", "package_name", "package_fee", "enrollment_count",
		"unpaid_count", "paid_count", "enrollment_ids", "paid_enrollment_ids",
		"first_unpaid_enrollment_id", "first_paid_enrollment_id",
	}).AddRow("pkg-1", "Form 4 Science", 350.0, 2, 1, 1, "enr-1, enr-2", "enr-2", first, "enr-2")
	mock.ExpectQuery("SELECT p.id AS package_id").
		WithArgs("stu-1").
		WillReturnRows(rows)

	groups, err := repo.StudentPackageGroups(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, 1, groups[0].UnpaidCount)
	require.NotNil(t, groups[0].FirstUnpaidEnrollment)
	require.Equal(t, "enr-1", *groups[0].FirstUnpaidEnrollment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryStudentOutstanding(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"outstanding_fees"}).AddRow(700.0))

	balance, err := repo.StudentOutstanding(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Equal(t, 700.0, balance.OutstandingFees)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryReceipt(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{
		"student_name", "student_ic", "enroll_id", "enroll_date",
		"package_name", "package_fee", "payment_id", "payment_date", "total_fees",
	}).AddRow("Aina", "050101-10-1234", "enr-1", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		"Form 4 Science", 350.0, "pay-1", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), 350.0)
	mock.ExpectQuery("SELECT s.name AS student_name").
		WithArgs("enr-1").
		WillReturnRows(rows)

	receipt, err := repo.Receipt(context.Background(), "enr-1")
	require.NoError(t, err)
	require.Equal(t, "pay-1", receipt.PaymentID)
	require.Equal(t, "2026-01-05", receipt.EnrollDate.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
