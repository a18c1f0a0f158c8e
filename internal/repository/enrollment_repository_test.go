package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "package_id", "enroll_date", "status", "payment_id"}).
		AddRow("enr-1", "stu-1", "pkg-1", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), models.EnrollmentStatusActive, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, package_id, enroll_date, status, payment_id FROM enrollments WHERE id = $1")).
		WithArgs("enr-1").
		WillReturnRows(rows)

	enrollment, err := repo.FindByID(context.Background(), "enr-1")
	require.NoError(t, err)
	require.Equal(t, "stu-1", enrollment.StudentID)
	require.Nil(t, enrollment.PaymentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExists(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE student_id = $1 AND package_id = $2 LIMIT 1")).
		WithArgs("stu-1", "pkg-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "stu-1", "pkg-1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryExistsNoRow(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE student_id = $1 AND package_id = $2 LIMIT 1")).
		WithArgs("stu-1", "pkg-9").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.Exists(context.Background(), "stu-1", "pkg-9")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountSubjectEnrollments(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT s.name\\) FROM enrollments e").
		WithArgs("stu-1", "Biology F4", "Biology F5").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountSubjectEnrollments(context.Background(), "stu-1", []string{"Biology F4", "Biology F5"})
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountSubjectEnrollmentsEmpty(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	count, err := repo.CountSubjectEnrollments(context.Background(), "stu-1", nil)
	require.NoError(t, err)
	require.Equal(t, 0, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	enrollment := &models.Enrollment{StudentID: "stu-1", PackageID: "pkg-1"}
	err := repo.Create(context.Background(), enrollment)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.ID)
	require.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET package_id = $2, status = $3 WHERE id = $1")).
		WithArgs("enr-404", "pkg-1", models.EnrollmentStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "enr-404", "pkg-1", models.EnrollmentStatusActive)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
