package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/altius-edu/tuition-admin-api/internal/models"
)

func newClassRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassRepositoryCreateWithPrerequisites(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO classes").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_prerequisites (id, class_id, prerequisite_class_id) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "class-f4").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_prerequisites (id, class_id, prerequisite_class_id) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "class-f5").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	class := &models.Class{Name: "Advanced Biology", Day: "Saturday", Time: "10:00", SubjectID: "sub-1", TeacherID: "tch-1"}
	err := repo.Create(context.Background(), class, []string{"class-f4", "class-f5"})
	require.NoError(t, err)
	require.NotEmpty(t, class.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdateReplacesPrerequisites(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE classes SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_prerequisites WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_prerequisites (id, class_id, prerequisite_class_id) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), "class-1", "class-f4").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	class := &models.Class{ID: "class-1", Name: "Advanced Biology", Day: "Saturday", Time: "10:00", SubjectID: "sub-1", TeacherID: "tch-1"}
	err := repo.Update(context.Background(), class, []string{"class-f4"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE classes SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	class := &models.Class{ID: "class-404", Name: "Ghost", Day: "Monday", Time: "09:00", SubjectID: "sub-1", TeacherID: "tch-1"}
	err := repo.Update(context.Background(), class, nil)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryDeleteRemovesOutgoingEdges(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_prerequisites WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM classes WHERE id = $1")).
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "class-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryAddPrerequisite(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_prerequisites (id, class_id, prerequisite_class_id) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), "class-adv", "class-f4").
		WillReturnResult(sqlmock.NewResult(0, 1))

	edge, err := repo.AddPrerequisite(context.Background(), "class-adv", "class-f4")
	require.NoError(t, err)
	require.NotEmpty(t, edge.ID)
	require.Equal(t, "class-adv", edge.ClassID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryDeletePrerequisiteMissing(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_prerequisites WHERE id = $1")).
		WithArgs("edge-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeletePrerequisite(context.Background(), "edge-404")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryListPrerequisites(t *testing.T) {
	db, mock, cleanup := newClassRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"edge_id", "class_id", "class_name"}).
		AddRow("edge-1", "class-f4", "Biology F4").
		AddRow("edge-2", "class-f5", "Biology F5")
	mock.ExpectQuery("SELECT cp.id AS edge_id").
		WithArgs("class-adv").
		WillReturnRows(rows)

	prereqs, err := repo.ListPrerequisites(context.Background(), "class-adv")
	require.NoError(t, err)
	require.Len(t, prereqs, 2)
	require.Equal(t, "Biology F4", prereqs[0].ClassName)
	require.NoError(t, mock.ExpectationsWereMet())
}
