package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/altius-edu/tuition-admin-api/internal/models"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records   map[string]models.AttendanceRecord
	roster    []models.ClassRosterEntry
	bulkErr   error
	createErr error
	bulked    []models.Attendance
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	var list []models.AttendanceRecord
	for _, r := range m.records {
		if filter.ClassID != "" && r.ClassID != filter.ClassID {
			continue
		}
		list = append(list, r)
	}
	return list, nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.AttendanceRecord, error) {
	if r, ok := m.records[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) Create(ctx context.Context, attendance *models.Attendance) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.records == nil {
		m.records = make(map[string]models.AttendanceRecord)
	}
	if attendance.ID == "" {
		attendance.ID = "new-att"
	}
	m.records[attendance.ID] = models.AttendanceRecord{Attendance: *attendance}
	return nil
}

func (m *mockAttendanceRepo) BulkCreate(ctx context.Context, records []models.Attendance) error {
	if m.bulkErr != nil {
		return m.bulkErr
	}
	m.bulked = records
	return nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, id string, date models.Date, status models.AttendanceStatus) error {
	r, ok := m.records[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Date = date
	r.Status = status
	m.records[id] = r
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceRepo) ClassRoster(ctx context.Context, classID string) ([]models.ClassRosterEntry, error) {
	return m.roster, nil
}

type mockClassExists struct {
	ids map[string]bool
}

func (m *mockClassExists) Exists(ctx context.Context, id string) (bool, error) {
	return m.ids[id], nil
}

func attendanceDate() models.Date {
	return models.NewDate(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
}

func TestAttendanceServiceCreate(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockClassExists{ids: map[string]bool{"c1": true}}, validator.New(), zap.NewNop())

	record, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentID: "s1",
		ClassID:   "c1",
		Date:      attendanceDate(),
		Status:    models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
}

func TestAttendanceServiceCreateBadStatus(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockClassExists{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentID: "s1",
		ClassID:   "c1",
		Date:      attendanceDate(),
		Status:    "Sleeping",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErr.Status)
	assert.Equal(t, "status must be Present, Absent, Late or Excused", appErr.Message)
}

func TestAttendanceServiceCreateDuplicate(t *testing.T) {
	repo := &mockAttendanceRepo{createErr: uniqueViolation()}
	svc := NewAttendanceService(repo, &mockClassExists{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAttendanceRequest{
		StudentID: "s1",
		ClassID:   "c1",
		Date:      attendanceDate(),
		Status:    models.AttendanceStatusLate,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
}

func TestAttendanceServiceBulkCreate(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockClassExists{ids: map[string]bool{"c1": true}}, validator.New(), zap.NewNop())

	records, err := svc.BulkCreate(context.Background(), BulkAttendanceRequest{
		ClassID: "c1",
		Date:    attendanceDate(),
		Marks: []BulkAttendanceRecord{
			{StudentID: "s1", Status: models.AttendanceStatusPresent},
			{StudentID: "s2", Status: models.AttendanceStatusAbsent},
		},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c1", repo.bulked[0].ClassID)
	assert.Equal(t, "c1", repo.bulked[1].ClassID)
}

func TestAttendanceServiceBulkCreateMissingClass(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockClassExists{}, validator.New(), zap.NewNop())

	_, err := svc.BulkCreate(context.Background(), BulkAttendanceRequest{
		ClassID: "ghost",
		Date:    attendanceDate(),
		Marks:   []BulkAttendanceRecord{{StudentID: "s1", Status: models.AttendanceStatusPresent}},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErr.Status)
	assert.Equal(t, "class not found", appErr.Message)
}

func TestAttendanceServiceBulkCreateEmptyMarks(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockClassExists{ids: map[string]bool{"c1": true}}, validator.New(), zap.NewNop())

	_, err := svc.BulkCreate(context.Background(), BulkAttendanceRequest{ClassID: "c1", Date: attendanceDate()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestAttendanceServiceUpdate(t *testing.T) {
	repo := &mockAttendanceRepo{records: map[string]models.AttendanceRecord{
		"a1": {Attendance: models.Attendance{ID: "a1", StudentID: "s1", ClassID: "c1", Date: attendanceDate(), Status: models.AttendanceStatusAbsent}},
	}}
	svc := NewAttendanceService(repo, &mockClassExists{}, validator.New(), zap.NewNop())

	record, err := svc.Update(context.Background(), "a1", UpdateAttendanceRequest{Date: attendanceDate(), Status: models.AttendanceStatusExcused})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusExcused, record.Status)
}

func TestAttendanceServiceRosterMissingClass(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &mockClassExists{}, validator.New(), zap.NewNop())

	_, err := svc.Roster(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}
