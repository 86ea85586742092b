package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppointment() *Appointment {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	return &Appointment{
		ID:             "appt-1",
		CallID:         "CA1",
		CustomerName:   "John Smith",
		CustomerPhone:  "+15551234567",
		Problem:        "dishwasher broken",
		ScheduledDate:  "2026-08-31",
		ScheduledTime:  "10:00 AM",
		TechnicianID:   "tech-001",
		TechnicianName: "John Doe",
		Status:         StatusScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func appointmentRows(appt *Appointment) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "call_sid", "customer_name", "customer_phone", "problem",
		"scheduled_date", "scheduled_time", "technician_id", "technician_name", "status",
		"created_at", "updated_at",
	}).AddRow(
		appt.ID, appt.CallID, appt.CustomerName, appt.CustomerPhone, appt.Problem,
		appt.ScheduledDate, appt.ScheduledTime, appt.TechnicianID, appt.TechnicianName, appt.Status,
		appt.CreatedAt, appt.UpdatedAt,
	)
}

func TestPostgresRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	appt := testAppointment()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(
			appt.ID, appt.CallID, appt.CustomerName, appt.CustomerPhone, appt.Problem,
			appt.ScheduledDate, appt.ScheduledTime, appt.TechnicianID, appt.TechnicianName,
			appt.Status, appt.CreatedAt, appt.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), appt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	want := testAppointment()

	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE id").
		WithArgs("appt-1").
		WillReturnRows(appointmentRows(want))

	got, err := repo.GetByID(context.Background(), "appt-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.CustomerName, got.CustomerName)
	assert.Equal(t, want.TechnicianName, got.TechnicianName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)

	// An empty result set surfaces as (nil, nil).
	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	want := testAppointment()

	mock.ExpectQuery("SELECT COUNT(.+) FROM appointments").
		WithArgs(StatusScheduled).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs(StatusScheduled, 50, 0).
		WillReturnRows(appointmentRows(want))

	got, total, err := repo.List(context.Background(), ListFilter{Status: StatusScheduled})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, want.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)
	want := testAppointment()
	want.Status = StatusCompleted

	mock.ExpectQuery("UPDATE appointments SET status").
		WithArgs(StatusCompleted, "appt-1").
		WillReturnRows(appointmentRows(want))

	got, err := repo.UpdateStatus(context.Background(), "appt-1", StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)

	mock.ExpectQuery("UPDATE appointments SET status").
		WithArgs(StatusCompleted, "missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = repo.UpdateStatus(context.Background(), "missing", StatusCompleted)
	assert.Error(t, err)
}

func TestPostgresRepository_Analytics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepositoryWithDB(mock)

	mock.ExpectQuery("SELECT status, COUNT(.+) FROM appointments").
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow(StatusScheduled, 3).
			AddRow(StatusCompleted, 2))
	mock.ExpectQuery("SELECT technician_name, COUNT(.+) FROM appointments").
		WillReturnRows(pgxmock.NewRows([]string{"technician_name", "count"}).
			AddRow("John Doe", 4).
			AddRow("Jane Smith", 1))

	stats, err := repo.Analytics(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[StatusScheduled])
	assert.Equal(t, 4, stats.ByTechnician["John Doe"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
