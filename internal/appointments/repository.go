package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository persists appointments via pgx.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a repository backed by a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		return nil
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const appointmentColumns = `id, call_sid, customer_name, customer_phone, problem,
	scheduled_date, scheduled_time, technician_id, technician_name, status,
	created_at, updated_at`

func (r *PostgresRepository) Insert(ctx context.Context, appt *Appointment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO appointments (`+appointmentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		appt.ID, appt.CallID, appt.CustomerName, appt.CustomerPhone, appt.Problem,
		appt.ScheduledDate, appt.ScheduledTime, appt.TechnicianID, appt.TechnicianName,
		appt.Status, appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("appointments: get by id: %w", err)
	}
	return appt, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Appointment, int, error) {
	filter = normalizeListFilter(filter)

	where := "WHERE 1=1"
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.TechnicianID != "" {
		args = append(args, filter.TechnicianID)
		where += fmt.Sprintf(" AND technician_id = $%d", len(args))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		where += fmt.Sprintf(" AND scheduled_date = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM appointments %s", where), args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("appointments: count: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(
		`SELECT `+appointmentColumns+` FROM appointments %s
		 ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("appointments: list scan: %w", err)
		}
		out = append(out, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("appointments: list rows: %w", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) (*Appointment, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE appointments SET status = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+appointmentColumns, status, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("appointments: appointment %s not found", id)
		}
		return nil, fmt.Errorf("appointments: update status: %w", err)
	}
	return appt, nil
}

func (r *PostgresRepository) Analytics(ctx context.Context, start, end *time.Time) (*Analytics, error) {
	where := "WHERE 1=1"
	args := []any{}
	if start != nil {
		args = append(args, *start)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	out := &Analytics{ByStatus: map[string]int{}, ByTechnician: map[string]int{}}

	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT status, COUNT(*) FROM appointments %s GROUP BY status`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: analytics by status: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("appointments: analytics scan: %w", err)
		}
		out.ByStatus[status] = count
		out.Total += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: analytics rows: %w", err)
	}

	rows, err = r.db.Query(ctx, fmt.Sprintf(
		`SELECT technician_name, COUNT(*) FROM appointments %s GROUP BY technician_name`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: analytics by technician: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("appointments: analytics scan: %w", err)
		}
		out.ByTechnician[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: analytics rows: %w", err)
	}
	return out, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	err := row.Scan(
		&appt.ID, &appt.CallID, &appt.CustomerName, &appt.CustomerPhone, &appt.Problem,
		&appt.ScheduledDate, &appt.ScheduledTime, &appt.TechnicianID, &appt.TechnicianName,
		&appt.Status, &appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
