package repository

import (
	"context"
	"time"

	"github.com/spec-kit/timeclock/internal/domain"
)

// TimesheetRepository stores append-only daily totals.
type TimesheetRepository interface {
	Create(ctx context.Context, entry *domain.TimesheetEntry) error
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.TimesheetEntry, error)
	ListByUserBetween(ctx context.Context, username string, from, to time.Time) ([]domain.TimesheetEntry, error)
}

type timesheetRepository struct {
	db DB
}

// NewTimesheetRepository builds repository.
func NewTimesheetRepository(db DB) TimesheetRepository {
	return &timesheetRepository{db: db}
}

func (r *timesheetRepository) Create(ctx context.Context, entry *domain.TimesheetEntry) error {
	const query = `
        INSERT INTO timesheets (username, date, work_hours, break_hours)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.Username,
		entry.Date,
		entry.WorkHours,
		entry.BreakHours,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *timesheetRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.TimesheetEntry, error) {
	const query = `
        SELECT id, username, date, work_hours, break_hours, created_at
        FROM timesheets WHERE date BETWEEN $1 AND $2 ORDER BY username ASC, date ASC, id ASC`
	return r.list(ctx, query, from, to)
}

func (r *timesheetRepository) ListByUserBetween(ctx context.Context, username string, from, to time.Time) ([]domain.TimesheetEntry, error) {
	const query = `
        SELECT id, username, date, work_hours, break_hours, created_at
        FROM timesheets WHERE username=$1 AND date BETWEEN $2 AND $3 ORDER BY date ASC, id ASC`
	return r.list(ctx, query, username, from, to)
}

func (r *timesheetRepository) list(ctx context.Context, query string, args ...any) ([]domain.TimesheetEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimesheetEntry
	for rows.Next() {
		var entry domain.TimesheetEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Username,
			&entry.Date,
			&entry.WorkHours,
			&entry.BreakHours,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
