package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/timeclock/internal/domain"
)

// UserRepository defines persistence access for users and their clock state.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByDesk(ctx context.Context, desk string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]string, error)
	UpdateClockState(ctx context.Context, user *domain.User) error
	UpdateDesk(ctx context.Context, username string, desk *string) error
	UpdateAvatar(ctx context.Context, username string, avatar *string) error
	Delete(ctx context.Context, username string) error
}

const userColumns = `username, password, email, room_code, desk, avatar, role, status,
               job_site_location, work_hours, break_hours, last_clock_in, last_break_start,
               last_break_end, last_clock_out, created_at`

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, password, email, room_code, desk, avatar, role, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.RoomCode,
		user.Desk,
		user.Avatar,
		user.Role,
		user.Status,
	).Scan(&user.CreatedAt)
	return mapWriteError(err)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *userRepository) GetByDesk(ctx context.Context, desk string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE desk=$1`
	return scanUser(r.db.QueryRow(ctx, query, desk))
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY username ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) ListByStatus(ctx context.Context, status domain.Status) ([]string, error) {
	const query = `SELECT username FROM users WHERE status=$1 ORDER BY username ASC`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		result = append(result, username)
	}
	return result, rows.Err()
}

func (r *userRepository) UpdateClockState(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET status=$1, job_site_location=$2, work_hours=$3, break_hours=$4,
            last_clock_in=$5, last_break_start=$6, last_break_end=$7, last_clock_out=$8
        WHERE username=$9`

	return r.execOne(ctx, query,
		user.Status,
		user.JobSiteLocation,
		user.WorkHours,
		user.BreakHours,
		user.LastClockIn,
		user.LastBreakStart,
		user.LastBreakEnd,
		user.LastClockOut,
		user.Username,
	)
}

func (r *userRepository) UpdateDesk(ctx context.Context, username string, desk *string) error {
	const query = `UPDATE users SET desk=$1 WHERE username=$2`
	return r.execOne(ctx, query, desk, username)
}

func (r *userRepository) UpdateAvatar(ctx context.Context, username string, avatar *string) error {
	const query = `UPDATE users SET avatar=$1 WHERE username=$2`
	return r.execOne(ctx, query, avatar, username)
}

func (r *userRepository) Delete(ctx context.Context, username string) error {
	const query = `DELETE FROM users WHERE username=$1`
	return r.execOne(ctx, query, username)
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.RoomCode,
		&user.Desk,
		&user.Avatar,
		&user.Role,
		&user.Status,
		&user.JobSiteLocation,
		&user.WorkHours,
		&user.BreakHours,
		&user.LastClockIn,
		&user.LastBreakStart,
		&user.LastBreakEnd,
		&user.LastClockOut,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
