package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/timeclock/internal/clock"
	"github.com/spec-kit/timeclock/internal/domain"
	"github.com/spec-kit/timeclock/internal/repository"
	"github.com/spec-kit/timeclock/internal/tracker"
	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

// HoursService reports live and weekly hours.
type HoursService struct {
	users      repository.UserRepository
	timesheets repository.TimesheetRepository
	clock      clock.Clock
}

// HoursDependencies bundles repositories for the hours service.
type HoursDependencies struct {
	UserRepo      repository.UserRepository
	TimesheetRepo repository.TimesheetRepository
	Clock         clock.Clock
}

// NewHoursService builds the service.
func NewHoursService(deps HoursDependencies) *HoursService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &HoursService{users: deps.UserRepo, timesheets: deps.TimesheetRepo, clock: clk}
}

// Current projects today's hours for every user, open segment included.
func (s *HoursService) Current(ctx context.Context) ([]domain.LiveHours, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]domain.LiveHours, 0, len(users))
	for _, u := range users {
		out = append(out, tracker.Project(u, now))
	}
	return out, nil
}

// WeeklyAll returns Monday to Friday of the current week for every user.
func (s *HoursService) WeeklyAll(ctx context.Context) ([]domain.WeeklyTimesheet, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	week := tracker.WorkWeek(s.clock.Now())
	entries, err := s.timesheets.ListBetween(ctx, week[0], week[len(week)-1])
	if err != nil {
		return nil, err
	}

	byUser := make(map[string][]domain.TimesheetEntry)
	for _, e := range entries {
		byUser[e.Username] = append(byUser[e.Username], e)
	}

	out := make([]domain.WeeklyTimesheet, 0, len(users))
	for _, u := range users {
		out = append(out, tracker.Aggregate(u.Username, week, byUser[u.Username]))
	}
	return out, nil
}

// WeeklyForUser returns the current week for one user.
func (s *HoursService) WeeklyForUser(ctx context.Context, username string) (*domain.WeeklyTimesheet, error) {
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, err
	}
	week := tracker.WorkWeek(s.clock.Now())
	entries, err := s.timesheets.ListByUserBetween(ctx, username, week[0], week[len(week)-1])
	if err != nil {
		return nil, err
	}
	sheet := tracker.Aggregate(username, week, entries)
	return &sheet, nil
}
