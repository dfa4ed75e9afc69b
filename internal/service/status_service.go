package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/timeclock/internal/clock"
	"github.com/spec-kit/timeclock/internal/domain"
	"github.com/spec-kit/timeclock/internal/events"
	"github.com/spec-kit/timeclock/internal/observability"
	"github.com/spec-kit/timeclock/internal/presence"
	"github.com/spec-kit/timeclock/internal/repository"
	"github.com/spec-kit/timeclock/internal/tracker"
	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

// StatusService applies clock actions and serves the status board.
type StatusService struct {
	users      repository.UserRepository
	timesheets repository.TimesheetRepository
	presence   presence.Store
	dispatcher events.Dispatcher
	clock      clock.Clock
	metrics    *observability.Metrics
	logger     *zap.Logger

	// presenceStale is set when a presence write may have been lost; the
	// board is rebuilt from the users table before Redis is read again.
	presenceStale atomic.Bool
}

// StatusDependencies bundles collaborators for the status service.
// Presence, Dispatcher and Metrics are optional.
type StatusDependencies struct {
	UserRepo      repository.UserRepository
	TimesheetRepo repository.TimesheetRepository
	Presence      presence.Store
	Dispatcher    events.Dispatcher
	Clock         clock.Clock
	Metrics       *observability.Metrics
	Logger        *zap.Logger
}

// NewStatusService builds the service.
func NewStatusService(deps StatusDependencies) *StatusService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &StatusService{
		users:      deps.UserRepo,
		timesheets: deps.TimesheetRepo,
		presence:   deps.Presence,
		dispatcher: deps.Dispatcher,
		clock:      clk,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// SetStatus moves username to the status named by action.
//
// A clock-out row is written before the user's accumulators are reset, so a
// failure in between leaves the row recorded and the user still clocked in
// rather than losing the day's hours.
func (s *StatusService) SetStatus(ctx context.Context, username, action, location string) (*domain.User, error) {
	status, err := domain.ParseStatus(strings.TrimSpace(action))
	if err != nil {
		return nil, apperrors.NewValidationError("unknown status action", map[string]any{
			"action":  action,
			"allowed": domain.Statuses,
		})
	}
	location = strings.TrimSpace(location)
	if status == domain.StatusJobSite && location == "" {
		return nil, apperrors.NewValidationError("location is required for job-site", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, err
	}

	now := s.clock.Now()
	result := tracker.Apply(*user, status, location, now)

	if result.Entry != nil {
		if err := s.timesheets.Create(ctx, result.Entry); err != nil {
			return nil, err
		}
	}
	if err := s.users.UpdateClockState(ctx, &result.User); err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(user.Status), string(status))
	s.logger.Debug("status changed",
		zap.String("username", username),
		zap.String("from", string(user.Status)),
		zap.String("to", string(status)))

	publishEvent(ctx, s.dispatcher, s.clock, events.Event{
		Type:      events.EventStatusChanged,
		Username:  username,
		Timestamp: now,
		Payload: events.StatusChangedPayload{
			OldStatus:       user.Status,
			NewStatus:       status,
			JobSiteLocation: result.User.JobSiteLocation,
			WorkHours:       result.User.WorkHours,
			BreakHours:      result.User.BreakHours,
		},
	})
	if entry := result.Entry; entry != nil {
		publishEvent(ctx, s.dispatcher, s.clock, events.Event{
			Type:      events.EventTimesheetRecorded,
			Username:  username,
			Timestamp: now,
			Payload: events.TimesheetRecordedPayload{
				EntryID:    entry.ID,
				Date:       entry.Date.Format(tracker.DateLayout),
				WorkHours:  entry.WorkHours,
				BreakHours: entry.BreakHours,
			},
		})
	}

	return &result.User, nil
}

// StatusBoard groups usernames by status. The Redis projection is preferred;
// Postgres answers when Redis is missing or failing, or when the projection
// is stale and cannot be rebuilt yet.
func (s *StatusService) StatusBoard(ctx context.Context) (presence.Board, error) {
	if s.presence == nil {
		return s.boardFromRepository(ctx)
	}
	if s.presenceStale.Load() {
		if err := s.SyncPresence(ctx); err != nil {
			s.logger.Warn("presence resync failed, reading from database", zap.Error(err))
			return s.boardFromRepository(ctx)
		}
		s.logger.Info("presence board resynced")
	}
	board, err := s.presence.Board(ctx)
	if err == nil {
		return board, nil
	}
	s.MarkPresenceStale()
	s.logger.Warn("presence board unavailable, reading from database", zap.Error(err))
	return s.boardFromRepository(ctx)
}

// MarkPresenceStale records that the Redis projection may have missed a write.
func (s *StatusService) MarkPresenceStale() {
	s.presenceStale.Store(true)
}

// SyncPresence rebuilds the Redis projection from the users table.
func (s *StatusService) SyncPresence(ctx context.Context) error {
	if s.presence == nil {
		return nil
	}
	// cleared first so a write failing during the rebuild marks it again
	s.presenceStale.Store(false)
	board, err := s.boardFromRepository(ctx)
	if err == nil {
		err = s.presence.Replace(ctx, board)
	}
	if err != nil {
		s.MarkPresenceStale()
		return err
	}
	return nil
}

func (s *StatusService) boardFromRepository(ctx context.Context) (presence.Board, error) {
	board := make(presence.Board, len(domain.Statuses))
	for _, st := range domain.Statuses {
		names, err := s.users.ListByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		board[st] = names
	}
	return board, nil
}
