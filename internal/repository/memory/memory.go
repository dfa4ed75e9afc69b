// Package memory holds map-backed repositories used for local development
// without Postgres and as fixtures in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/timeclock/internal/domain"
	"github.com/spec-kit/timeclock/internal/repository"
)

// Store owns the maps shared by the in-memory repositories.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	timesheets []domain.TimesheetEntry
	messages   map[string]domain.Message
	now        func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		messages: make(map[string]domain.Message),
		now:      time.Now,
	}
}

// Users returns a UserRepository backed by the store.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Timesheets returns a TimesheetRepository backed by the store.
func (s *Store) Timesheets() repository.TimesheetRepository { return &timesheetRepo{s} }

// Messages returns a MessageRepository backed by the store.
func (s *Store) Messages() repository.MessageRepository { return &messageRepo{s} }

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.Username]; ok {
		return repository.ErrDuplicate
	}
	user.CreatedAt = r.s.now()
	r.s.users[user.Username] = *user
	return nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *userRepo) GetByDesk(_ context.Context, desk string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Desk != nil && *user.Desk == desk {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (r *userRepo) ListByStatus(ctx context.Context, status domain.Status) ([]string, error) {
	users, _ := r.List(ctx)
	result := []string{}
	for _, user := range users {
		if user.Status == status {
			result = append(result, user.Username)
		}
	}
	return result, nil
}

func (r *userRepo) UpdateClockState(_ context.Context, user *domain.User) error {
	return r.update(user.Username, func(stored *domain.User) {
		stored.Status = user.Status
		stored.JobSiteLocation = user.JobSiteLocation
		stored.WorkHours = user.WorkHours
		stored.BreakHours = user.BreakHours
		stored.LastClockIn = user.LastClockIn
		stored.LastBreakStart = user.LastBreakStart
		stored.LastBreakEnd = user.LastBreakEnd
		stored.LastClockOut = user.LastClockOut
	})
}

func (r *userRepo) UpdateDesk(_ context.Context, username string, desk *string) error {
	r.s.mu.RLock()
	for _, other := range r.s.users {
		if desk != nil && other.Username != username && other.Desk != nil && *other.Desk == *desk {
			r.s.mu.RUnlock()
			return repository.ErrDuplicate
		}
	}
	r.s.mu.RUnlock()
	return r.update(username, func(stored *domain.User) { stored.Desk = desk })
}

func (r *userRepo) UpdateAvatar(_ context.Context, username string, avatar *string) error {
	return r.update(username, func(stored *domain.User) { stored.Avatar = avatar })
}

func (r *userRepo) Delete(_ context.Context, username string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[username]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.users, username)
	return nil
}

func (r *userRepo) update(username string, fn func(*domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[username]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&stored)
	r.s.users[username] = stored
	return nil
}

type timesheetRepo struct{ s *Store }

func (r *timesheetRepo) Create(_ context.Context, entry *domain.TimesheetEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = int64(len(r.s.timesheets) + 1)
	entry.CreatedAt = r.s.now()
	r.s.timesheets = append(r.s.timesheets, *entry)
	return nil
}

func (r *timesheetRepo) ListBetween(_ context.Context, from, to time.Time) ([]domain.TimesheetEntry, error) {
	return r.filter(func(e domain.TimesheetEntry) bool { return inRange(e.Date, from, to) }), nil
}

func (r *timesheetRepo) ListByUserBetween(_ context.Context, username string, from, to time.Time) ([]domain.TimesheetEntry, error) {
	return r.filter(func(e domain.TimesheetEntry) bool {
		return e.Username == username && inRange(e.Date, from, to)
	}), nil
}

func (r *timesheetRepo) filter(keep func(domain.TimesheetEntry) bool) []domain.TimesheetEntry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.TimesheetEntry
	for _, e := range r.s.timesheets {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

// inRange compares calendar dates only, like a DATE column would.
func inRange(d, from, to time.Time) bool {
	key := d.Format(time.DateOnly)
	return key >= from.Format(time.DateOnly) && key <= to.Format(time.DateOnly)
}

type messageRepo struct{ s *Store }

func (r *messageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[msg.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.messages[msg.ID] = *msg
	return nil
}

func (r *messageRepo) GetByID(_ context.Context, id string) (*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	msg, ok := r.s.messages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &msg, nil
}

func (r *messageRepo) ListInbox(_ context.Context, receiver string) ([]domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Message{}
	for _, msg := range r.s.messages {
		if msg.Receiver == receiver && !msg.Deleted {
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	return result, nil
}

func (r *messageRepo) MarkRead(_ context.Context, id string) error {
	return r.update(id, func(m *domain.Message) { m.IsRead = true })
}

func (r *messageRepo) SetDeleted(_ context.Context, id string, deleted bool) error {
	return r.update(id, func(m *domain.Message) { m.Deleted = deleted })
}

func (r *messageRepo) update(id string, fn func(*domain.Message)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg, ok := r.s.messages[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&msg)
	r.s.messages[id] = msg
	return nil
}
