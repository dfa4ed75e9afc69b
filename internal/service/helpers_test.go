package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/timeclock/internal/clock"
	"github.com/spec-kit/timeclock/internal/config"
	"github.com/spec-kit/timeclock/internal/domain"
	"github.com/spec-kit/timeclock/internal/events"
	"github.com/spec-kit/timeclock/internal/repository/memory"
)

// Wednesday of the week starting Monday 2024-06-10.
var wednesday = time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func recordAll(d events.Dispatcher) *recorder {
	r := &recorder{}
	for _, t := range []events.EventType{
		events.EventStatusChanged,
		events.EventTimesheetRecorded,
		events.EventMessageSent,
		events.EventUserDeleted,
	} {
		d.Subscribe(t, r.handle)
	}
	return r
}

func testConfig() config.Config {
	return config.Config{
		App:  config.AppConfig{MaxAvatarBytes: 1024},
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4, AdminUsernames: []string{"root"}},
		AMQP: config.AMQPConfig{TimesheetQueue: "timesheets", StatusQueue: "status"},
	}
}

func seedUser(t *testing.T, store *memory.Store, username string, role domain.Role) {
	t.Helper()
	require.NoError(t, store.Users().Create(context.Background(), &domain.User{
		Username: username,
		Email:    username + "@example.com",
		RoomCode: "R1",
		Role:     role,
		Status:   domain.StatusClockedOut,
	}))
}

func newManualClock() *clock.Manual {
	return clock.NewManual(wednesday)
}

// fakeObjects is an in-memory storage backend.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) EnsureBucket(context.Context) error { return nil }

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeObjects) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeObjects) Bucket() string { return "avatars" }
