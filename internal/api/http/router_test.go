package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/timeclock/internal/api/http/handlers"
	"github.com/spec-kit/timeclock/internal/auth"
	"github.com/spec-kit/timeclock/internal/clock"
	"github.com/spec-kit/timeclock/internal/config"
	"github.com/spec-kit/timeclock/internal/events"
	"github.com/spec-kit/timeclock/internal/observability"
	"github.com/spec-kit/timeclock/internal/repository/memory"
	"github.com/spec-kit/timeclock/internal/service"
	"github.com/spec-kit/timeclock/internal/storage"
)

type memObjects struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memObjects) EnsureBucket(context.Context) error { return nil }
func (m *memObjects) Bucket() string                     { return "avatars" }

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	return nil
}

func (m *memObjects) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, errors.New("missing object")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type testServer struct {
	app   *fiber.App
	clock *clock.Manual
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App:  config.AppConfig{MaxAvatarBytes: 1 << 10},
		Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 60, BcryptCost: 4, AdminUsernames: []string{"root"}},
	}
	store := memory.NewStore()
	clk := clock.NewManual(time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC))
	dispatcher := events.NewInMemoryDispatcher(nil)
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	accounts := service.NewAccountService(cfg, service.AccountDependencies{
		UserRepo:   store.Users(),
		Storage:    storage.NewStorage(&memObjects{data: map[string][]byte{}}),
		Dispatcher: dispatcher,
		Clock:      clk,
	})
	status := service.NewStatusService(service.StatusDependencies{
		UserRepo:      store.Users(),
		TimesheetRepo: store.Timesheets(),
		Dispatcher:    dispatcher,
		Clock:         clk,
		Metrics:       metrics,
	})
	hours := service.NewHoursService(service.HoursDependencies{UserRepo: store.Users(), TimesheetRepo: store.Timesheets(), Clock: clk})
	messages := service.NewMessageService(service.MessageDependencies{
		MessageRepo: store.Messages(),
		UserRepo:    store.Users(),
		Dispatcher:  dispatcher,
		Clock:       clk,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("timeclock", "test", handlers.DependencyCheck{
			Name: "redis", Ping: func(context.Context) error { return errors.New("down") },
		}),
		Users:          handlers.NewUsersHandler(accounts),
		Status:         handlers.NewStatusHandler(status),
		Hours:          handlers.NewHoursHandler(hours),
		Messages:       handlers.NewMessagesHandler(messages),
		Admin:          handlers.NewAdminHandler(accounts),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: auth.NewAuthMiddleware(accounts.TokenManager(), store.Users()),
	})
	return &testServer{app: app, clock: clk}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	code, env := s.do(t, "POST", "/auth/signup", "", map[string]any{
		"username":  username,
		"password":  "pw-" + username,
		"email":     username + "@example.com",
		"room_code": "R1",
	})
	require.Equal(t, http.StatusCreated, code)
	var data struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Auth.Token
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice")

	code, env := s.do(t, "POST", "/auth/signup", "", map[string]any{
		"username": "alice", "password": "x", "email": "a@example.com", "room_code": "R1",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = s.do(t, "POST", "/auth/login", "", map[string]any{"username": "alice", "password": "nope", "room_code": "R1"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = s.do(t, "POST", "/auth/login", "", map[string]any{"username": "alice", "password": "pw-alice", "room_code": "R1"})
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, "POST", "/auth/signup", "", map[string]any{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestStatusAndHoursEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")
	root := s.signup(t, "root")

	code, _ := s.do(t, "POST", "/status/alice/clocked-in", alice, nil)
	require.Equal(t, http.StatusOK, code)

	code, env := s.do(t, "POST", "/status/alice/break", bob, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, env = s.do(t, "POST", "/status/alice/job-site", alice, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, "GET", "/status", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var board struct {
		ClockedIn  []string `json:"clocked_in"`
		ClockedOut []string `json:"clocked_out"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &board))
	assert.Equal(t, []string{"alice"}, board.ClockedIn)
	assert.Equal(t, []string{"bob", "root"}, board.ClockedOut)

	s.clock.Advance(2 * time.Hour)
	code, env = s.do(t, "GET", "/hours/current", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var live []struct {
		Username  string  `json:"username"`
		WorkHours float64 `json:"work_hours"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &live))
	require.Len(t, live, 3)
	assert.Equal(t, "alice", live[0].Username)
	assert.InDelta(t, 2.0, live[0].WorkHours, 1e-9)

	code, _ = s.do(t, "POST", "/status/alice/clocked-out", root, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, "GET", "/timesheets/weekly/alice", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var sheet struct {
		Days []struct {
			Date      string  `json:"date"`
			Weekday   string  `json:"weekday"`
			WorkHours float64 `json:"work_hours"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sheet))
	require.Len(t, sheet.Days, 5)
	assert.Equal(t, "2024-06-10", sheet.Days[0].Date)
	assert.Equal(t, "Wednesday", sheet.Days[2].Weekday)
	assert.InDelta(t, 2.0, sheet.Days[2].WorkHours, 1e-9)

	code, _ = s.do(t, "GET", "/timesheets/weekly/ghost", bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, "GET", "/timesheets/weekly", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var all []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 3)
}

func TestMessageEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	code, env := s.do(t, "POST", "/messages", bob, map[string]any{"receiver": "alice", "subject": "lunch", "message": "noon?"})
	require.Equal(t, http.StatusCreated, code)
	var sent struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sent))

	inbox := func() int {
		code, env := s.do(t, "GET", "/messages", alice, nil)
		require.Equal(t, http.StatusOK, code)
		var items []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &items))
		return len(items)
	}
	assert.Equal(t, 1, inbox())

	code, env = s.do(t, "GET", "/messages/"+sent.ID, alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"is_read":true`)

	code, _ = s.do(t, "GET", "/messages/"+sent.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, "DELETE", "/messages/"+sent.ID, alice, nil)
	require.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, 0, inbox())

	code, _ = s.do(t, "POST", "/messages/"+sent.ID+"/restore", alice, nil)
	require.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, 1, inbox())
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	code, env := s.do(t, "PUT", "/users/me/desk", alice, map[string]string{"desk": "D-7"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"desk":"D-7"`)

	code, _ = s.do(t, "PUT", "/users/me/desk", bob, map[string]string{"desk": "D-7"})
	assert.Equal(t, http.StatusConflict, code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="avatar"; filename="me.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("PUT", "/users/me/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, env = s.send(t, req, alice)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"avatar":"avatars/alice/`)

	req = httptest.NewRequest("GET", "/users/alice/avatar", nil)
	req.Header.Set("Authorization", "Bearer "+bob)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	code, env = s.do(t, "GET", "/users/me", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	root := s.signup(t, "root")

	code, _ := s.do(t, "GET", "/admin/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(t, "GET", "/admin/users", root, nil)
	require.Equal(t, http.StatusOK, code)
	var users []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)

	code, _ = s.do(t, "DELETE", "/admin/users/root", root, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, "DELETE", "/admin/users/alice", root, nil)
	require.Equal(t, http.StatusNoContent, code)

	code, _ = s.do(t, "GET", "/users/me", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, "GET", "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, code)

	// Redis is optional: a failing ping is reported but still ready.
	code, _ = s.do(t, "GET", "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := s.do(t, "GET", "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	code, env = s.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"/nowhere|GET|404"`)
}
