package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/timeclock/internal/auth"
	"github.com/spec-kit/timeclock/internal/clock"
	"github.com/spec-kit/timeclock/internal/config"
	"github.com/spec-kit/timeclock/internal/domain"
	"github.com/spec-kit/timeclock/internal/events"
	"github.com/spec-kit/timeclock/internal/repository"
	"github.com/spec-kit/timeclock/internal/storage"
	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

const avatarKeyPrefix = "avatars/"

var errInvalidCredentials = apperrors.NewUnauthorized("invalid username, password or room code")

// AccountService coordinates signup, login and profile changes.
type AccountService struct {
	users          repository.UserRepository
	storage        *storage.Storage
	dispatcher     events.Dispatcher
	clock          clock.Clock
	logger         *zap.Logger
	tokenMgr       *auth.TokenManager
	passwords      auth.PasswordHasher
	decoyHash      string
	maxAvatarBytes int64
	admins         map[string]struct{}
}

// AccountDependencies encapsulates collaborators for the account service.
type AccountDependencies struct {
	UserRepo   repository.UserRepository
	Storage    *storage.Storage
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// SignupInput carries a new account.
type SignupInput struct {
	Username string
	Password string
	Email    string
	RoomCode string
	Desk     *string
	Avatar   *string
}

// AvatarUpload describes an uploaded image.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Avatar is either a stored object or an external URL.
type Avatar struct {
	RedirectURL string
	Body        io.ReadCloser
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	admins := make(map[string]struct{}, len(cfg.Auth.AdminUsernames))
	for _, name := range cfg.Auth.AdminUsernames {
		admins[name] = struct{}{}
	}
	passwords := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	// Unknown usernames are compared against this hash so a failed login
	// costs the same bcrypt work whether or not the account exists.
	decoy, err := passwords.Hash(uuid.NewString())
	if err != nil {
		logger.Warn("failed to prepare login decoy hash", zap.Error(err))
	}
	return &AccountService{
		users:          deps.UserRepo,
		storage:        deps.Storage,
		dispatcher:     deps.Dispatcher,
		clock:          clk,
		logger:         logger,
		tokenMgr:       auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		passwords:      passwords,
		decoyHash:      decoy,
		maxAvatarBytes: int64(cfg.App.MaxAvatarBytes),
		admins:         admins,
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Signup creates a clocked-out account and returns an access token for it.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*domain.User, domain.AccessToken, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.RoomCode = strings.TrimSpace(in.RoomCode)

	missing := missingFields(map[string]string{
		"username":  in.Username,
		"password":  in.Password,
		"email":     in.Email,
		"room_code": in.RoomCode,
	})
	if len(missing) > 0 {
		return nil, domain.AccessToken{}, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, domain.AccessToken{}, apperrors.NewValidationError("invalid email", map[string]any{"email": in.Email})
	}

	desk := trimmedOrNil(in.Desk)
	if desk != nil {
		if err := s.ensureDeskFree(ctx, in.Username, *desk); err != nil {
			return nil, domain.AccessToken{}, err
		}
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, domain.AccessToken{}, apperrors.NewValidationError("password too long", map[string]any{"max_bytes": 72})
		}
		return nil, domain.AccessToken{}, err
	}

	role := domain.RoleUser
	if _, ok := s.admins[in.Username]; ok {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		RoomCode:     in.RoomCode,
		Desk:         desk,
		Avatar:       trimmedOrNil(in.Avatar),
		Role:         role,
		Status:       domain.StatusClockedOut,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.AccessToken{}, apperrors.NewConflict("username or desk already taken", map[string]any{"username": in.Username})
		}
		return nil, domain.AccessToken{}, err
	}

	token, err := s.tokenMgr.Issue(user)
	if err != nil {
		return nil, domain.AccessToken{}, err
	}
	return user, token, nil
}

// Login checks username, password and room code together; any mismatch
// yields the same error.
func (s *AccountService) Login(ctx context.Context, username, password, roomCode string) (*domain.User, domain.AccessToken, error) {
	username = strings.TrimSpace(username)
	roomCode = strings.TrimSpace(roomCode)
	missing := missingFields(map[string]string{
		"username":  username,
		"password":  password,
		"room_code": roomCode,
	})
	if len(missing) > 0 {
		return nil, domain.AccessToken{}, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.passwords.Matches(s.decoyHash, password)
			return nil, domain.AccessToken{}, errInvalidCredentials
		}
		return nil, domain.AccessToken{}, err
	}
	if !s.passwords.Matches(user.PasswordHash, password) {
		return nil, domain.AccessToken{}, errInvalidCredentials
	}
	if user.RoomCode != roomCode {
		return nil, domain.AccessToken{}, errInvalidCredentials
	}

	token, err := s.tokenMgr.Issue(user)
	if err != nil {
		return nil, domain.AccessToken{}, err
	}
	return user, token, nil
}

// Me loads the named user.
func (s *AccountService) Me(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, err
	}
	return user, nil
}

// AssignDesk gives username the desk, or clears it when desk is blank.
func (s *AccountService) AssignDesk(ctx context.Context, username, desk string) (*domain.User, error) {
	var value *string
	if d := strings.TrimSpace(desk); d != "" {
		if err := s.ensureDeskFree(ctx, username, d); err != nil {
			return nil, err
		}
		value = &d
	}
	if err := s.users.UpdateDesk(ctx, username, value); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("desk already taken", map[string]any{"desk": desk})
		}
		return nil, apperrors.MapError(err)
	}
	return s.Me(ctx, username)
}

// UploadAvatar stores the image and points the user's avatar at it.
func (s *AccountService) UploadAvatar(ctx context.Context, username string, upload AvatarUpload) (*domain.User, error) {
	if !s.storage.Enabled() {
		return nil, apperrors.NewValidationError("avatar storage is not configured", nil)
	}
	if upload.Body == nil || upload.Size <= 0 {
		return nil, apperrors.NewValidationError("avatar file is empty", nil)
	}
	if s.maxAvatarBytes > 0 && upload.Size > s.maxAvatarBytes {
		return nil, apperrors.NewValidationError("avatar file too large", map[string]any{"max_bytes": s.maxAvatarBytes})
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, apperrors.NewValidationError("avatar must be an image", map[string]any{"content_type": upload.ContentType})
	}

	user, err := s.Me(ctx, username)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s/%s%s", avatarKeyPrefix, username, uuid.NewString(), strings.ToLower(filepath.Ext(upload.Filename)))
	if err := s.storage.Put(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, err
	}
	if err := s.users.UpdateAvatar(ctx, username, &key); err != nil {
		return nil, apperrors.MapError(err)
	}

	if old := user.Avatar; old != nil && strings.HasPrefix(*old, avatarKeyPrefix) {
		if err := s.storage.Delete(ctx, *old); err != nil {
			s.logger.Warn("failed to delete previous avatar", zap.String("key", *old), zap.Error(err))
		}
	}

	user.Avatar = &key
	return user, nil
}

// Avatar opens the avatar of username. Avatars given as URLs at signup are
// returned as a redirect target instead.
func (s *AccountService) Avatar(ctx context.Context, username string) (*Avatar, error) {
	user, err := s.Me(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Avatar == nil || *user.Avatar == "" {
		return nil, apperrors.NewNotFound("avatar", map[string]any{"username": username})
	}
	if !strings.HasPrefix(*user.Avatar, avatarKeyPrefix) {
		return &Avatar{RedirectURL: *user.Avatar}, nil
	}
	if !s.storage.Enabled() {
		return nil, apperrors.NewNotFound("avatar", map[string]any{"username": username})
	}
	body, err := s.storage.Get(ctx, *user.Avatar)
	if err != nil {
		return nil, err
	}
	return &Avatar{Body: body}, nil
}

// ListUsers returns every account. Admin only.
func (s *AccountService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	return s.users.List(ctx)
}

// DeleteUser removes username. Admin only, and never the caller's own account.
// Timesheet rows are kept for payroll history.
func (s *AccountService) DeleteUser(ctx context.Context, actor *domain.User, username string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	if actor.Username == username {
		return apperrors.NewForbidden("admins cannot delete their own account")
	}
	if err := s.users.Delete(ctx, username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return err
	}

	publishEvent(ctx, s.dispatcher, s.clock, events.Event{
		Type:     events.EventUserDeleted,
		Username: username,
		Actor:    actor.Username,
	})
	return nil
}

func (s *AccountService) ensureDeskFree(ctx context.Context, username, desk string) error {
	holder, err := s.users.GetByDesk(ctx, desk)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil
	case err != nil:
		return err
	case holder.Username != username:
		return apperrors.NewConflict("desk already taken", map[string]any{"desk": desk})
	}
	return nil
}

func missingFields(fields map[string]string) []string {
	var missing []string
	for _, name := range []string{"username", "password", "email", "room_code"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
