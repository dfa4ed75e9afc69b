package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/timeclock/internal/clock"
	"github.com/spec-kit/timeclock/internal/domain"
	"github.com/spec-kit/timeclock/internal/events"
	"github.com/spec-kit/timeclock/internal/repository"
	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

const previewRunes = 80

// MessageService implements the user inbox.
type MessageService struct {
	messages   repository.MessageRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
}

// MessageDependencies bundles collaborators for the message service.
type MessageDependencies struct {
	MessageRepo repository.MessageRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Clock       clock.Clock
}

// SendMessageInput describes a new message.
type SendMessageInput struct {
	Receiver string
	Subject  *string
	Body     string
}

// NewMessageService builds the service.
func NewMessageService(deps MessageDependencies) *MessageService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewSystem(nil)
	}
	return &MessageService{
		messages:   deps.MessageRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		clock:      clk,
	}
}

// Send delivers a message from sender to an existing receiver.
func (s *MessageService) Send(ctx context.Context, sender string, in SendMessageInput) (*domain.Message, error) {
	receiver := strings.TrimSpace(in.Receiver)
	body := strings.TrimSpace(in.Body)
	if receiver == "" || body == "" {
		return nil, apperrors.NewValidationError("receiver and message are required", nil)
	}
	if _, err := s.users.GetByUsername(ctx, receiver); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("receiver", map[string]any{"receiver": receiver})
		}
		return nil, err
	}

	msg := &domain.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Subject:   trimmedOrNil(in.Subject),
		Body:      body,
		Timestamp: s.clock.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.clock, events.Event{
		Type:     events.EventMessageSent,
		Username: receiver,
		Actor:    sender,
		Payload: events.MessageSentPayload{
			MessageID: msg.ID,
			Receiver:  receiver,
			Subject:   msg.Subject,
			Preview:   preview(body),
		},
	})
	return msg, nil
}

// Inbox lists the receiver's messages that are not deleted, newest first.
func (s *MessageService) Inbox(ctx context.Context, receiver string) ([]domain.Message, error) {
	return s.messages.ListInbox(ctx, receiver)
}

// Read returns one message and marks it read.
func (s *MessageService) Read(ctx context.Context, receiver, id string) (*domain.Message, error) {
	msg, err := s.owned(ctx, receiver, id)
	if err != nil {
		return nil, err
	}
	if msg.Deleted {
		return nil, apperrors.NewNotFound("message", map[string]any{"id": id})
	}
	if !msg.IsRead {
		if err := s.messages.MarkRead(ctx, id); err != nil {
			return nil, apperrors.MapError(err)
		}
		msg.IsRead = true
	}
	return msg, nil
}

// Delete hides a message from the inbox.
func (s *MessageService) Delete(ctx context.Context, receiver, id string) error {
	return s.setDeleted(ctx, receiver, id, true)
}

// Undo restores a deleted message.
func (s *MessageService) Undo(ctx context.Context, receiver, id string) error {
	return s.setDeleted(ctx, receiver, id, false)
}

func (s *MessageService) setDeleted(ctx context.Context, receiver, id string, deleted bool) error {
	if _, err := s.owned(ctx, receiver, id); err != nil {
		return err
	}
	return apperrors.MapError(s.messages.SetDeleted(ctx, id, deleted))
}

// owned loads id and hides messages addressed to someone else.
func (s *MessageService) owned(ctx context.Context, receiver, id string) (*domain.Message, error) {
	notFound := apperrors.NewNotFound("message", map[string]any{"id": id})
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound
	}
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, err
	}
	if msg.Receiver != receiver {
		return nil, notFound
	}
	return msg, nil
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewRunes {
		return body
	}
	return string([]rune(body)[:previewRunes]) + "..."
}
