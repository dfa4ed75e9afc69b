package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/timeclock/internal/clock"
	"github.com/spec-kit/timeclock/internal/domain"
	"github.com/spec-kit/timeclock/internal/events"
	"github.com/spec-kit/timeclock/internal/repository/memory"
	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

func newMessageFixture(t *testing.T) (*MessageService, *clock.Manual, *recorder) {
	t.Helper()
	store := memory.NewStore()
	seedUser(t, store, "alice", domain.RoleUser)
	seedUser(t, store, "bob", domain.RoleUser)
	dispatcher := events.NewInMemoryDispatcher(nil)
	rec := recordAll(dispatcher)
	clk := newManualClock()
	svc := NewMessageService(MessageDependencies{
		MessageRepo: store.Messages(),
		UserRepo:    store.Users(),
		Dispatcher:  dispatcher,
		Clock:       clk,
	})
	return svc, clk, rec
}

func TestMessageService_SendAndInbox(t *testing.T) {
	svc, clk, rec := newMessageFixture(t)
	ctx := context.Background()

	first, err := svc.Send(ctx, "alice", SendMessageInput{Receiver: "bob", Subject: strPtr("hi"), Body: "first"})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	second, err := svc.Send(ctx, "alice", SendMessageInput{Receiver: "bob", Body: strings.Repeat("é", 100)})
	require.NoError(t, err)

	inbox, err := svc.Inbox(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, second.ID, inbox[0].ID)
	assert.Equal(t, first.ID, inbox[1].ID)
	assert.Nil(t, inbox[0].Subject)

	sent := rec.ofType(events.EventMessageSent)
	require.Len(t, sent, 2)
	preview := sent[1].Payload.(events.MessageSentPayload).Preview
	assert.Equal(t, strings.Repeat("é", 80)+"...", preview)

	empty, err := svc.Inbox(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMessageService_SendValidation(t *testing.T) {
	svc, _, _ := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, "alice", SendMessageInput{Receiver: "bob", Body: "   "})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.Send(ctx, "alice", SendMessageInput{Receiver: "ghost", Body: "hello"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestMessageService_ReadDeleteUndo(t *testing.T) {
	svc, _, _ := newMessageFixture(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "alice", SendMessageInput{Receiver: "bob", Body: "hello"})
	require.NoError(t, err)

	read, err := svc.Read(ctx, "bob", msg.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	// Only the receiver can see the message.
	_, err = svc.Read(ctx, "alice", msg.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.True(t, apperrors.HasCode(svc.Delete(ctx, "alice", msg.ID), apperrors.CodeNotFound))

	require.NoError(t, svc.Delete(ctx, "bob", msg.ID))
	inbox, err := svc.Inbox(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, inbox)
	_, err = svc.Read(ctx, "bob", msg.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	require.NoError(t, svc.Undo(ctx, "bob", msg.ID))
	inbox, err = svc.Inbox(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.True(t, inbox[0].IsRead)
}

func TestMessageService_UnknownIDs(t *testing.T) {
	svc, _, _ := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Read(ctx, "bob", "not-a-uuid")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.True(t, apperrors.HasCode(svc.Undo(ctx, "bob", uuid.NewString()), apperrors.CodeNotFound))
}
