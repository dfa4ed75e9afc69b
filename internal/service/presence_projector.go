package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/timeclock/internal/events"
	"github.com/spec-kit/timeclock/internal/presence"
)

// PresenceProjector mirrors status changes into the presence store.
// onWriteFailure runs whenever a write is lost so the reader can rebuild.
type PresenceProjector struct {
	dispatcher     events.Dispatcher
	store          presence.Store
	onWriteFailure func()
}

// NewPresenceProjector creates the projector. onWriteFailure may be nil.
func NewPresenceProjector(dispatcher events.Dispatcher, store presence.Store, onWriteFailure func()) *PresenceProjector {
	if onWriteFailure == nil {
		onWriteFailure = func() {}
	}
	return &PresenceProjector{dispatcher: dispatcher, store: store, onWriteFailure: onWriteFailure}
}

// RegisterHandlers subscribes to events.
func (p *PresenceProjector) RegisterHandlers() {
	if p.dispatcher == nil || p.store == nil {
		return
	}
	p.dispatcher.Subscribe(events.EventStatusChanged, p.handleStatusChanged)
	p.dispatcher.Subscribe(events.EventUserDeleted, p.handleUserDeleted)
}

func (p *PresenceProjector) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return p.failed(p.store.Set(ctx, event.Username, payload.NewStatus))
}

func (p *PresenceProjector) handleUserDeleted(ctx context.Context, event events.Event) error {
	return p.failed(p.store.Remove(ctx, event.Username))
}

func (p *PresenceProjector) failed(err error) error {
	if err != nil {
		p.onWriteFailure()
	}
	return err
}
