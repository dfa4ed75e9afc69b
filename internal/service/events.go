package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/timeclock/internal/clock"
	"github.com/spec-kit/timeclock/internal/events"
)

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, clk clock.Clock, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = clk.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
