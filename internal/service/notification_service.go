package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/timeclock/internal/config"
	"github.com/spec-kit/timeclock/internal/events"
)

type notifyChannel int

const (
	channelEmail notifyChannel = iota
	channelWebhook
)

// notificationRoutes decides which stub channel announces each event.
// Timesheets and messages concern the user; status moves and deletions
// concern whoever watches the webhook.
var notificationRoutes = map[events.EventType]notifyChannel{
	events.EventStatusChanged:     channelWebhook,
	events.EventTimesheetRecorded: channelEmail,
	events.EventMessageSent:       channelEmail,
	events.EventUserDeleted:       channelWebhook,
}

// NotificationService logs domain events and forwards them to stubbed
// email and webhook channels.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, logger: logger, cfg: cfg}
}

// RegisterHandlers subscribes to every routed event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for eventType := range notificationRoutes {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_type", string(event.Type)),
		zap.String("username", event.Username),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.Type != events.EventMessageSent {
		// message previews stay out of the logs
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	n.logger.Info("domain event", fields...)

	switch notificationRoutes[event.Type] {
	case channelEmail:
		n.email(ctx, event)
	case channelWebhook:
		n.webhook(ctx, event)
	}
	return nil
}

func (n *NotificationService) email(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification stub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", event.Username),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) webhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification stub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("username", event.Username),
		zap.String("event_type", string(event.Type)))
}
