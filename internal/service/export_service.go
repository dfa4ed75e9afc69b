package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/timeclock/internal/config"
	"github.com/spec-kit/timeclock/internal/events"
)

// Publisher sends an encoded message to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error)
}

// ExportService forwards timesheet and status events to the message broker
// for payroll consumers.
type ExportService struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	cfg        config.AMQPConfig
	logger     *zap.Logger
}

// NewExportService creates the service.
func NewExportService(dispatcher events.Dispatcher, publisher Publisher, cfg config.AMQPConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{dispatcher: dispatcher, publisher: publisher, cfg: cfg, logger: logger}
}

// RegisterHandlers subscribes to events.
func (e *ExportService) RegisterHandlers() {
	if e.dispatcher == nil || e.publisher == nil {
		return
	}
	e.dispatcher.Subscribe(events.EventTimesheetRecorded, e.forwardTo(e.cfg.TimesheetQueue))
	e.dispatcher.Subscribe(events.EventStatusChanged, e.forwardTo(e.cfg.StatusQueue))
}

func (e *ExportService) forwardTo(queue string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		id, err := e.publisher.Publish(ctx, queue, data, map[string]string{
			"event_type": string(event.Type),
			"event_id":   event.ID,
			"username":   event.Username,
		})
		if err != nil {
			return err
		}
		e.logger.Debug("event exported",
			zap.String("queue", queue),
			zap.String("event_type", string(event.Type)),
			zap.String("message_id", id))
		return nil
	}
}
