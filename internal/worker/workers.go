package worker

import (
	"github.com/spec-kit/timeclock/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartPresenceWorker keeps the Redis status sets in step with status events.
func StartPresenceWorker(projector *service.PresenceProjector) {
	if projector == nil {
		return
	}
	projector.RegisterHandlers()
}

// StartExportWorker forwards clock events to the broker when one is configured.
func StartExportWorker(exportService *service.ExportService) {
	if exportService == nil {
		return
	}
	exportService.RegisterHandlers()
}
