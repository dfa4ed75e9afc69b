package events

import (
	"time"

	"github.com/spec-kit/timeclock/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStatusChanged     EventType = "status_changed"
	EventTimesheetRecorded EventType = "timesheet_recorded"
	EventMessageSent       EventType = "message_sent"
	EventUserDeleted       EventType = "user_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Username  string      `json:"username"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus       domain.Status `json:"old_status"`
	NewStatus       domain.Status `json:"new_status"`
	JobSiteLocation *string       `json:"job_site_location,omitempty"`
	WorkHours       float64       `json:"work_hours"`
	BreakHours      float64       `json:"break_hours"`
}

// TimesheetRecordedPayload payload.
type TimesheetRecordedPayload struct {
	EntryID    int64   `json:"entry_id"`
	Date       string  `json:"date"`
	WorkHours  float64 `json:"work_hours"`
	BreakHours float64 `json:"break_hours"`
}

// MessageSentPayload payload.
type MessageSentPayload struct {
	MessageID string  `json:"message_id"`
	Receiver  string  `json:"receiver"`
	Subject   *string `json:"subject,omitempty"`
	Preview   string  `json:"preview"`
}
