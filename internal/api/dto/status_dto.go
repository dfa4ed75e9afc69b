package dto

import "github.com/spec-kit/timeclock/internal/domain"

// StatusRequest carries the optional job-site location.
type StatusRequest struct {
	Location string `json:"location"`
}

// StatusBoardResponse lists usernames per status.
type StatusBoardResponse struct {
	ClockedIn    []string `json:"clocked_in"`
	OnBreak      []string `json:"on_break"`
	WorkFromHome []string `json:"work_from_home"`
	JobSite      []string `json:"job_site"`
	ClockedOut   []string `json:"clocked_out"`
}

// LiveHoursResponse is one row of the current-hours view.
type LiveHoursResponse struct {
	Username   string        `json:"username"`
	Status     domain.Status `json:"status"`
	WorkHours  float64       `json:"work_hours"`
	BreakHours float64       `json:"break_hours"`
}

// DayResponse is one weekday of a weekly timesheet.
type DayResponse struct {
	Date       string  `json:"date"`
	Weekday    string  `json:"weekday"`
	WorkHours  float64 `json:"work_hours"`
	BreakHours float64 `json:"break_hours"`
}

// WeeklyTimesheetResponse is Monday to Friday for one user.
type WeeklyTimesheetResponse struct {
	Username string        `json:"username"`
	Days     []DayResponse `json:"days"`
}
