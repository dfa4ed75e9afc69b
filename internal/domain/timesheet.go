package domain

import "time"

// TimesheetEntry is the immutable record of one clock-out.
type TimesheetEntry struct {
	ID         int64
	Username   string
	Date       time.Time
	WorkHours  float64
	BreakHours float64
	CreatedAt  time.Time
}

// DaySummary holds the hours recorded for a single calendar day.
type DaySummary struct {
	Date       time.Time
	WorkHours  float64
	BreakHours float64
}

// WeeklyTimesheet is one user's Monday to Friday summary.
type WeeklyTimesheet struct {
	Username string
	Days     []DaySummary
}

// LiveHours is the real-time view of a user's accumulators.
type LiveHours struct {
	Username   string
	Status     Status
	WorkHours  float64
	BreakHours float64
}
