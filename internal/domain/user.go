package domain

import (
	"errors"
	"time"
)

// Role grants access to admin-only operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Status is the live clock state of a user.
type Status string

const (
	StatusClockedOut   Status = "clocked-out"
	StatusClockedIn    Status = "clocked-in"
	StatusBreak        Status = "break"
	StatusWorkFromHome Status = "work-from-home"
	StatusJobSite      Status = "job-site"
)

// ErrUnknownStatus is returned by ParseStatus for values outside the known set.
var ErrUnknownStatus = errors.New("unknown status")

// Statuses lists every known status in display order.
var Statuses = []Status{
	StatusClockedIn,
	StatusBreak,
	StatusWorkFromHome,
	StatusJobSite,
	StatusClockedOut,
}

// ParseStatus converts a raw action string into a Status.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", ErrUnknownStatus
}

// Working reports whether time in this status counts as work.
func (s Status) Working() bool {
	switch s {
	case StatusClockedIn, StatusWorkFromHome, StatusJobSite:
		return true
	}
	return false
}

// User is one employee row, including the live clock state.
//
// WorkHours and BreakHours only cover segments already closed today; the
// segment opened by LastClockIn or LastBreakStart is not included.
type User struct {
	Username        string
	PasswordHash    string
	Email           string
	RoomCode        string
	Desk            *string
	Avatar          *string
	Role            Role
	Status          Status
	JobSiteLocation *string
	WorkHours       float64
	BreakHours      float64
	LastClockIn     *time.Time
	LastBreakStart  *time.Time
	LastBreakEnd    *time.Time
	LastClockOut    *time.Time
	CreatedAt       time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
