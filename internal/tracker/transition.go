// Package tracker holds the clock-status state machine and the pure
// projections built on top of persisted user state.
package tracker

import (
	"time"

	"github.com/spec-kit/timeclock/internal/domain"
)

// Transition is the outcome of applying an action to a user.
// Entry is set only when the action closes the day.
type Transition struct {
	User  domain.User
	Entry *domain.TimesheetEntry
}

// Apply computes the state that results from moving user to action at now.
// The input user is not modified. location is only used for job-site.
func Apply(user domain.User, action domain.Status, location string, now time.Time) Transition {
	next := user
	prev := user.Status
	next.JobSiteLocation = nil

	switch action {
	case domain.StatusClockedIn, domain.StatusJobSite, domain.StatusWorkFromHome:
		switch {
		case prev.Working() && next.LastClockIn != nil:
			// the open work segment carries over to the new status
		case prev == domain.StatusBreak:
			closeBreak(&next, now)
			next.LastClockIn = stamp(now)
		default:
			next.LastClockIn = stamp(now)
		}
		if action == domain.StatusJobSite {
			loc := location
			next.JobSiteLocation = &loc
		}

	case domain.StatusBreak:
		if prev.Working() && next.LastClockIn != nil {
			next.WorkHours += elapsedHours(next.LastClockIn, now)
			next.LastBreakStart = stamp(now)
		}

	case domain.StatusClockedOut:
		switch {
		case prev.Working() && next.LastClockIn != nil:
			next.WorkHours += elapsedHours(next.LastClockIn, now)
		case prev == domain.StatusBreak && next.LastBreakStart != nil:
			next.BreakHours += elapsedHours(next.LastBreakStart, now)
		}
		entry := &domain.TimesheetEntry{
			Username:   next.Username,
			Date:       DateOf(now),
			WorkHours:  next.WorkHours,
			BreakHours: next.BreakHours,
		}
		next.WorkHours = 0
		next.BreakHours = 0
		next.LastBreakStart = nil
		next.LastBreakEnd = nil
		next.LastClockOut = stamp(now)
		next.Status = action
		return Transition{User: next, Entry: entry}
	}

	next.Status = action
	return Transition{User: next}
}

func closeBreak(u *domain.User, now time.Time) {
	if u.LastBreakStart != nil {
		u.BreakHours += elapsedHours(u.LastBreakStart, now)
	}
	u.LastBreakEnd = stamp(now)
}

// elapsedHours returns the hours between start and now. A missing start or
// one later than now contributes nothing.
func elapsedHours(start *time.Time, now time.Time) float64 {
	if start == nil || start.IsZero() || start.After(now) {
		return 0
	}
	return now.Sub(*start).Hours()
}

func stamp(t time.Time) *time.Time {
	return &t
}

// DateOf truncates t to midnight in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
