package tracker

import (
	"math"
	"time"

	"github.com/spec-kit/timeclock/internal/domain"
)

// Project returns the user's hours as they would be persisted by a clock-out
// at now. Stored state is left untouched.
func Project(u domain.User, now time.Time) domain.LiveHours {
	work, brk := u.WorkHours, u.BreakHours
	switch {
	case u.Status.Working():
		work += elapsedHours(u.LastClockIn, now)
	case u.Status == domain.StatusBreak:
		brk += elapsedHours(u.LastBreakStart, now)
	}
	return domain.LiveHours{
		Username:   u.Username,
		Status:     u.Status,
		WorkHours:  Round2(work),
		BreakHours: Round2(brk),
	}
}

// Round2 rounds v to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
