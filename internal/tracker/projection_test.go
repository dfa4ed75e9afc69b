package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/timeclock/internal/domain"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name      string
		user      domain.User
		now       time.Time
		wantWork  float64
		wantBreak float64
	}{
		{
			name:     "open work segment is added",
			user:     domain.User{Status: domain.StatusClockedIn, WorkHours: 1.5, LastClockIn: ptr(t0)},
			now:      at(100 * time.Minute),
			wantWork: 3.17,
		},
		{
			name:      "open break segment is added",
			user:      domain.User{Status: domain.StatusBreak, WorkHours: 2, BreakHours: 0.25, LastBreakStart: ptr(t0)},
			now:       at(15 * time.Minute),
			wantWork:  2,
			wantBreak: 0.5,
		},
		{
			name:     "job site counts as work",
			user:     domain.User{Status: domain.StatusJobSite, LastClockIn: ptr(t0)},
			now:      at(time.Hour),
			wantWork: 1,
		},
		{
			name:      "clocked out adds nothing",
			user:      domain.User{Status: domain.StatusClockedOut, WorkHours: 0.333, LastClockIn: ptr(t0)},
			now:       at(time.Hour),
			wantWork:  0.33,
			wantBreak: 0,
		},
		{
			name:     "future stamp adds nothing",
			user:     domain.User{Status: domain.StatusClockedIn, WorkHours: 1, LastClockIn: ptr(at(time.Hour))},
			now:      t0,
			wantWork: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Project(tc.user, tc.now)
			assert.Equal(t, tc.wantWork, got.WorkHours)
			assert.Equal(t, tc.wantBreak, got.BreakHours)
			assert.Equal(t, tc.user.Status, got.Status)
		})
	}
}

func TestProject_MatchesClockOut(t *testing.T) {
	u := domain.User{Status: domain.StatusClockedIn, WorkHours: 1, BreakHours: 0.5, LastClockIn: ptr(t0)}
	now := at(2*time.Hour + 30*time.Minute)

	live := Project(u, now)
	out := Apply(u, domain.StatusClockedOut, "", now)

	assert.Equal(t, Round2(out.Entry.WorkHours), live.WorkHours)
	assert.Equal(t, Round2(out.Entry.BreakHours), live.BreakHours)
}

func TestProject_DoesNotMutate(t *testing.T) {
	u := domain.User{Status: domain.StatusClockedIn, WorkHours: 1, LastClockIn: ptr(t0)}
	_ = Project(u, at(time.Hour))
	assert.Equal(t, 1.0, u.WorkHours)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.235000001))
	assert.Equal(t, 0.0, Round2(0.004))
}
