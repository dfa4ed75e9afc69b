package tracker

import (
	"time"

	"github.com/spec-kit/timeclock/internal/domain"
)

// DateLayout formats calendar dates in timesheet output.
const DateLayout = "2006-01-02"

const workWeekDays = 5

// WorkWeek returns Monday through Friday of the ISO week containing now,
// each truncated to midnight in now's location.
func WorkWeek(now time.Time) []time.Time {
	today := DateOf(now)
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)

	days := make([]time.Time, workWeekDays)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// Aggregate folds entries into one summary per day of week. Entries on the
// same date are summed; days without entries stay at zero.
func Aggregate(username string, week []time.Time, entries []domain.TimesheetEntry) domain.WeeklyTimesheet {
	type totals struct{ work, brk float64 }
	byDay := make(map[string]totals, len(week))
	for _, e := range entries {
		if e.Username != username {
			continue
		}
		key := e.Date.Format(DateLayout)
		t := byDay[key]
		t.work += e.WorkHours
		t.brk += e.BreakHours
		byDay[key] = t
	}

	out := domain.WeeklyTimesheet{Username: username, Days: make([]domain.DaySummary, 0, len(week))}
	for _, day := range week {
		t := byDay[day.Format(DateLayout)]
		out.Days = append(out.Days, domain.DaySummary{
			Date:       day,
			WorkHours:  Round2(t.work),
			BreakHours: Round2(t.brk),
		})
	}
	return out
}
