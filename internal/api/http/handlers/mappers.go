package handlers

import (
	"github.com/spec-kit/timeclock/internal/api/dto"
	"github.com/spec-kit/timeclock/internal/domain"
	"github.com/spec-kit/timeclock/internal/presence"
	"github.com/spec-kit/timeclock/internal/tracker"
)

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		Username:        u.Username,
		Email:           u.Email,
		RoomCode:        u.RoomCode,
		Desk:            u.Desk,
		Avatar:          u.Avatar,
		Role:            u.Role,
		Status:          u.Status,
		JobSiteLocation: u.JobSiteLocation,
		WorkHours:       tracker.Round2(u.WorkHours),
		BreakHours:      tracker.Round2(u.BreakHours),
		LastClockIn:     u.LastClockIn,
		LastBreakStart:  u.LastBreakStart,
		LastBreakEnd:    u.LastBreakEnd,
		LastClockOut:    u.LastClockOut,
		CreatedAt:       u.CreatedAt,
	}
}

func statusBoardResponse(board presence.Board) dto.StatusBoardResponse {
	names := func(s domain.Status) []string {
		if v := board[s]; v != nil {
			return v
		}
		return []string{}
	}
	return dto.StatusBoardResponse{
		ClockedIn:    names(domain.StatusClockedIn),
		OnBreak:      names(domain.StatusBreak),
		WorkFromHome: names(domain.StatusWorkFromHome),
		JobSite:      names(domain.StatusJobSite),
		ClockedOut:   names(domain.StatusClockedOut),
	}
}

func weeklyResponse(w domain.WeeklyTimesheet) dto.WeeklyTimesheetResponse {
	days := make([]dto.DayResponse, 0, len(w.Days))
	for _, d := range w.Days {
		days = append(days, dto.DayResponse{
			Date:       d.Date.Format(tracker.DateLayout),
			Weekday:    d.Date.Weekday().String(),
			WorkHours:  d.WorkHours,
			BreakHours: d.BreakHours,
		})
	}
	return dto.WeeklyTimesheetResponse{Username: w.Username, Days: days}
}

func messageResponse(m *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        m.ID,
		Sender:    m.Sender,
		Receiver:  m.Receiver,
		Subject:   m.Subject,
		Message:   m.Body,
		Timestamp: m.Timestamp,
		IsRead:    m.IsRead,
	}
}
