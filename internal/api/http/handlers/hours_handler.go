package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/timeclock/internal/api/dto"
	"github.com/spec-kit/timeclock/internal/service"
)

// HoursHandler exposes live hours and weekly timesheets.
type HoursHandler struct {
	hours *service.HoursService
}

// NewHoursHandler constructs handler.
func NewHoursHandler(hoursService *service.HoursService) *HoursHandler {
	return &HoursHandler{hours: hoursService}
}

// Current handles GET /hours/current.
func (h *HoursHandler) Current(c *fiber.Ctx) error {
	live, err := h.hours.Current(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.LiveHoursResponse, 0, len(live))
	for _, l := range live {
		items = append(items, dto.LiveHoursResponse{
			Username:   l.Username,
			Status:     l.Status,
			WorkHours:  l.WorkHours,
			BreakHours: l.BreakHours,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// WeeklyAll handles GET /timesheets/weekly.
func (h *HoursHandler) WeeklyAll(c *fiber.Ctx) error {
	sheets, err := h.hours.WeeklyAll(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.WeeklyTimesheetResponse, 0, len(sheets))
	for _, s := range sheets {
		items = append(items, weeklyResponse(s))
	}
	return c.JSON(fiber.Map{"data": items})
}

// WeeklyForUser handles GET /timesheets/weekly/:username.
func (h *HoursHandler) WeeklyForUser(c *fiber.Ctx) error {
	sheet, err := h.hours.WeeklyForUser(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": weeklyResponse(*sheet)})
}
