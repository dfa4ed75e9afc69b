package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/timeclock/internal/api/dto"
	"github.com/spec-kit/timeclock/internal/service"
	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

// StatusHandler exposes clock actions and the status board.
type StatusHandler struct {
	status *service.StatusService
}

// NewStatusHandler constructs handler.
func NewStatusHandler(statusService *service.StatusService) *StatusHandler {
	return &StatusHandler{status: statusService}
}

// SetStatus handles POST /status/:username/:action.
func (h *StatusHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.StatusRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	user, err := h.status.SetStatus(c.UserContext(), c.Params("username"), c.Params("action"), req.Location)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Board handles GET /status.
func (h *StatusHandler) Board(c *fiber.Ctx) error {
	board, err := h.status.StatusBoard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statusBoardResponse(board)})
}
