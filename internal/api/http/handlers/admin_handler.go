package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/timeclock/internal/api/dto"
	"github.com/spec-kit/timeclock/internal/auth"
	"github.com/spec-kit/timeclock/internal/service"
	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

// AdminHandler exposes account administration.
type AdminHandler struct {
	accounts *service.AccountService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accountService *service.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accountService}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	users, err := h.accounts.ListUsers(c.UserContext(), caller)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteUser DELETE /admin/users/:username.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.accounts.DeleteUser(c.UserContext(), caller, c.Params("username")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
