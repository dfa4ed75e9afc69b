package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/timeclock/internal/api/dto"
	"github.com/spec-kit/timeclock/internal/auth"
	"github.com/spec-kit/timeclock/internal/service"
	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

// MessagesHandler exposes the caller's inbox.
type MessagesHandler struct {
	messages *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messageService}
}

// Send POST /messages.
func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.messages.Send(c.UserContext(), caller.Username, service.SendMessageInput{
		Receiver: req.Receiver,
		Subject:  req.Subject,
		Body:     req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

// Inbox GET /messages.
func (h *MessagesHandler) Inbox(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	msgs, err := h.messages.Inbox(c.UserContext(), caller.Username)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Read GET /messages/:id.
func (h *MessagesHandler) Read(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	msg, err := h.messages.Read(c.UserContext(), caller.Username, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": messageResponse(msg)})
}

// Delete DELETE /messages/:id.
func (h *MessagesHandler) Delete(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.messages.Delete(c.UserContext(), caller.Username, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Restore POST /messages/:id/restore.
func (h *MessagesHandler) Restore(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.messages.Undo(c.UserContext(), caller.Username, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
