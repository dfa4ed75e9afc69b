package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/timeclock/internal/api/dto"
	"github.com/spec-kit/timeclock/internal/auth"
	"github.com/spec-kit/timeclock/internal/service"
	apperrors "github.com/spec-kit/timeclock/pkg/util"
)

// UsersHandler exposes signup, login and profile endpoints.
type UsersHandler struct {
	accounts *service.AccountService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accountService *service.AccountService) *UsersHandler {
	return &UsersHandler{accounts: accountService}
}

// Signup handles POST /auth/signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, err := h.accounts.Signup(c.UserContext(), service.SignupInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		RoomCode: req.RoomCode,
		Desk:     req.Desk,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token.Token, ExpiresAt: token.ExpiresAt},
		},
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, err := h.accounts.Login(c.UserContext(), req.Username, req.Password, req.RoomCode)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token.Token, ExpiresAt: token.ExpiresAt},
		},
	})
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	user, err := h.accounts.Me(c.UserContext(), caller.Username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// AssignDesk handles PUT /users/me/desk.
func (h *UsersHandler) AssignDesk(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.DeskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.accounts.AssignDesk(c.UserContext(), caller.Username, req.Desk)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// UploadAvatar handles PUT /users/me/avatar with a multipart "avatar" file.
func (h *UsersHandler) UploadAvatar(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	header, err := c.FormFile("avatar")
	if err != nil {
		return apperrors.NewValidationError("avatar file required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable avatar file", nil)
	}
	defer file.Close()

	user, err := h.accounts.UploadAvatar(c.UserContext(), caller.Username, service.AvatarUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Avatar handles GET /users/:username/avatar.
func (h *UsersHandler) Avatar(c *fiber.Ctx) error {
	avatar, err := h.accounts.Avatar(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	if avatar.RedirectURL != "" {
		return c.Redirect(avatar.RedirectURL, http.StatusFound)
	}
	defer avatar.Body.Close()
	data, err := io.ReadAll(avatar.Body)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, http.DetectContentType(data))
	return c.Send(data)
}
