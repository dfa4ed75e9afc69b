package dto

import (
	"time"

	"github.com/spec-kit/timeclock/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    string  `json:"email"`
	RoomCode string  `json:"room_code"`
	Desk     *string `json:"desk"`
	Avatar   *string `json:"avatar"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RoomCode string `json:"room_code"`
}

// DeskRequest assigns or clears a desk.
type DeskRequest struct {
	Desk string `json:"desk"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	Username        string        `json:"username"`
	Email           string        `json:"email"`
	RoomCode        string        `json:"room_code"`
	Desk            *string       `json:"desk"`
	Avatar          *string       `json:"avatar"`
	Role            domain.Role   `json:"role"`
	Status          domain.Status `json:"status"`
	JobSiteLocation *string       `json:"job_site_location"`
	WorkHours       float64       `json:"work_hours"`
	BreakHours      float64       `json:"break_hours"`
	LastClockIn     *time.Time    `json:"last_clock_in"`
	LastBreakStart  *time.Time    `json:"last_break_start"`
	LastBreakEnd    *time.Time    `json:"last_break_end"`
	LastClockOut    *time.Time    `json:"last_clock_out"`
	CreatedAt       time.Time     `json:"created_at"`
}
