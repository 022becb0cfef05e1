package auth

import (
	"github.com/edsonmucavele/engacademy-backend/internal/users"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
)

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	Name     string         `json:"name" validate:"required,min=2"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Phone    *string        `json:"phone,omitempty"`
	Language enums.Language `json:"language,omitempty"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token being exchanged.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	User         *users.UserDTO `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresIn    int            `json:"expiresIn"`
}

// RequestMeta captures client details for the audit trail.
type RequestMeta struct {
	IP        *string
	UserAgent *string
}
