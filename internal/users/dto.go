package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// UserDTO is the public profile shape, with credentials stripped.
type UserDTO struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Phone       *string            `json:"phone,omitempty"`
	Role        enums.UserRole     `json:"role"`
	Avatar      *string            `json:"avatar,omitempty"`
	Language    enums.Language     `json:"language"`
	Theme       string             `json:"theme"`
	Bio         string             `json:"bio"`
	Profession  string             `json:"profession"`
	Location    *types.Location    `json:"location,omitempty"`
	SocialLinks *types.SocialLinks `json:"socialLinks,omitempty"`
	IsActive    bool               `json:"isActive"`
	LastLoginAt *time.Time         `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        *string
	Role         enums.UserRole
	Language     enums.Language
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		Avatar:      u.Avatar,
		Language:    u.Language,
		Theme:       u.Theme,
		Bio:         u.Bio,
		Profession:  u.Profession,
		Location:    u.Location,
		SocialLinks: u.SocialLinks,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleCliente
	}
	language := c.Language
	if language == "" {
		language = enums.LanguagePT
	}

	return &models.User{
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Phone:        c.Phone,
		Role:         role,
		Language:     language,
		Theme:        "dark",
		IsActive:     true,
	}
}
