package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string             `gorm:"column:name;not null" json:"name"`
	Email        string             `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string             `gorm:"column:password_hash;not null" json:"-"`
	Phone        *string            `gorm:"column:phone" json:"phone,omitempty"`
	Role         enums.UserRole     `gorm:"column:role;type:user_role;not null;default:'cliente'" json:"role"`
	Avatar       *string            `gorm:"column:avatar" json:"avatar,omitempty"`
	Language     enums.Language     `gorm:"column:language;type:text;not null;default:'pt'" json:"language"`
	Theme        string             `gorm:"column:theme;not null;default:'dark'" json:"theme"`
	Bio          string             `gorm:"column:bio;not null;default:''" json:"bio"`
	Profession   string             `gorm:"column:profession;not null;default:''" json:"profession"`
	Location     *types.Location    `gorm:"column:location;type:jsonb;serializer:json" json:"location,omitempty"`
	SocialLinks  *types.SocialLinks `gorm:"column:social_links;type:jsonb;serializer:json" json:"socialLinks,omitempty"`
	IsActive     bool               `gorm:"column:is_active;not null;default:true" json:"isActive"`
	LastLoginAt  *time.Time         `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
