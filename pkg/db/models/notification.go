package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID        uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID                  `gorm:"column:user_id;type:uuid;not null;index:idx_notifications_user_read" json:"userId"`
	Type      enums.NotificationType     `gorm:"column:type;type:notification_type;not null" json:"type"`
	Title     types.Bilingual            `gorm:"column:title;type:jsonb;not null" json:"title"`
	Message   types.Bilingual            `gorm:"column:message;type:jsonb;not null" json:"message"`
	Read      bool                       `gorm:"column:read;not null;default:false;index:idx_notifications_user_read" json:"read"`
	ReadAt    *time.Time                 `gorm:"column:read_at" json:"readAt,omitempty"`
	Data      *types.NotificationData    `gorm:"column:data;type:jsonb;serializer:json" json:"data,omitempty"`
	Priority  enums.NotificationPriority `gorm:"column:priority;type:notification_priority;not null;default:'normal'" json:"priority"`
	ExpiresAt *time.Time                 `gorm:"column:expires_at;index" json:"expiresAt,omitempty"`
	CreatedAt time.Time                  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time                  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
