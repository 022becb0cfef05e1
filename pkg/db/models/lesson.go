package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// Lesson is a single unit of content inside a module. Materials are stored
// inline as a JSONB array rather than as child rows.
type Lesson struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ModuleID    uuid.UUID          `gorm:"column:module_id;type:uuid;not null;uniqueIndex:idx_lessons_module_position,priority:1" json:"moduleId"`
	Title       types.Bilingual    `gorm:"column:title;type:jsonb;not null" json:"title"`
	Description types.Bilingual    `gorm:"column:description;type:jsonb" json:"description"`
	Position    int                `gorm:"column:position;not null;uniqueIndex:idx_lessons_module_position,priority:2" json:"order"`
	Materials   types.MaterialList `gorm:"column:materials;type:jsonb;serializer:json;not null;default:'[]'" json:"materials"`
	Duration    types.Duration     `gorm:"column:duration;type:jsonb;serializer:json" json:"duration"`
	IsFree      bool               `gorm:"column:is_free;not null;default:false" json:"isFree"`
	IsPublished bool               `gorm:"column:is_published;not null;default:true" json:"isPublished"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
