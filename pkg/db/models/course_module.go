package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// CourseModule groups lessons inside a course. Position is 1-based and
// unique per course.
type CourseModule struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CourseID    uuid.UUID       `gorm:"column:course_id;type:uuid;not null;uniqueIndex:idx_course_modules_course_position,priority:1" json:"courseId"`
	Title       types.Bilingual `gorm:"column:title;type:jsonb;not null" json:"title"`
	Description types.Bilingual `gorm:"column:description;type:jsonb" json:"description"`
	Position    int             `gorm:"column:position;not null;uniqueIndex:idx_course_modules_course_position,priority:2" json:"order"`
	IsPublished bool            `gorm:"column:is_published;not null;default:true" json:"isPublished"`
	Lessons     []Lesson        `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (CourseModule) TableName() string { return "course_modules" }
