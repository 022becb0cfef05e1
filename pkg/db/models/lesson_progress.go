package models

import (
	"time"

	"github.com/google/uuid"
)

// LessonProgress is one keyed progress row per (enrollment, lesson). The
// unique index makes progress writes idempotent upserts.
type LessonProgress struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EnrollmentID        uuid.UUID  `gorm:"column:enrollment_id;type:uuid;not null;uniqueIndex:idx_lesson_progress_enrollment_lesson,priority:1" json:"enrollmentId"`
	LessonID            uuid.UUID  `gorm:"column:lesson_id;type:uuid;not null;uniqueIndex:idx_lesson_progress_enrollment_lesson,priority:2" json:"lessonId"`
	Completed           bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	CompletedAt         *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
	WatchTimeSeconds    int        `gorm:"column:watch_time_seconds;not null;default:0" json:"watchTime"`
	LastPositionSeconds int        `gorm:"column:last_position_seconds;not null;default:0" json:"lastPosition"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }
