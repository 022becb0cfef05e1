package types

import "github.com/google/uuid"

// NotificationData carries the contextual references a notification links to.
type NotificationData struct {
	CourseID     *uuid.UUID     `json:"courseId,omitempty"`
	EnrollmentID *uuid.UUID     `json:"enrollmentId,omitempty"`
	LessonID     *uuid.UUID     `json:"lessonId,omitempty"`
	Link         *string        `json:"link,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}
