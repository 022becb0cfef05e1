package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// EnrollmentCreatedEvent signals a new pending enrollment awaiting review.
type EnrollmentCreatedEvent struct {
	EnrollmentID  uuid.UUID           `json:"enrollmentId"`
	UserID        uuid.UUID           `json:"userId"`
	CourseID      uuid.UUID           `json:"courseId"`
	CourseTitle   types.Bilingual     `json:"courseTitle"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
}

// EnrollmentApprovedEvent is emitted when an admin approves an enrollment.
type EnrollmentApprovedEvent struct {
	EnrollmentID uuid.UUID       `json:"enrollmentId"`
	UserID       uuid.UUID       `json:"userId"`
	CourseID     uuid.UUID       `json:"courseId"`
	CourseTitle  types.Bilingual `json:"courseTitle"`
	ApprovedBy   uuid.UUID       `json:"approvedBy"`
	ApprovedAt   time.Time       `json:"approvedAt"`
}

// EnrollmentRejectedEvent is emitted when an admin rejects an enrollment.
type EnrollmentRejectedEvent struct {
	EnrollmentID uuid.UUID       `json:"enrollmentId"`
	UserID       uuid.UUID       `json:"userId"`
	CourseID     uuid.UUID       `json:"courseId"`
	CourseTitle  types.Bilingual `json:"courseTitle"`
	RejectedBy   uuid.UUID       `json:"rejectedBy"`
	RejectedAt   time.Time       `json:"rejectedAt"`
	Reason       string          `json:"reason,omitempty"`
}

// CourseCompletedEvent fires once when an enrollment reaches 100 percent.
type CourseCompletedEvent struct {
	EnrollmentID uuid.UUID       `json:"enrollmentId"`
	UserID       uuid.UUID       `json:"userId"`
	CourseID     uuid.UUID       `json:"courseId"`
	CourseTitle  types.Bilingual `json:"courseTitle"`
	CompletedAt  time.Time       `json:"completedAt"`
}

// MaterialAddedEvent tells enrolled students about new lesson content.
type MaterialAddedEvent struct {
	CourseID    uuid.UUID       `json:"courseId"`
	LessonID    uuid.UUID       `json:"lessonId"`
	MaterialID  uuid.UUID       `json:"materialId"`
	CourseTitle types.Bilingual `json:"courseTitle"`
	LessonTitle types.Bilingual `json:"lessonTitle"`
}
