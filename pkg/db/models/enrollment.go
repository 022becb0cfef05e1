package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// UniqueActiveEnrollmentConstraint names the partial unique index that
// guarantees at most one PENDENTE or APROVADO enrollment per (user, course).
// The index itself is created in migrations because GORM tags cannot express
// a partial index.
const UniqueActiveEnrollmentConstraint = "idx_enrollments_user_course_active"

// Enrollment is the lifecycle record tying a user to a course.
type Enrollment struct {
	ID                  uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID              uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index:idx_enrollments_user_status" json:"userId"`
	CourseID            uuid.UUID              `gorm:"column:course_id;type:uuid;not null;index:idx_enrollments_course_status" json:"courseId"`
	Status              enums.EnrollmentStatus `gorm:"column:status;type:enrollment_status;not null;default:'PENDENTE';index:idx_enrollments_user_status;index:idx_enrollments_course_status" json:"status"`
	ProofURL            string                 `gorm:"column:proof_url;not null" json:"proofUrl"`
	ProofPublicID       *string                `gorm:"column:proof_public_id" json:"proofPublicId,omitempty"`
	PaymentMethod       enums.PaymentMethod    `gorm:"column:payment_method;type:payment_method;not null" json:"paymentMethod"`
	PaymentDetails      *types.PaymentDetails  `gorm:"column:payment_details;type:jsonb" json:"paymentDetails,omitempty"`
	Observations        string                 `gorm:"column:observations;not null;default:''" json:"observations"`
	AdminNotes          string                 `gorm:"column:admin_notes;not null;default:''" json:"adminNotes"`
	ApprovedBy          *uuid.UUID             `gorm:"column:approved_by;type:uuid" json:"approvedBy,omitempty"`
	ApprovedAt          *time.Time             `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	RejectedBy          *uuid.UUID             `gorm:"column:rejected_by;type:uuid" json:"rejectedBy,omitempty"`
	RejectedAt          *time.Time             `gorm:"column:rejected_at" json:"rejectedAt,omitempty"`
	RejectionReason     string                 `gorm:"column:rejection_reason;not null;default:''" json:"rejectionReason,omitempty"`
	OverallProgress     int                    `gorm:"column:overall_progress;not null;default:0" json:"overallProgress"`
	StartedAt           *time.Time             `gorm:"column:started_at" json:"startedAt,omitempty"`
	CompletedAt         *time.Time             `gorm:"column:completed_at" json:"completedAt,omitempty"`
	CertificateIssuedAt *time.Time             `gorm:"column:certificate_issued_at" json:"certificateIssuedAt,omitempty"`
	CertificateURL      *string                `gorm:"column:certificate_url" json:"certificateUrl,omitempty"`
	ExpiresAt           *time.Time             `gorm:"column:expires_at" json:"expiresAt,omitempty"`
	User                *User                  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course              *Course                `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Progress            []LessonProgress       `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"progress,omitempty"`
	CreatedAt           time.Time              `gorm:"column:created_at;autoCreateTime;index:idx_enrollments_created_at,sort:desc" json:"createdAt"`
	UpdatedAt           time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
