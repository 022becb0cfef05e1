package enrollments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/internal/audit"
	dbpkg "github.com/edsonmucavele/engacademy-backend/pkg/db"
	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/payloads"
	"github.com/edsonmucavele/engacademy-backend/pkg/pagination"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// Actor identifies the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service owns the enrollment lifecycle and per-lesson progress tracking.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*models.Enrollment, error)
	Approve(ctx context.Context, reviewer Actor, enrollmentID uuid.UUID, adminNotes string) (*models.Enrollment, error)
	Reject(ctx context.Context, reviewer Actor, enrollmentID uuid.UUID, reason, adminNotes string) (*models.Enrollment, error)
	Cancel(ctx context.Context, requester Actor, enrollmentID uuid.UUID) (*models.Enrollment, error)
	RecordProgress(ctx context.Context, actor Actor, courseID uuid.UUID, input ProgressInput) (*models.Enrollment, error)
	Get(ctx context.Context, requester Actor, enrollmentID uuid.UUID) (*models.Enrollment, error)
	ListMine(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error)
	ListAll(ctx context.Context, params ListParams) (*ListResult, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// courseCatalog is the slice of the catalog the lifecycle needs: existence
// and published checks, live lesson counts and the denormalized
// enrollmentCount write-back.
type courseCatalog interface {
	FindCourseByID(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error)
	CountLessonsByCourse(ctx context.Context, courseID uuid.UUID, publishedOnly bool) (int64, error)
	ListLessonIDsByCourse(ctx context.Context, courseID uuid.UUID, publishedOnly bool) ([]uuid.UUID, error)
	UpdateEnrollmentCount(ctx context.Context, id uuid.UUID, count int) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

const defaultPendingDays = 10

// ServiceParams bundles the dependencies for NewService. PendingDays is
// the payment-review window; zero falls back to the default.
type ServiceParams struct {
	DB          txRunner
	Repo        Repository
	Catalog     courseCatalog
	Outbox      eventEmitter
	Audit       audit.Recorder
	Logg        *logger.Logger
	PendingDays int
}

type service struct {
	db          txRunner
	repo        Repository
	catalog     courseCatalog
	outbox      eventEmitter
	audit       audit.Recorder
	logg        *logger.Logger
	pendingDays int
	now         func() time.Time
}

// NewService validates dependencies and builds the enrollments service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "enrollments: db client is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "enrollments: repository is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "enrollments: catalog reader is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "enrollments: outbox service is required")
	}
	if params.Audit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "enrollments: audit recorder is required")
	}
	if params.Logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "enrollments: logger is required")
	}
	pendingDays := params.PendingDays
	if pendingDays <= 0 {
		pendingDays = defaultPendingDays
	}
	return &service{
		db:          params.DB,
		repo:        params.Repo,
		catalog:     params.Catalog,
		outbox:      params.Outbox,
		audit:       params.Audit,
		logg:        params.Logg,
		pendingDays: pendingDays,
		now:         time.Now,
	}, nil
}

// CreateInput carries a new pre-registration with its payment proof.
type CreateInput struct {
	CourseID       uuid.UUID
	ProofURL       string
	ProofPublicID  *string
	PaymentMethod  string
	PaymentDetails *types.PaymentDetails
	Observations   string
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*models.Enrollment, error) {
	if input.CourseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courseId is required")
	}
	if strings.TrimSpace(input.ProofURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proofUrl is required")
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	course, err := s.catalog.FindCourseByID(ctx, input.CourseID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find course")
	}
	if !course.Published {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "course is not open for enrollment")
	}

	expiresAt := s.now().UTC().AddDate(0, 0, s.pendingDays)
	enrollment := &models.Enrollment{
		ID:             uuid.New(),
		UserID:         actor.UserID,
		CourseID:       course.ID,
		Status:         enums.EnrollmentStatusPendente,
		ProofURL:       input.ProofURL,
		ProofPublicID:  input.ProofPublicID,
		PaymentMethod:  method,
		PaymentDetails: input.PaymentDetails,
		Observations:   input.Observations,
		ExpiresAt:      &expiresAt,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, enrollment); err != nil {
			if dbpkg.IsUniqueViolation(err, models.UniqueActiveEnrollmentConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "an active enrollment already exists for this course")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert enrollment")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEnrollmentCreated,
			AggregateType: enums.AggregateEnrollment,
			AggregateID:   enrollment.ID,
			Actor:         actorRef(actor),
			Data: payloads.EnrollmentCreatedEvent{
				EnrollmentID:  enrollment.ID,
				UserID:        enrollment.UserID,
				CourseID:      course.ID,
				CourseTitle:   course.Title,
				PaymentMethod: method,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, audit.Entry{
		Action:      enums.AuditActionEnrollmentCreate,
		Description: fmt.Sprintf("enrollment created for course %q", course.Title.PT),
		TargetType:  targetRef(enums.AuditTargetEnrollment),
		TargetID:    &enrollment.ID,
		NewData:     enrollment,
	})
	return enrollment, nil
}

func (s *service) Approve(ctx context.Context, reviewer Actor, enrollmentID uuid.UUID, adminNotes string) (*models.Enrollment, error) {
	if !reviewer.Role.Satisfies(enums.UserRoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	enrollment, course, err := s.loadForReview(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != enums.EnrollmentStatusPendente {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "enrollment is not pending")
	}

	now := s.now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).Update(ctx, enrollmentID, map[string]any{
			"status":      enums.EnrollmentStatusAprovado,
			"approved_by": reviewer.UserID,
			"approved_at": now,
			"started_at":  now,
			"admin_notes": adminNotes,
			"expires_at":  nil,
			"updated_at":  now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: approve enrollment")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "enrollment not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEnrollmentApproved,
			AggregateType: enums.AggregateEnrollment,
			AggregateID:   enrollmentID,
			Actor:         actorRef(reviewer),
			Data: payloads.EnrollmentApprovedEvent{
				EnrollmentID: enrollmentID,
				UserID:       enrollment.UserID,
				CourseID:     enrollment.CourseID,
				CourseTitle:  course.Title,
				ApprovedBy:   reviewer.UserID,
				ApprovedAt:   now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	enrollment.Status = enums.EnrollmentStatusAprovado
	enrollment.ApprovedBy = &reviewer.UserID
	enrollment.ApprovedAt = &now
	enrollment.StartedAt = &now
	enrollment.AdminNotes = adminNotes

	s.refreshEnrollmentCount(ctx, enrollment.CourseID)
	s.recordAudit(ctx, reviewer, audit.Entry{
		Action:      enums.AuditActionEnrollmentApprove,
		Description: fmt.Sprintf("enrollment approved for course %q", course.Title.PT),
		TargetType:  targetRef(enums.AuditTargetEnrollment),
		TargetID:    &enrollmentID,
	})
	return enrollment, nil
}

func (s *service) Reject(ctx context.Context, reviewer Actor, enrollmentID uuid.UUID, reason, adminNotes string) (*models.Enrollment, error) {
	if !reviewer.Role.Satisfies(enums.UserRoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	enrollment, course, err := s.loadForReview(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != enums.EnrollmentStatusPendente {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "enrollment is not pending")
	}

	now := s.now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).Update(ctx, enrollmentID, map[string]any{
			"status":           enums.EnrollmentStatusRejeitado,
			"rejected_by":      reviewer.UserID,
			"rejected_at":      now,
			"rejection_reason": reason,
			"admin_notes":      adminNotes,
			"updated_at":       now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reject enrollment")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "enrollment not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEnrollmentRejected,
			AggregateType: enums.AggregateEnrollment,
			AggregateID:   enrollmentID,
			Actor:         actorRef(reviewer),
			Data: payloads.EnrollmentRejectedEvent{
				EnrollmentID: enrollmentID,
				UserID:       enrollment.UserID,
				CourseID:     enrollment.CourseID,
				CourseTitle:  course.Title,
				RejectedBy:   reviewer.UserID,
				RejectedAt:   now,
				Reason:       reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	enrollment.Status = enums.EnrollmentStatusRejeitado
	enrollment.RejectedBy = &reviewer.UserID
	enrollment.RejectedAt = &now
	enrollment.RejectionReason = reason
	enrollment.AdminNotes = adminNotes

	s.recordAudit(ctx, reviewer, audit.Entry{
		Action:      enums.AuditActionEnrollmentReject,
		Description: fmt.Sprintf("enrollment rejected for course %q", course.Title.PT),
		TargetType:  targetRef(enums.AuditTargetEnrollment),
		TargetID:    &enrollmentID,
	})
	return enrollment, nil
}

func (s *service) Cancel(ctx context.Context, requester Actor, enrollmentID uuid.UUID) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID, false)
	if err != nil {
		return nil, enrollmentLookupError(err)
	}
	if enrollment.UserID != requester.UserID && !requester.Role.Satisfies(enums.UserRoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	if enrollment.Status != enums.EnrollmentStatusPendente && enrollment.Status != enums.EnrollmentStatusAprovado {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "enrollment cannot be cancelled")
	}
	wasApproved := enrollment.Status == enums.EnrollmentStatusAprovado

	now := s.now().UTC()
	affected, err := s.repo.Update(ctx, enrollmentID, map[string]any{
		"status":     enums.EnrollmentStatusCancelado,
		"updated_at": now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: cancel enrollment")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "enrollment not found")
	}
	enrollment.Status = enums.EnrollmentStatusCancelado

	if wasApproved {
		s.refreshEnrollmentCount(ctx, enrollment.CourseID)
	}
	s.recordAudit(ctx, requester, audit.Entry{
		Action:      enums.AuditActionEnrollmentCancel,
		Description: "enrollment cancelled",
		TargetType:  targetRef(enums.AuditTargetEnrollment),
		TargetID:    &enrollmentID,
	})
	return enrollment, nil
}

// ProgressInput is a partial progress write. Nil fields keep their stored
// value.
type ProgressInput struct {
	LessonID            uuid.UUID
	Completed           *bool
	WatchTimeSeconds    *int
	LastPositionSeconds *int
}

func (s *service) RecordProgress(ctx context.Context, actor Actor, courseID uuid.UUID, input ProgressInput) (*models.Enrollment, error) {
	if input.LessonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lessonId is required")
	}
	if input.WatchTimeSeconds != nil && *input.WatchTimeSeconds < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "watchTime cannot be negative")
	}
	if input.LastPositionSeconds != nil && *input.LastPositionSeconds < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lastPosition cannot be negative")
	}

	enrollment, err := s.repo.FindApprovedByUserCourse(ctx, actor.UserID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "enrollment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find enrollment")
	}

	lessonIDs, err := s.catalog.ListLessonIDsByCourse(ctx, courseID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list course lessons")
	}
	if !containsID(lessonIDs, input.LessonID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lesson not found in course")
	}

	now := s.now().UTC()
	progress, err := s.repo.FindProgress(ctx, enrollment.ID, input.LessonID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find progress")
		}
		progress = &models.LessonProgress{
			ID:           uuid.New(),
			EnrollmentID: enrollment.ID,
			LessonID:     input.LessonID,
		}
	}
	if input.Completed != nil {
		if *input.Completed && !progress.Completed {
			progress.CompletedAt = &now
		}
		progress.Completed = *input.Completed
	}
	if input.WatchTimeSeconds != nil {
		progress.WatchTimeSeconds = *input.WatchTimeSeconds
	}
	if input.LastPositionSeconds != nil {
		progress.LastPositionSeconds = *input.LastPositionSeconds
	}
	if err := s.repo.SaveProgress(ctx, progress); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save progress")
	}

	total, err := s.catalog.CountLessonsByCourse(ctx, courseID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count lessons")
	}
	completed, err := s.repo.CountCompletedLessons(ctx, enrollment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count completed lessons")
	}

	overall := 0
	if total > 0 {
		overall = int(math.Round(float64(completed) / float64(total) * 100))
	}
	updates := map[string]any{
		"overall_progress": overall,
		"updated_at":       now,
	}
	// completedAt is set once and never cleared, even if new lessons later
	// drop the percentage below 100.
	justCompleted := overall == 100 && total > 0 && enrollment.CompletedAt == nil
	if justCompleted {
		updates["completed_at"] = now
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Update(ctx, enrollment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update enrollment progress")
		}
		if !justCompleted {
			return nil
		}
		course, err := s.catalog.FindCourseByID(ctx, courseID, false)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find course")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCourseCompleted,
			AggregateType: enums.AggregateEnrollment,
			AggregateID:   enrollment.ID,
			Actor:         actorRef(actor),
			Data: payloads.CourseCompletedEvent{
				EnrollmentID: enrollment.ID,
				UserID:       enrollment.UserID,
				CourseID:     courseID,
				CourseTitle:  course.Title,
				CompletedAt:  now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	enrollment.OverallProgress = overall
	if justCompleted {
		enrollment.CompletedAt = &now
	}
	return enrollment, nil
}

func (s *service) Get(ctx context.Context, requester Actor, enrollmentID uuid.UUID) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID, true)
	if err != nil {
		return nil, enrollmentLookupError(err)
	}
	if enrollment.UserID != requester.UserID && !requester.Role.Satisfies(enums.UserRoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	return enrollment, nil
}

// ListParams filters enrollment listings.
type ListParams struct {
	Page     pagination.Params
	Status   *string
	CourseID *uuid.UUID
}

// ListResult is one page of enrollments.
type ListResult struct {
	Items      []models.Enrollment `json:"items"`
	Pagination pagination.Result   `json:"pagination"`
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.list(ctx, params, &userID)
}

func (s *service) ListAll(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, params, nil)
}

func (s *service) list(ctx context.Context, params ListParams, userID *uuid.UUID) (*ListResult, error) {
	page := params.Page.Normalize()
	repoParams := listEnrollmentsParams{
		Offset:   page.Offset(),
		Limit:    page.Limit,
		UserID:   userID,
		CourseID: params.CourseID,
	}
	if params.Status != nil && *params.Status != "" {
		status, err := enums.ParseEnrollmentStatus(*params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		repoParams.Status = &status
	}

	enrollments, total, err := s.repo.List(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list enrollments")
	}
	return &ListResult{
		Items:      enrollments,
		Pagination: pagination.NewResult(page, total),
	}, nil
}

func (s *service) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	expired, err := s.repo.ExpireOverdue(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: expire enrollments")
	}
	return expired, nil
}

func (s *service) loadForReview(ctx context.Context, enrollmentID uuid.UUID) (*models.Enrollment, *models.Course, error) {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID, false)
	if err != nil {
		return nil, nil, enrollmentLookupError(err)
	}
	course, err := s.catalog.FindCourseByID(ctx, enrollment.CourseID, false)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find course")
	}
	return enrollment, course, nil
}

// refreshEnrollmentCount keeps Course.enrollmentCount in sync after a
// transition. A failed recount never fails the transition itself.
func (s *service) refreshEnrollmentCount(ctx context.Context, courseID uuid.UUID) {
	count, err := s.repo.CountApprovedByCourse(ctx, courseID)
	if err != nil {
		s.logg.Error(ctx, "enrollments: recount failed", err)
		return
	}
	if err := s.catalog.UpdateEnrollmentCount(ctx, courseID, int(count)); err != nil {
		s.logg.Error(ctx, "enrollments: enrollment count write-back failed", err)
	}
}

func (s *service) recordAudit(ctx context.Context, actor Actor, entry audit.Entry) {
	if actor.UserID != uuid.Nil {
		userID := actor.UserID
		entry.UserID = &userID
	}
	s.audit.Record(ctx, entry)
}

func actorRef(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}

func targetRef(target enums.AuditTargetType) *enums.AuditTargetType {
	return &target
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func enrollmentLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "enrollment not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find enrollment")
}
