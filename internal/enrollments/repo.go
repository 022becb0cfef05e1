package enrollments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
)

// Repository exposes persistence for enrollments and their progress rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID, withRelations bool) (*models.Enrollment, error)
	FindApprovedByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	List(ctx context.Context, params listEnrollmentsParams) ([]models.Enrollment, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	CountApprovedByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
	ApprovedUserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)

	FindProgress(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*models.LessonProgress, error)
	SaveProgress(ctx context.Context, progress *models.LessonProgress) error
	CountCompletedLessons(ctx context.Context, enrollmentID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an enrollments repository bound to the provided
// database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listEnrollmentsParams struct {
	Offset   int
	Limit    int
	UserID   *uuid.UUID
	CourseID *uuid.UUID
	Status   *enums.EnrollmentStatus
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID, withRelations bool) (*models.Enrollment, error) {
	query := r.db.WithContext(ctx)
	if withRelations {
		query = query.Preload("User").Preload("Course").Preload("Progress")
	}
	var enrollment models.Enrollment
	if err := query.First(&enrollment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *repositoryImpl) FindApprovedByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, enums.EnrollmentStatusAprovado).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listEnrollmentsParams) ([]models.Enrollment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.CourseID != nil {
		query = query.Where("course_id = ?", *params.CourseID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []models.Enrollment
	if err := query.
		Preload("User").
		Preload("Course").
		Order("created_at DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}
	return enrollments, total, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) CountApprovedByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, enums.EnrollmentStatusAprovado).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ApprovedUserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND status = ?", courseID, enums.EnrollmentStatusAprovado).
		Pluck("user_id", &ids).Error
	return ids, err
}

// ExpireOverdue sweeps only PENDENTE rows. Approved enrollments never
// expire, so Course.enrollmentCount stays untouched by the sweep.
func (r *repositoryImpl) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", enums.EnrollmentStatusPendente, now).
		UpdateColumns(map[string]any{
			"status":     enums.EnrollmentStatusExpirado,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) FindProgress(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*models.LessonProgress, error) {
	var progress models.LessonProgress
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *repositoryImpl) SaveProgress(ctx context.Context, progress *models.LessonProgress) error {
	return r.db.WithContext(ctx).Save(progress).Error
}

func (r *repositoryImpl) CountCompletedLessons(ctx context.Context, enrollmentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LessonProgress{}).
		Where("enrollment_id = ? AND completed = ?", enrollmentID, true).
		Count(&count).Error
	return count, err
}
