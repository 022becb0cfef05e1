package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
)

// Repository exposes the aggregate queries behind the dashboards.
type Repository interface {
	CountClients(ctx context.Context) (int64, error)
	CountPublishedCourses(ctx context.Context) (int64, error)
	CountEnrollmentsByStatus(ctx context.Context) (map[enums.EnrollmentStatus]int64, error)
	EnrollmentCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error)
	TopCoursesByEnrollment(ctx context.Context, limit int) ([]models.Course, error)
	ApprovedEnrollmentsWithCourse(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a stats repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) CountClients(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", enums.UserRoleCliente).
		Count(&total).Error
	return total, err
}

func (r *repositoryImpl) CountPublishedCourses(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("published = ?", true).
		Count(&total).Error
	return total, err
}

func (r *repositoryImpl) CountEnrollmentsByStatus(ctx context.Context) (map[enums.EnrollmentStatus]int64, error) {
	var rows []struct {
		Status enums.EnrollmentStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.EnrollmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// EnrollmentCreationTimes returns raw creation timestamps; the service
// buckets them per month so the query stays dialect-neutral.
func (r *repositoryImpl) EnrollmentCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &times).Error
	return times, err
}

// TopCoursesByEnrollment ranks published courses on the denormalized
// enrollment counter maintained by the approval flow.
func (r *repositoryImpl) TopCoursesByEnrollment(ctx context.Context, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Where("enrollment_count > 0").
		Order("enrollment_count DESC").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (r *repositoryImpl) ApprovedEnrollmentsWithCourse(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	var rows []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ? AND status = ?", userID, enums.EnrollmentStatusAprovado).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
