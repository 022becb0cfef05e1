package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// Repository exposes persistence for courses, modules and lessons.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCourse(ctx context.Context, course *models.Course) error
	FindCourseByID(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error)
	FindCourseBySlug(ctx context.Context, slug string, withContent bool) (*models.Course, error)
	ListCourses(ctx context.Context, params listCoursesParams) ([]models.Course, int64, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) (int64, error)
	UpdateEnrollmentCount(ctx context.Context, id uuid.UUID, count int) error

	CreateModule(ctx context.Context, module *models.CourseModule) error
	FindModuleByID(ctx context.Context, id uuid.UUID) (*models.CourseModule, error)
	ListModules(ctx context.Context, courseID uuid.UUID) ([]models.CourseModule, error)
	UpdateModule(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	DeleteModule(ctx context.Context, id uuid.UUID) (int64, error)
	MaxModulePosition(ctx context.Context, courseID uuid.UUID) (int, error)

	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	FindLessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	ReplaceLessonMaterials(ctx context.Context, id uuid.UUID, materials types.MaterialList) (int64, error)
	DeleteLesson(ctx context.Context, id uuid.UUID) (int64, error)
	MaxLessonPosition(ctx context.Context, moduleID uuid.UUID) (int, error)
	SumLessonMinutes(ctx context.Context, courseID uuid.UUID) (int, error)
	CountLessonsByCourse(ctx context.Context, courseID uuid.UUID, publishedOnly bool) (int64, error)
	ListLessonIDsByCourse(ctx context.Context, courseID uuid.UUID, publishedOnly bool) ([]uuid.UUID, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listCoursesParams struct {
	Offset        int
	Limit         int
	PublishedOnly bool
	Featured      *bool
	Category      *enums.CourseCategory
	Level         *enums.CourseLevel
	Language      *enums.CourseLanguage
	InstructorID  *uuid.UUID
	Search        string
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateCourse(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func contentPreload(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

func (r *repositoryImpl) FindCourseByID(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
	query := r.db.WithContext(ctx)
	if withContent {
		query = contentPreload(query)
	}
	var course models.Course
	if err := query.First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *repositoryImpl) FindCourseBySlug(ctx context.Context, slug string, withContent bool) (*models.Course, error) {
	query := r.db.WithContext(ctx)
	if withContent {
		query = contentPreload(query)
	}
	var course models.Course
	if err := query.First(&course, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *repositoryImpl) ListCourses(ctx context.Context, params listCoursesParams) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})
	if params.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if params.Featured != nil {
		query = query.Where("featured = ?", *params.Featured)
	}
	if params.Category != nil {
		query = query.Where("? = ANY(categories)", string(*params.Category))
	}
	if params.Level != nil {
		query = query.Where("level = ?", *params.Level)
	}
	if params.Language != nil {
		query = query.Where("language = ?", *params.Language)
	}
	if params.InstructorID != nil {
		query = query.Where("instructor_id = ?", *params.InstructorID)
	}
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title->>'pt') LIKE ? OR LOWER(title->>'en') LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []models.Course
	if err := query.
		Order("featured DESC, created_at DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (r *repositoryImpl) UpdateCourse(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteCourse(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) UpdateEnrollmentCount(ctx context.Context, id uuid.UUID, count int) error {
	return r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		UpdateColumn("enrollment_count", count).Error
}

func (r *repositoryImpl) CreateModule(ctx context.Context, module *models.CourseModule) error {
	return r.db.WithContext(ctx).Create(module).Error
}

func (r *repositoryImpl) FindModuleByID(ctx context.Context, id uuid.UUID) (*models.CourseModule, error) {
	var module models.CourseModule
	if err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&module, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *repositoryImpl) ListModules(ctx context.Context, courseID uuid.UUID) ([]models.CourseModule, error) {
	var modules []models.CourseModule
	err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&modules).Error
	return modules, err
}

func (r *repositoryImpl) UpdateModule(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.CourseModule{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteModule(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.CourseModule{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) MaxModulePosition(ctx context.Context, courseID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.CourseModule{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *repositoryImpl) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *repositoryImpl) FindLessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *repositoryImpl) UpdateLesson(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ?", id).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ReplaceLessonMaterials(ctx context.Context, id uuid.UUID, materials types.MaterialList) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ?", id).
		Update("materials", materials)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteLesson(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Lesson{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) MaxLessonPosition(ctx context.Context, moduleID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("module_id = ?", moduleID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

func (r *repositoryImpl) lessonsByCourse(ctx context.Context, courseID uuid.UUID, publishedOnly bool) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID)
	if publishedOnly {
		query = query.Where("lessons.is_published = ? AND course_modules.is_published = ?", true, true)
	}
	return query
}

// SumLessonMinutes aggregates the stored lesson durations for a course.
// Durations live inside JSONB so the walk happens in Go rather than SQL.
func (r *repositoryImpl) SumLessonMinutes(ctx context.Context, courseID uuid.UUID) (int, error) {
	var lessons []models.Lesson
	if err := r.lessonsByCourse(ctx, courseID, false).Find(&lessons).Error; err != nil {
		return 0, err
	}
	total := 0
	for _, lesson := range lessons {
		total += lesson.Duration.TotalMinutes()
	}
	return total, nil
}

func (r *repositoryImpl) CountLessonsByCourse(ctx context.Context, courseID uuid.UUID, publishedOnly bool) (int64, error) {
	var count int64
	err := r.lessonsByCourse(ctx, courseID, publishedOnly).Count(&count).Error
	return count, err
}

func (r *repositoryImpl) ListLessonIDsByCourse(ctx context.Context, courseID uuid.UUID, publishedOnly bool) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.lessonsByCourse(ctx, courseID, publishedOnly).
		Pluck("lessons.id", &ids).Error
	return ids, err
}
