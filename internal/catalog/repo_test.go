package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	courses := `
CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  short_description TEXT,
  instructor_id TEXT NOT NULL,
  image_url TEXT,
  price_mzn NUMERIC NOT NULL DEFAULT 0,
  price_usd NUMERIC NOT NULL DEFAULT 0,
  discount_mzn NUMERIC NOT NULL DEFAULT 0,
  discount_usd NUMERIC NOT NULL DEFAULT 0,
  pricing_options TEXT,
  categories TEXT NOT NULL DEFAULT '{}',
  level TEXT NOT NULL DEFAULT 'todos',
  language TEXT NOT NULL DEFAULT 'pt',
  duration TEXT,
  requirements TEXT,
  objectives TEXT,
  target_audience TEXT,
  certificate INTEGER NOT NULL DEFAULT 1,
  certificate_template TEXT,
  published INTEGER NOT NULL DEFAULT 0,
  featured INTEGER NOT NULL DEFAULT 0,
  rating_average NUMERIC NOT NULL DEFAULT 0,
  rating_count INTEGER NOT NULL DEFAULT 0,
  enrollment_count INTEGER NOT NULL DEFAULT 0,
  tags TEXT NOT NULL DEFAULT '{}',
  payment_info TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	modules := `
CREATE TABLE IF NOT EXISTS course_modules (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  position INTEGER NOT NULL,
  is_published INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	lessons := `
CREATE TABLE IF NOT EXISTS lessons (
  id TEXT PRIMARY KEY,
  module_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  position INTEGER NOT NULL,
  materials TEXT NOT NULL DEFAULT '[]',
  duration TEXT,
  is_free INTEGER NOT NULL DEFAULT 0,
  is_published INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(courses).Error)
	require.NoError(t, db.Exec(modules).Error)
	require.NoError(t, db.Exec(lessons).Error)
	return db
}

func createCourse(t *testing.T, db *gorm.DB, slug string, published, featured bool) *models.Course {
	t.Helper()

	course := &models.Course{
		ID:           uuid.New(),
		Title:        types.Bilingual{PT: "Curso de Teste", EN: "Test Course"},
		Slug:         slug,
		Description:  types.Bilingual{PT: "Descrição", EN: "Description"},
		InstructorID: uuid.New(),
		PriceMZN:     decimal.NewFromInt(1500),
		PriceUSD:     decimal.NewFromInt(25),
		Level:        enums.CourseLevelAll,
		Language:     enums.CourseLanguagePT,
		Published:    published,
		Featured:     featured,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func createModule(t *testing.T, db *gorm.DB, courseID uuid.UUID, position int, published bool) *models.CourseModule {
	t.Helper()

	module := &models.CourseModule{
		ID:          uuid.New(),
		CourseID:    courseID,
		Title:       types.Bilingual{PT: "Módulo", EN: "Module"},
		Position:    position,
		IsPublished: published,
	}
	require.NoError(t, db.Create(module).Error)
	return module
}

func createLesson(t *testing.T, db *gorm.DB, moduleID uuid.UUID, position, minutes int, published bool) *models.Lesson {
	t.Helper()

	lesson := &models.Lesson{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		Title:       types.Bilingual{PT: "Aula", EN: "Lesson"},
		Position:    position,
		Materials:   types.MaterialList{},
		Duration:    types.FromMinutes(minutes),
		IsPublished: published,
	}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

func TestFindCourseByIDPreloadsOrderedContent(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	course := createCourse(t, db, "curso-1", true, false)
	second := createModule(t, db, course.ID, 2, true)
	first := createModule(t, db, course.ID, 1, true)
	createLesson(t, db, first.ID, 2, 10, true)
	createLesson(t, db, first.ID, 1, 10, true)

	found, err := repo.FindCourseByID(ctx, course.ID, true)
	require.NoError(t, err)
	require.Len(t, found.Modules, 2)
	assert.Equal(t, first.ID, found.Modules[0].ID)
	assert.Equal(t, second.ID, found.Modules[1].ID)
	require.Len(t, found.Modules[0].Lessons, 2)
	assert.Equal(t, 1, found.Modules[0].Lessons[0].Position)
	assert.Equal(t, 2, found.Modules[0].Lessons[1].Position)
}

func TestListCoursesPublishedAndFeatured(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	createCourse(t, db, "draft", false, false)
	plain := createCourse(t, db, "plain", true, false)
	featured := createCourse(t, db, "featured", true, true)

	courses, total, err := repo.ListCourses(ctx, listCoursesParams{
		Offset:        0,
		Limit:         10,
		PublishedOnly: true,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, courses, 2)
	assert.Equal(t, featured.ID, courses[0].ID)
	assert.Equal(t, plain.ID, courses[1].ID)

	flag := true
	courses, total, err = repo.ListCourses(ctx, listCoursesParams{
		Offset:   0,
		Limit:    10,
		Featured: &flag,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, courses, 1)
	assert.Equal(t, featured.ID, courses[0].ID)
}

func TestMaxPositions(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	course := createCourse(t, db, "curso-pos", true, false)

	max, err := repo.MaxModulePosition(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	module := createModule(t, db, course.ID, 1, true)
	createModule(t, db, course.ID, 2, true)

	max, err = repo.MaxModulePosition(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, max)

	createLesson(t, db, module.ID, 1, 10, true)
	createLesson(t, db, module.ID, 2, 10, true)
	createLesson(t, db, module.ID, 3, 10, true)

	max, err = repo.MaxLessonPosition(ctx, module.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, max)
}

func TestLessonAggregatesAcrossModules(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	course := createCourse(t, db, "curso-agg", true, false)
	moduleA := createModule(t, db, course.ID, 1, true)
	moduleB := createModule(t, db, course.ID, 2, false)
	other := createCourse(t, db, "outro", true, false)
	otherModule := createModule(t, db, other.ID, 1, true)

	published := createLesson(t, db, moduleA.ID, 1, 45, true)
	createLesson(t, db, moduleA.ID, 2, 30, false)
	createLesson(t, db, moduleB.ID, 1, 90, true)
	createLesson(t, db, otherModule.ID, 1, 500, true)

	total, err := repo.SumLessonMinutes(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 165, total)

	count, err := repo.CountLessonsByCourse(ctx, course.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = repo.CountLessonsByCourse(ctx, course.ID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	ids, err := repo.ListLessonIDsByCourse(ctx, course.ID, true)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, published.ID, ids[0])
}

func TestReplaceLessonMaterials(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	course := createCourse(t, db, "curso-mat", true, false)
	module := createModule(t, db, course.ID, 1, true)
	lesson := createLesson(t, db, module.ID, 1, 20, true)

	materials := types.MaterialList{
		{
			ID:       uuid.New(),
			Title:    types.Bilingual{PT: "Apostila", EN: "Workbook"},
			Type:     enums.MaterialTypeUpload,
			FileType: enums.MaterialFileTypePDF,
			FileURL:  "https://cdn.example.com/a.pdf",
			Order:    1,
		},
	}
	affected, err := repo.ReplaceLessonMaterials(ctx, lesson.ID, materials)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	found, err := repo.FindLessonByID(ctx, lesson.ID)
	require.NoError(t, err)
	require.Len(t, found.Materials, 1)
	assert.Equal(t, materials[0].ID, found.Materials[0].ID)
	assert.Equal(t, "https://cdn.example.com/a.pdf", found.Materials[0].FileURL)

	affected, err = repo.ReplaceLessonMaterials(ctx, uuid.New(), materials)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestUpdateEnrollmentCount(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	course := createCourse(t, db, "curso-count", true, false)
	require.NoError(t, repo.UpdateEnrollmentCount(ctx, course.ID, 7))

	found, err := repo.FindCourseByID(ctx, course.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 7, found.EnrollmentCount)
}
