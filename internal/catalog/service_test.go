package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/internal/audit"
	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/payloads"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

type fakeCatalogRepo struct {
	Repository

	createCourseFn           func(ctx context.Context, course *models.Course) error
	findCourseByIDFn         func(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error)
	updateCourseFn           func(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	createModuleFn           func(ctx context.Context, module *models.CourseModule) error
	findModuleByIDFn         func(ctx context.Context, id uuid.UUID) (*models.CourseModule, error)
	maxModulePositionFn      func(ctx context.Context, courseID uuid.UUID) (int, error)
	createLessonFn           func(ctx context.Context, lesson *models.Lesson) error
	findLessonByIDFn         func(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	maxLessonPositionFn      func(ctx context.Context, moduleID uuid.UUID) (int, error)
	sumLessonMinutesFn       func(ctx context.Context, courseID uuid.UUID) (int, error)
	replaceLessonMaterialsFn func(ctx context.Context, id uuid.UUID, materials types.MaterialList) (int64, error)
}

func (f *fakeCatalogRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeCatalogRepo) CreateCourse(ctx context.Context, course *models.Course) error {
	return f.createCourseFn(ctx, course)
}

func (f *fakeCatalogRepo) FindCourseByID(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
	return f.findCourseByIDFn(ctx, id, withContent)
}

func (f *fakeCatalogRepo) UpdateCourse(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
	return f.updateCourseFn(ctx, id, updates)
}

func (f *fakeCatalogRepo) CreateModule(ctx context.Context, module *models.CourseModule) error {
	return f.createModuleFn(ctx, module)
}

func (f *fakeCatalogRepo) FindModuleByID(ctx context.Context, id uuid.UUID) (*models.CourseModule, error) {
	return f.findModuleByIDFn(ctx, id)
}

func (f *fakeCatalogRepo) MaxModulePosition(ctx context.Context, courseID uuid.UUID) (int, error) {
	return f.maxModulePositionFn(ctx, courseID)
}

func (f *fakeCatalogRepo) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return f.createLessonFn(ctx, lesson)
}

func (f *fakeCatalogRepo) FindLessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	return f.findLessonByIDFn(ctx, id)
}

func (f *fakeCatalogRepo) MaxLessonPosition(ctx context.Context, moduleID uuid.UUID) (int, error) {
	return f.maxLessonPositionFn(ctx, moduleID)
}

func (f *fakeCatalogRepo) SumLessonMinutes(ctx context.Context, courseID uuid.UUID) (int, error) {
	return f.sumLessonMinutesFn(ctx, courseID)
}

func (f *fakeCatalogRepo) ReplaceLessonMaterials(ctx context.Context, id uuid.UUID, materials types.MaterialList) (int64, error) {
	return f.replaceLessonMaterialsFn(ctx, id, materials)
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeAuditRecorder struct {
	entries []audit.Entry
}

func (f *fakeAuditRecorder) Record(ctx context.Context, entry audit.Entry) {
	f.entries = append(f.entries, entry)
}

type fakeEnrollmentAccess struct {
	enrollment *models.Enrollment
	calls      int
}

func (f *fakeEnrollmentAccess) FindApprovedByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	f.calls++
	if f.enrollment == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.enrollment, nil
}

func newCatalogService(t *testing.T, repo *fakeCatalogRepo, emitter *fakeEmitter, recorder *fakeAuditRecorder) *service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:     fakeTxRunner{},
		Repo:   repo,
		Access: &fakeEnrollmentAccess{},
		Outbox: emitter,
		Audit:  recorder,
		Logg:   logger.New(logger.Options{}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc.(*service)
}

func bilingual(pt, en string) types.Bilingual {
	return types.Bilingual{PT: pt, EN: en}
}

func TestCreateCourseGeneratesSlug(t *testing.T) {
	var created *models.Course
	repo := &fakeCatalogRepo{
		createCourseFn: func(ctx context.Context, course *models.Course) error {
			created = course
			return nil
		},
	}
	recorder := &fakeAuditRecorder{}
	svc := newCatalogService(t, repo, &fakeEmitter{}, recorder)
	svc.now = func() time.Time { return time.UnixMilli(1750000000000) }

	actor := Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	course, err := svc.CreateCourse(context.Background(), actor, CreateCourseInput{
		Title:        bilingual("Introdução ao AutoCAD", "Introduction to AutoCAD"),
		Description:  bilingual("desc pt", "desc en"),
		InstructorID: uuid.New(),
		PriceMZN:     decimal.NewFromInt(2500),
		PriceUSD:     decimal.NewFromInt(40),
		Categories:   []string{"autocad"},
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if created == nil {
		t.Fatal("expected course persisted")
	}
	want := "introdu-o-ao-autocad-1750000000000"
	if course.Slug != want {
		t.Fatalf("slug = %q, want %q", course.Slug, want)
	}
	if course.Level != enums.CourseLevelAll {
		t.Fatalf("level = %q, want default %q", course.Level, enums.CourseLevelAll)
	}
	if course.Language != enums.CourseLanguagePT {
		t.Fatalf("language = %q, want default pt", course.Language)
	}
	if !course.Certificate {
		t.Fatal("certificate should default to true")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionCourseCreate {
		t.Fatalf("expected one course_create audit entry, got %+v", recorder.entries)
	}
}

func TestCreateCourseRejectsUnknownCategory(t *testing.T) {
	svc := newCatalogService(t, &fakeCatalogRepo{}, &fakeEmitter{}, &fakeAuditRecorder{})

	_, err := svc.CreateCourse(context.Background(), Actor{}, CreateCourseInput{
		Title:        bilingual("Curso", "Course"),
		Description:  bilingual("d", "d"),
		InstructorID: uuid.New(),
		Categories:   []string{"astrology"},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateCourseBuildsColumnMap(t *testing.T) {
	courseID := uuid.New()
	var captured map[string]any
	repo := &fakeCatalogRepo{
		findCourseByIDFn: func(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
			return &models.Course{ID: courseID, Title: bilingual("Curso", "Course")}, nil
		},
		updateCourseFn: func(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
			captured = updates
			return 1, nil
		},
	}
	svc := newCatalogService(t, repo, &fakeEmitter{}, &fakeAuditRecorder{})

	featured := true
	price := decimal.NewFromInt(3000)
	if _, err := svc.UpdateCourse(context.Background(), Actor{UserID: uuid.New()}, courseID, UpdateCourseInput{
		Featured: &featured,
		PriceMZN: &price,
	}); err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if len(captured) != 2 {
		t.Fatalf("expected 2 columns, got %v", captured)
	}
	if captured["featured"] != true {
		t.Fatalf("featured column = %v", captured["featured"])
	}
	if _, ok := captured["price_mzn"]; !ok {
		t.Fatal("expected price_mzn column")
	}
}

func TestUpdateCourseNoFields(t *testing.T) {
	svc := newCatalogService(t, &fakeCatalogRepo{}, &fakeEmitter{}, &fakeAuditRecorder{})

	_, err := svc.UpdateCourse(context.Background(), Actor{}, uuid.New(), UpdateCourseInput{})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateModuleAppendsPosition(t *testing.T) {
	courseID := uuid.New()
	var created *models.CourseModule
	repo := &fakeCatalogRepo{
		findCourseByIDFn: func(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
			return &models.Course{ID: courseID}, nil
		},
		maxModulePositionFn: func(ctx context.Context, id uuid.UUID) (int, error) {
			return 2, nil
		},
		createModuleFn: func(ctx context.Context, module *models.CourseModule) error {
			created = module
			return nil
		},
	}
	svc := newCatalogService(t, repo, &fakeEmitter{}, &fakeAuditRecorder{})

	module, err := svc.CreateModule(context.Background(), Actor{UserID: uuid.New()}, courseID, CreateModuleInput{
		Title: bilingual("Módulo 3", "Module 3"),
	})
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	if module.Position != 3 {
		t.Fatalf("position = %d, want 3", module.Position)
	}
	if created == nil || !created.IsPublished {
		t.Fatal("module should default to published")
	}
}

func TestCreateLessonRefreshesCourseDuration(t *testing.T) {
	courseID := uuid.New()
	moduleID := uuid.New()
	var durationUpdate map[string]any
	repo := &fakeCatalogRepo{
		findModuleByIDFn: func(ctx context.Context, id uuid.UUID) (*models.CourseModule, error) {
			return &models.CourseModule{ID: moduleID, CourseID: courseID, Title: bilingual("M", "M")}, nil
		},
		maxLessonPositionFn: func(ctx context.Context, id uuid.UUID) (int, error) {
			return 0, nil
		},
		createLessonFn: func(ctx context.Context, lesson *models.Lesson) error {
			return nil
		},
		sumLessonMinutesFn: func(ctx context.Context, id uuid.UUID) (int, error) {
			return 90, nil
		},
		updateCourseFn: func(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error) {
			durationUpdate = updates
			return 1, nil
		},
	}
	svc := newCatalogService(t, repo, &fakeEmitter{}, &fakeAuditRecorder{})

	lesson, err := svc.CreateLesson(context.Background(), Actor{UserID: uuid.New()}, moduleID, CreateLessonInput{
		Title:           bilingual("Aula 1", "Lesson 1"),
		DurationMinutes: 45,
	})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}
	if lesson.Position != 1 {
		t.Fatalf("position = %d, want 1", lesson.Position)
	}
	want := types.Duration{Hours: 1, Minutes: 30}
	if durationUpdate["duration"] != want {
		t.Fatalf("course duration update = %v, want %v", durationUpdate["duration"], want)
	}
}

func TestAddMaterialEmitsEvent(t *testing.T) {
	courseID := uuid.New()
	moduleID := uuid.New()
	lessonID := uuid.New()
	existing := types.Material{ID: uuid.New(), Order: 2}

	var replaced types.MaterialList
	repo := &fakeCatalogRepo{
		findLessonByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
			return &models.Lesson{
				ID:        lessonID,
				ModuleID:  moduleID,
				Title:     bilingual("Aula", "Lesson"),
				Materials: types.MaterialList{existing},
			}, nil
		},
		findModuleByIDFn: func(ctx context.Context, id uuid.UUID) (*models.CourseModule, error) {
			return &models.CourseModule{ID: moduleID, CourseID: courseID}, nil
		},
		findCourseByIDFn: func(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
			return &models.Course{ID: courseID, Title: bilingual("Curso", "Course")}, nil
		},
		replaceLessonMaterialsFn: func(ctx context.Context, id uuid.UUID, materials types.MaterialList) (int64, error) {
			replaced = materials
			return 1, nil
		},
	}
	emitter := &fakeEmitter{}
	recorder := &fakeAuditRecorder{}
	svc := newCatalogService(t, repo, emitter, recorder)

	material, err := svc.AddMaterial(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, lessonID, AddMaterialInput{
		Title:    bilingual("Apostila", "Workbook"),
		Type:     "upload",
		FileType: "pdf",
		FileURL:  "https://cdn.example.com/workbook.pdf",
	})
	if err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}
	if material.Order != 3 {
		t.Fatalf("order = %d, want 3", material.Order)
	}
	if len(replaced) != 2 {
		t.Fatalf("expected 2 materials persisted, got %d", len(replaced))
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(emitter.events))
	}
	event := emitter.events[0]
	if event.EventType != enums.EventMaterialAdded {
		t.Fatalf("event type = %q", event.EventType)
	}
	payload, ok := event.Data.(payloads.MaterialAddedEvent)
	if !ok {
		t.Fatalf("payload type = %T", event.Data)
	}
	if payload.MaterialID != material.ID || payload.CourseID != courseID {
		t.Fatalf("payload = %+v", payload)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionMaterialAdd {
		t.Fatalf("expected material_add audit entry, got %+v", recorder.entries)
	}
}

func TestAddMaterialRejectsUnknownType(t *testing.T) {
	svc := newCatalogService(t, &fakeCatalogRepo{}, &fakeEmitter{}, &fakeAuditRecorder{})

	_, err := svc.AddMaterial(context.Background(), Actor{}, uuid.New(), AddMaterialInput{
		Title:    bilingual("A", "A"),
		Type:     "hologram",
		FileType: "pdf",
		FileURL:  "https://cdn.example.com/x",
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRemoveMaterialNotFound(t *testing.T) {
	repo := &fakeCatalogRepo{
		findLessonByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
			return &models.Lesson{ID: id, Materials: types.MaterialList{}}, nil
		},
	}
	svc := newCatalogService(t, repo, &fakeEmitter{}, &fakeAuditRecorder{})

	err := svc.RemoveMaterial(context.Background(), Actor{}, uuid.New(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetCourseHidesDrafts(t *testing.T) {
	courseID := uuid.New()
	repo := &fakeCatalogRepo{
		findCourseByIDFn: func(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
			return &models.Course{
				ID:        courseID,
				Published: true,
				Modules: []models.CourseModule{
					{
						ID:          uuid.New(),
						IsPublished: true,
						Lessons: []models.Lesson{
							{ID: uuid.New(), IsPublished: true},
							{ID: uuid.New(), IsPublished: false},
						},
					},
					{ID: uuid.New(), IsPublished: false},
				},
			}, nil
		},
	}
	svc := newCatalogService(t, repo, &fakeEmitter{}, &fakeAuditRecorder{})

	course, err := svc.GetCourseByID(context.Background(), Actor{}, courseID)
	if err != nil {
		t.Fatalf("GetCourseByID: %v", err)
	}
	if len(course.Modules) != 1 {
		t.Fatalf("expected 1 visible module, got %d", len(course.Modules))
	}
	if len(course.Modules[0].Lessons) != 1 {
		t.Fatalf("expected 1 visible lesson, got %d", len(course.Modules[0].Lessons))
	}
}

func TestGetCourseUnpublishedIsNotFoundForPublic(t *testing.T) {
	repo := &fakeCatalogRepo{
		findCourseByIDFn: func(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
			return &models.Course{ID: id, Published: false}, nil
		},
	}
	svc := newCatalogService(t, repo, &fakeEmitter{}, &fakeAuditRecorder{})

	if _, err := svc.GetCourseByID(context.Background(), Actor{}, uuid.New()); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	admin := Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	if course, err := svc.GetCourseByID(context.Background(), admin, uuid.New()); err != nil || course == nil {
		t.Fatalf("admin read should see draft, got %v", err)
	}
}

func paidContentCourse(courseID uuid.UUID) *models.Course {
	return &models.Course{
		ID:        courseID,
		Published: true,
		Modules: []models.CourseModule{
			{
				ID:          uuid.New(),
				IsPublished: true,
				Lessons: []models.Lesson{
					{
						ID:          uuid.New(),
						IsPublished: true,
						IsFree:      true,
						Materials:   types.MaterialList{{ID: uuid.New(), FileURL: "https://cdn.example.com/intro.mp4"}},
					},
					{
						ID:          uuid.New(),
						IsPublished: true,
						IsFree:      false,
						Materials:   types.MaterialList{{ID: uuid.New(), FileURL: "https://cdn.example.com/paid.mp4"}},
					},
				},
			},
		},
	}
}

func TestGetCourseStripsPaidMaterialsWithoutEnrollment(t *testing.T) {
	courseID := uuid.New()
	repo := &fakeCatalogRepo{
		findCourseByIDFn: func(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
			return paidContentCourse(courseID), nil
		},
	}
	svc := newCatalogService(t, repo, &fakeEmitter{}, &fakeAuditRecorder{})

	for _, reader := range []Actor{
		{},
		{UserID: uuid.New(), Role: enums.UserRoleCliente},
	} {
		course, err := svc.GetCourseByID(context.Background(), reader, courseID)
		if err != nil {
			t.Fatalf("GetCourseByID: %v", err)
		}
		lessons := course.Modules[0].Lessons
		if len(lessons) != 2 {
			t.Fatalf("expected 2 lessons, got %d", len(lessons))
		}
		if len(lessons[0].Materials) != 1 {
			t.Fatalf("free lesson materials should stay, got %d", len(lessons[0].Materials))
		}
		if len(lessons[1].Materials) != 0 {
			t.Fatalf("paid lesson materials should be stripped, got %+v", lessons[1].Materials)
		}
	}
}

func TestGetCourseKeepsPaidMaterialsForApprovedStudent(t *testing.T) {
	courseID := uuid.New()
	userID := uuid.New()
	repo := &fakeCatalogRepo{
		findCourseByIDFn: func(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
			return paidContentCourse(courseID), nil
		},
	}
	svc := newCatalogService(t, repo, &fakeEmitter{}, &fakeAuditRecorder{})
	access := &fakeEnrollmentAccess{enrollment: &models.Enrollment{ID: uuid.New(), UserID: userID, CourseID: courseID}}
	svc.access = access

	course, err := svc.GetCourseByID(context.Background(), Actor{UserID: userID, Role: enums.UserRoleCliente}, courseID)
	if err != nil {
		t.Fatalf("GetCourseByID: %v", err)
	}
	if len(course.Modules[0].Lessons[1].Materials) != 1 {
		t.Fatal("approved student should keep paid lesson materials")
	}
	if access.calls != 1 {
		t.Fatalf("expected one enrollment lookup, got %d", access.calls)
	}
}

func TestGetCourseAdminSkipsEnrollmentLookup(t *testing.T) {
	courseID := uuid.New()
	repo := &fakeCatalogRepo{
		findCourseByIDFn: func(ctx context.Context, id uuid.UUID, withContent bool) (*models.Course, error) {
			return paidContentCourse(courseID), nil
		},
	}
	svc := newCatalogService(t, repo, &fakeEmitter{}, &fakeAuditRecorder{})
	access := &fakeEnrollmentAccess{}
	svc.access = access

	course, err := svc.GetCourseByID(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, courseID)
	if err != nil {
		t.Fatalf("GetCourseByID: %v", err)
	}
	if len(course.Modules[0].Lessons[1].Materials) != 1 {
		t.Fatal("admin should see paid lesson materials")
	}
	if access.calls != 0 {
		t.Fatalf("admin read should not hit enrollments, got %d lookups", access.calls)
	}
}
