package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/internal/audit"
	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/payloads"
	"github.com/edsonmucavele/engacademy-backend/pkg/pagination"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// Actor identifies the authenticated caller of a mutating operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service owns the course catalog: courses, modules, lessons and their
// inline materials.
type Service interface {
	ListCourses(ctx context.Context, params ListCoursesParams) (*CourseListResult, error)
	GetCourseByID(ctx context.Context, reader Actor, id uuid.UUID) (*models.Course, error)
	GetCourseBySlug(ctx context.Context, reader Actor, slug string) (*models.Course, error)
	CreateCourse(ctx context.Context, actor Actor, input CreateCourseInput) (*models.Course, error)
	UpdateCourse(ctx context.Context, actor Actor, id uuid.UUID, input UpdateCourseInput) (*models.Course, error)
	DeleteCourse(ctx context.Context, actor Actor, id uuid.UUID) error
	SetPublished(ctx context.Context, actor Actor, id uuid.UUID, published bool) (*models.Course, error)

	CreateModule(ctx context.Context, actor Actor, courseID uuid.UUID, input CreateModuleInput) (*models.CourseModule, error)
	UpdateModule(ctx context.Context, actor Actor, moduleID uuid.UUID, input UpdateModuleInput) (*models.CourseModule, error)
	DeleteModule(ctx context.Context, actor Actor, moduleID uuid.UUID) error

	CreateLesson(ctx context.Context, actor Actor, moduleID uuid.UUID, input CreateLessonInput) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, actor Actor, lessonID uuid.UUID, input UpdateLessonInput) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, actor Actor, lessonID uuid.UUID) error

	AddMaterial(ctx context.Context, actor Actor, lessonID uuid.UUID, input AddMaterialInput) (*types.Material, error)
	RemoveMaterial(ctx context.Context, actor Actor, lessonID, materialID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// enrollmentAccess answers whether a reader holds an approved enrollment
// for a course. Satisfied by the enrollments repository.
type enrollmentAccess interface {
	FindApprovedByUserCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
}

// ServiceParams bundles the dependencies for NewService.
type ServiceParams struct {
	DB     txRunner
	Repo   Repository
	Access enrollmentAccess
	Outbox eventEmitter
	Audit  audit.Recorder
	Logg   *logger.Logger
}

type service struct {
	db     txRunner
	repo   Repository
	access enrollmentAccess
	outbox eventEmitter
	audit  audit.Recorder
	logg   *logger.Logger
	now    func() time.Time
}

// NewService validates dependencies and builds the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog: db client is required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog: repository is required")
	}
	if params.Access == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog: enrollment access checker is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog: outbox service is required")
	}
	if params.Audit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog: audit recorder is required")
	}
	if params.Logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog: logger is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		access: params.Access,
		outbox: params.Outbox,
		audit:  params.Audit,
		logg:   params.Logg,
		now:    time.Now,
	}, nil
}

// ListCoursesParams filters the public and admin course listings.
type ListCoursesParams struct {
	Page          pagination.Params
	PublishedOnly bool
	Featured      *bool
	Category      *string
	Level         *string
	Language      *string
	InstructorID  *uuid.UUID
	Search        string
}

// CourseListResult is one page of the catalog.
type CourseListResult struct {
	Items      []models.Course   `json:"items"`
	Pagination pagination.Result `json:"pagination"`
}

func (s *service) ListCourses(ctx context.Context, params ListCoursesParams) (*CourseListResult, error) {
	page := params.Page.Normalize()
	repoParams := listCoursesParams{
		Offset:        page.Offset(),
		Limit:         page.Limit,
		PublishedOnly: params.PublishedOnly,
		Featured:      params.Featured,
		InstructorID:  params.InstructorID,
		Search:        strings.TrimSpace(params.Search),
	}
	if params.Category != nil && *params.Category != "" {
		category, err := enums.ParseCourseCategory(*params.Category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category filter")
		}
		repoParams.Category = &category
	}
	if params.Level != nil && *params.Level != "" {
		level, err := enums.ParseCourseLevel(*params.Level)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid level filter")
		}
		repoParams.Level = &level
	}
	if params.Language != nil && *params.Language != "" {
		language := enums.CourseLanguage(*params.Language)
		if !language.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid language filter %q", *params.Language))
		}
		repoParams.Language = &language
	}

	courses, total, err := s.repo.ListCourses(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list courses")
	}
	return &CourseListResult{
		Items:      courses,
		Pagination: pagination.NewResult(page, total),
	}, nil
}

func (s *service) GetCourseByID(ctx context.Context, reader Actor, id uuid.UUID) (*models.Course, error) {
	course, err := s.repo.FindCourseByID(ctx, id, true)
	if err != nil {
		return nil, courseLookupError(err)
	}
	return s.visibleCourse(ctx, course, reader)
}

func (s *service) GetCourseBySlug(ctx context.Context, reader Actor, slug string) (*models.Course, error) {
	course, err := s.repo.FindCourseBySlug(ctx, strings.TrimSpace(slug), true)
	if err != nil {
		return nil, courseLookupError(err)
	}
	return s.visibleCourse(ctx, course, reader)
}

// visibleCourse hides draft content from non-admin readers and strips
// materials from paid lessons unless the reader holds an approved
// enrollment. Unpublished modules and lessons are filtered rather than
// the whole course erroring so a partially drafted course still renders
// its live content.
func (s *service) visibleCourse(ctx context.Context, course *models.Course, reader Actor) (*models.Course, error) {
	if reader.Role.Satisfies(enums.UserRoleAdmin) {
		return course, nil
	}
	if !course.Published {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
	}
	enrolled, err := s.hasApprovedEnrollment(ctx, reader.UserID, course.ID)
	if err != nil {
		return nil, err
	}
	visible := make([]models.CourseModule, 0, len(course.Modules))
	for _, module := range course.Modules {
		if !module.IsPublished {
			continue
		}
		lessons := make([]models.Lesson, 0, len(module.Lessons))
		for _, lesson := range module.Lessons {
			if !lesson.IsPublished {
				continue
			}
			if !enrolled && !lesson.IsFree {
				lesson.Materials = types.MaterialList{}
			}
			lessons = append(lessons, lesson)
		}
		module.Lessons = lessons
		visible = append(visible, module)
	}
	course.Modules = visible
	return course, nil
}

func (s *service) hasApprovedEnrollment(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	if _, err := s.access.FindApprovedByUserCourse(ctx, userID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find enrollment")
	}
	return true, nil
}

// CreateCourseInput carries the full payload for a new course.
type CreateCourseInput struct {
	Title            types.Bilingual
	Description      types.Bilingual
	ShortDescription types.Bilingual
	InstructorID     uuid.UUID
	ImageURL         *string
	PriceMZN         decimal.Decimal
	PriceUSD         decimal.Decimal
	DiscountMZN      decimal.Decimal
	DiscountUSD      decimal.Decimal
	PricingOptions   types.PricingOptionList
	Categories       []string
	Level            string
	Language         string
	Requirements     types.BilingualStrings
	Objectives       types.BilingualStrings
	TargetAudience   types.BilingualStrings
	Certificate      *bool
	PaymentInfo      *types.PaymentInfo
	Tags             []string
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// courseSlug derives a unique slug from the Portuguese title plus a
// millisecond suffix, matching what the frontend already links against.
func courseSlug(title string, now time.Time) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	return fmt.Sprintf("%s-%d", slug, now.UnixMilli())
}

func requireBilingual(field string, value types.Bilingual) error {
	if strings.TrimSpace(value.PT) == "" || strings.TrimSpace(value.EN) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s requires both pt and en text", field))
	}
	return nil
}

func (s *service) CreateCourse(ctx context.Context, actor Actor, input CreateCourseInput) (*models.Course, error) {
	if err := requireBilingual("title", input.Title); err != nil {
		return nil, err
	}
	if err := requireBilingual("description", input.Description); err != nil {
		return nil, err
	}
	if input.InstructorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "instructorId is required")
	}
	if input.PriceMZN.IsNegative() || input.PriceUSD.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	categories := make([]string, 0, len(input.Categories))
	for _, raw := range input.Categories {
		category, err := enums.ParseCourseCategory(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		categories = append(categories, string(category))
	}

	level := enums.CourseLevelAll
	if input.Level != "" {
		parsed, err := enums.ParseCourseLevel(input.Level)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid level")
		}
		level = parsed
	}
	language := enums.CourseLanguagePT
	if input.Language != "" {
		language = enums.CourseLanguage(input.Language)
		if !language.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid language %q", input.Language))
		}
	}
	certificate := true
	if input.Certificate != nil {
		certificate = *input.Certificate
	}

	course := &models.Course{
		ID:               uuid.New(),
		Title:            input.Title,
		Slug:             courseSlug(input.Title.PT, s.now()),
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		InstructorID:     input.InstructorID,
		ImageURL:         input.ImageURL,
		PriceMZN:         input.PriceMZN,
		PriceUSD:         input.PriceUSD,
		DiscountMZN:      input.DiscountMZN,
		DiscountUSD:      input.DiscountUSD,
		PricingOptions:   input.PricingOptions,
		Categories:       pq.StringArray(categories),
		Level:            level,
		Language:         language,
		Requirements:     input.Requirements,
		Objectives:       input.Objectives,
		TargetAudience:   input.TargetAudience,
		Certificate:      certificate,
		PaymentInfo:      input.PaymentInfo,
		Tags:             pq.StringArray(input.Tags),
	}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert course")
	}

	s.recordAudit(ctx, actor, audit.Entry{
		Action:      enums.AuditActionCourseCreate,
		Description: fmt.Sprintf("course %q created", course.Title.PT),
		TargetType:  targetRef(enums.AuditTargetCourse),
		TargetID:    &course.ID,
		NewData:     course,
	})
	return course, nil
}

// UpdateCourseInput updates only the fields the caller sets.
type UpdateCourseInput struct {
	Title            *types.Bilingual
	Description      *types.Bilingual
	ShortDescription *types.Bilingual
	ImageURL         *string
	PriceMZN         *decimal.Decimal
	PriceUSD         *decimal.Decimal
	DiscountMZN      *decimal.Decimal
	DiscountUSD      *decimal.Decimal
	PricingOptions   *types.PricingOptionList
	Categories       *[]string
	Level            *string
	Language         *string
	Requirements     *types.BilingualStrings
	Objectives       *types.BilingualStrings
	TargetAudience   *types.BilingualStrings
	Certificate      *bool
	Featured         *bool
	PaymentInfo      *types.PaymentInfo
	Tags             *[]string
}

func (in UpdateCourseInput) columns() (map[string]any, error) {
	updates := map[string]any{}
	if in.Title != nil {
		if err := requireBilingual("title", *in.Title); err != nil {
			return nil, err
		}
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		if err := requireBilingual("description", *in.Description); err != nil {
			return nil, err
		}
		updates["description"] = *in.Description
	}
	if in.ShortDescription != nil {
		updates["short_description"] = *in.ShortDescription
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}
	if in.PriceMZN != nil {
		if in.PriceMZN.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
		}
		updates["price_mzn"] = *in.PriceMZN
	}
	if in.PriceUSD != nil {
		if in.PriceUSD.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
		}
		updates["price_usd"] = *in.PriceUSD
	}
	if in.DiscountMZN != nil {
		updates["discount_mzn"] = *in.DiscountMZN
	}
	if in.DiscountUSD != nil {
		updates["discount_usd"] = *in.DiscountUSD
	}
	if in.PricingOptions != nil {
		updates["pricing_options"] = *in.PricingOptions
	}
	if in.Categories != nil {
		categories := make([]string, 0, len(*in.Categories))
		for _, raw := range *in.Categories {
			category, err := enums.ParseCourseCategory(raw)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
			}
			categories = append(categories, string(category))
		}
		updates["categories"] = pq.StringArray(categories)
	}
	if in.Level != nil {
		level, err := enums.ParseCourseLevel(*in.Level)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid level")
		}
		updates["level"] = level
	}
	if in.Language != nil {
		language := enums.CourseLanguage(*in.Language)
		if !language.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid language %q", *in.Language))
		}
		updates["language"] = language
	}
	if in.Requirements != nil {
		updates["requirements"] = *in.Requirements
	}
	if in.Objectives != nil {
		updates["objectives"] = *in.Objectives
	}
	if in.TargetAudience != nil {
		updates["target_audience"] = *in.TargetAudience
	}
	if in.Certificate != nil {
		updates["certificate"] = *in.Certificate
	}
	if in.Featured != nil {
		updates["featured"] = *in.Featured
	}
	if in.PaymentInfo != nil {
		updates["payment_info"] = in.PaymentInfo
	}
	if in.Tags != nil {
		updates["tags"] = pq.StringArray(*in.Tags)
	}
	return updates, nil
}

func (s *service) UpdateCourse(ctx context.Context, actor Actor, id uuid.UUID, input UpdateCourseInput) (*models.Course, error) {
	updates, err := input.columns()
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	previous, err := s.repo.FindCourseByID(ctx, id, false)
	if err != nil {
		return nil, courseLookupError(err)
	}
	if _, err := s.repo.UpdateCourse(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update course")
	}
	course, err := s.repo.FindCourseByID(ctx, id, false)
	if err != nil {
		return nil, courseLookupError(err)
	}

	s.recordAudit(ctx, actor, audit.Entry{
		Action:       enums.AuditActionCourseUpdate,
		Description:  fmt.Sprintf("course %q updated", course.Title.PT),
		TargetType:   targetRef(enums.AuditTargetCourse),
		TargetID:     &id,
		PreviousData: previous,
		NewData:      course,
	})
	return course, nil
}

func (s *service) DeleteCourse(ctx context.Context, actor Actor, id uuid.UUID) error {
	course, err := s.repo.FindCourseByID(ctx, id, false)
	if err != nil {
		return courseLookupError(err)
	}
	if _, err := s.repo.DeleteCourse(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete course")
	}
	s.recordAudit(ctx, actor, audit.Entry{
		Action:       enums.AuditActionCourseDelete,
		Description:  fmt.Sprintf("course %q deleted", course.Title.PT),
		TargetType:   targetRef(enums.AuditTargetCourse),
		TargetID:     &id,
		PreviousData: course,
	})
	return nil
}

func (s *service) SetPublished(ctx context.Context, actor Actor, id uuid.UUID, published bool) (*models.Course, error) {
	course, err := s.repo.FindCourseByID(ctx, id, false)
	if err != nil {
		return nil, courseLookupError(err)
	}
	if course.Published == published {
		return course, nil
	}
	if _, err := s.repo.UpdateCourse(ctx, id, map[string]any{"published": published}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update course")
	}
	course.Published = published

	action := enums.AuditActionCoursePublish
	verb := "published"
	if !published {
		action = enums.AuditActionCourseUnpublish
		verb = "unpublished"
	}
	s.recordAudit(ctx, actor, audit.Entry{
		Action:      action,
		Description: fmt.Sprintf("course %q %s", course.Title.PT, verb),
		TargetType:  targetRef(enums.AuditTargetCourse),
		TargetID:    &id,
	})
	return course, nil
}

// CreateModuleInput carries a new module. Position defaults to the end of
// the course when zero.
type CreateModuleInput struct {
	Title       types.Bilingual
	Description types.Bilingual
	Position    int
	IsPublished *bool
}

func (s *service) CreateModule(ctx context.Context, actor Actor, courseID uuid.UUID, input CreateModuleInput) (*models.CourseModule, error) {
	if err := requireBilingual("title", input.Title); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCourseByID(ctx, courseID, false); err != nil {
		return nil, courseLookupError(err)
	}
	position := input.Position
	if position <= 0 {
		max, err := s.repo.MaxModulePosition(ctx, courseID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: max module position")
		}
		position = max + 1
	}
	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	module := &models.CourseModule{
		ID:          uuid.New(),
		CourseID:    courseID,
		Title:       input.Title,
		Description: input.Description,
		Position:    position,
		IsPublished: published,
	}
	if err := s.repo.CreateModule(ctx, module); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert module")
	}
	s.recordAudit(ctx, actor, audit.Entry{
		Action:      enums.AuditActionModuleCreate,
		Description: fmt.Sprintf("module %q added to course", module.Title.PT),
		TargetType:  targetRef(enums.AuditTargetModule),
		TargetID:    &module.ID,
		NewData:     module,
	})
	return module, nil
}

// UpdateModuleInput updates only the set fields.
type UpdateModuleInput struct {
	Title       *types.Bilingual
	Description *types.Bilingual
	Position    *int
	IsPublished *bool
}

func (s *service) UpdateModule(ctx context.Context, actor Actor, moduleID uuid.UUID, input UpdateModuleInput) (*models.CourseModule, error) {
	updates := map[string]any{}
	if input.Title != nil {
		if err := requireBilingual("title", *input.Title); err != nil {
			return nil, err
		}
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Position != nil {
		if *input.Position <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must be positive")
		}
		updates["position"] = *input.Position
	}
	if input.IsPublished != nil {
		updates["is_published"] = *input.IsPublished
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.UpdateModule(ctx, moduleID, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update module")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "module not found")
	}
	module, err := s.repo.FindModuleByID(ctx, moduleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload module")
	}
	s.recordAudit(ctx, actor, audit.Entry{
		Action:      enums.AuditActionModuleUpdate,
		Description: fmt.Sprintf("module %q updated", module.Title.PT),
		TargetType:  targetRef(enums.AuditTargetModule),
		TargetID:    &moduleID,
		NewData:     module,
	})
	return module, nil
}

func (s *service) DeleteModule(ctx context.Context, actor Actor, moduleID uuid.UUID) error {
	module, err := s.repo.FindModuleByID(ctx, moduleID)
	if err != nil {
		return moduleLookupError(err)
	}
	if _, err := s.repo.DeleteModule(ctx, moduleID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete module")
	}
	if err := s.refreshCourseDuration(ctx, module.CourseID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, audit.Entry{
		Action:       enums.AuditActionModuleDelete,
		Description:  fmt.Sprintf("module %q deleted", module.Title.PT),
		TargetType:   targetRef(enums.AuditTargetModule),
		TargetID:     &moduleID,
		PreviousData: module,
	})
	return nil
}

// CreateLessonInput carries a new lesson. DurationMinutes feeds the stored
// duration and the course total.
type CreateLessonInput struct {
	Title           types.Bilingual
	Description     types.Bilingual
	Position        int
	DurationMinutes int
	IsFree          bool
	IsPublished     *bool
}

func (s *service) CreateLesson(ctx context.Context, actor Actor, moduleID uuid.UUID, input CreateLessonInput) (*models.Lesson, error) {
	if err := requireBilingual("title", input.Title); err != nil {
		return nil, err
	}
	if input.DurationMinutes < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration cannot be negative")
	}
	module, err := s.repo.FindModuleByID(ctx, moduleID)
	if err != nil {
		return nil, moduleLookupError(err)
	}
	position := input.Position
	if position <= 0 {
		max, err := s.repo.MaxLessonPosition(ctx, moduleID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: max lesson position")
		}
		position = max + 1
	}
	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	lesson := &models.Lesson{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		Title:       input.Title,
		Description: input.Description,
		Position:    position,
		Materials:   types.MaterialList{},
		Duration:    types.FromMinutes(input.DurationMinutes),
		IsFree:      input.IsFree,
		IsPublished: published,
	}
	if err := s.repo.CreateLesson(ctx, lesson); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert lesson")
	}
	if err := s.refreshCourseDuration(ctx, module.CourseID); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, audit.Entry{
		Action:      enums.AuditActionLessonCreate,
		Description: fmt.Sprintf("lesson %q added to module %q", lesson.Title.PT, module.Title.PT),
		TargetType:  targetRef(enums.AuditTargetLesson),
		TargetID:    &lesson.ID,
		NewData:     lesson,
	})
	return lesson, nil
}

// UpdateLessonInput updates only the set fields.
type UpdateLessonInput struct {
	Title           *types.Bilingual
	Description     *types.Bilingual
	Position        *int
	DurationMinutes *int
	IsFree          *bool
	IsPublished     *bool
}

func (s *service) UpdateLesson(ctx context.Context, actor Actor, lessonID uuid.UUID, input UpdateLessonInput) (*models.Lesson, error) {
	updates := map[string]any{}
	if input.Title != nil {
		if err := requireBilingual("title", *input.Title); err != nil {
			return nil, err
		}
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Position != nil {
		if *input.Position <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must be positive")
		}
		updates["position"] = *input.Position
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration cannot be negative")
		}
		updates["duration"] = types.FromMinutes(*input.DurationMinutes)
	}
	if input.IsFree != nil {
		updates["is_free"] = *input.IsFree
	}
	if input.IsPublished != nil {
		updates["is_published"] = *input.IsPublished
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	lesson, err := s.repo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, lessonLookupError(err)
	}
	if _, err := s.repo.UpdateLesson(ctx, lessonID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update lesson")
	}
	updated, err := s.repo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, lessonLookupError(err)
	}
	if input.DurationMinutes != nil {
		module, err := s.repo.FindModuleByID(ctx, lesson.ModuleID)
		if err != nil {
			return nil, moduleLookupError(err)
		}
		if err := s.refreshCourseDuration(ctx, module.CourseID); err != nil {
			return nil, err
		}
	}
	s.recordAudit(ctx, actor, audit.Entry{
		Action:       enums.AuditActionLessonUpdate,
		Description:  fmt.Sprintf("lesson %q updated", updated.Title.PT),
		TargetType:   targetRef(enums.AuditTargetLesson),
		TargetID:     &lessonID,
		PreviousData: lesson,
		NewData:      updated,
	})
	return updated, nil
}

func (s *service) DeleteLesson(ctx context.Context, actor Actor, lessonID uuid.UUID) error {
	lesson, err := s.repo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return lessonLookupError(err)
	}
	module, err := s.repo.FindModuleByID(ctx, lesson.ModuleID)
	if err != nil {
		return moduleLookupError(err)
	}
	if _, err := s.repo.DeleteLesson(ctx, lessonID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete lesson")
	}
	if err := s.refreshCourseDuration(ctx, module.CourseID); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, audit.Entry{
		Action:       enums.AuditActionLessonDelete,
		Description:  fmt.Sprintf("lesson %q deleted", lesson.Title.PT),
		TargetType:   targetRef(enums.AuditTargetLesson),
		TargetID:     &lessonID,
		PreviousData: lesson,
	})
	return nil
}

// AddMaterialInput carries a new lesson attachment.
type AddMaterialInput struct {
	Title           types.Bilingual
	Description     types.Bilingual
	Type            string
	FileType        string
	FileURL         string
	StoragePublicID *string
	MimeType        *string
	FileSizeBytes   *int64
	DurationMinutes int
	IsDownloadable  bool
}

// AddMaterial appends the attachment to the lesson and emits the
// material_added event in the same transaction, so enrolled students are
// notified only when the write actually lands.
func (s *service) AddMaterial(ctx context.Context, actor Actor, lessonID uuid.UUID, input AddMaterialInput) (*types.Material, error) {
	if err := requireBilingual("title", input.Title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.FileURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fileUrl is required")
	}
	materialType, err := enums.ParseMaterialType(input.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid material type")
	}
	fileType, err := enums.ParseMaterialFileType(input.FileType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file type")
	}

	lesson, err := s.repo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return nil, lessonLookupError(err)
	}
	module, err := s.repo.FindModuleByID(ctx, lesson.ModuleID)
	if err != nil {
		return nil, moduleLookupError(err)
	}
	course, err := s.repo.FindCourseByID(ctx, module.CourseID, false)
	if err != nil {
		return nil, courseLookupError(err)
	}

	now := s.now().UTC()
	material := types.Material{
		ID:              uuid.New(),
		Title:           input.Title,
		Description:     input.Description,
		Type:            materialType,
		FileType:        fileType,
		FileURL:         input.FileURL,
		StoragePublicID: input.StoragePublicID,
		MimeType:        input.MimeType,
		FileSizeBytes:   input.FileSizeBytes,
		Duration:        types.FromMinutes(input.DurationMinutes),
		IsDownloadable:  input.IsDownloadable,
		Order:           lesson.Materials.NextOrder(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	materials := append(lesson.Materials, material)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		affected, err := txRepo.ReplaceLessonMaterials(ctx, lessonID, materials)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update lesson materials")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "lesson not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMaterialAdded,
			AggregateType: enums.AggregateLesson,
			AggregateID:   lessonID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.MaterialAddedEvent{
				CourseID:    course.ID,
				LessonID:    lessonID,
				MaterialID:  material.ID,
				CourseTitle: course.Title,
				LessonTitle: lesson.Title,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, audit.Entry{
		Action:      enums.AuditActionMaterialAdd,
		Description: fmt.Sprintf("material %q added to lesson %q", material.Title.PT, lesson.Title.PT),
		TargetType:  targetRef(enums.AuditTargetMaterial),
		TargetID:    &material.ID,
		NewData:     material,
	})
	return &material, nil
}

func (s *service) RemoveMaterial(ctx context.Context, actor Actor, lessonID, materialID uuid.UUID) error {
	lesson, err := s.repo.FindLessonByID(ctx, lessonID)
	if err != nil {
		return lessonLookupError(err)
	}
	var removed *types.Material
	remaining := make(types.MaterialList, 0, len(lesson.Materials))
	for _, material := range lesson.Materials {
		if material.ID == materialID {
			removed = &material
			continue
		}
		remaining = append(remaining, material)
	}
	if removed == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
	}
	if _, err := s.repo.ReplaceLessonMaterials(ctx, lessonID, remaining); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update lesson materials")
	}
	s.recordAudit(ctx, actor, audit.Entry{
		Action:       enums.AuditActionMaterialDelete,
		Description:  fmt.Sprintf("material %q removed from lesson %q", removed.Title.PT, lesson.Title.PT),
		TargetType:   targetRef(enums.AuditTargetMaterial),
		TargetID:     &materialID,
		PreviousData: removed,
	})
	return nil
}

// refreshCourseDuration recomputes the stored course duration from the sum
// of its lesson durations.
func (s *service) refreshCourseDuration(ctx context.Context, courseID uuid.UUID) error {
	total, err := s.repo.SumLessonMinutes(ctx, courseID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum lesson minutes")
	}
	if _, err := s.repo.UpdateCourse(ctx, courseID, map[string]any{"duration": types.FromMinutes(total)}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update course duration")
	}
	return nil
}

func (s *service) recordAudit(ctx context.Context, actor Actor, entry audit.Entry) {
	if actor.UserID != uuid.Nil {
		userID := actor.UserID
		entry.UserID = &userID
	}
	s.audit.Record(ctx, entry)
}

func targetRef(target enums.AuditTargetType) *enums.AuditTargetType {
	return &target
}

func courseLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "course not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find course")
}

func moduleLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "module not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find module")
}

func lessonLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "lesson not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find lesson")
}
