package stats

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

const (
	// dashboardMonths is the width of the enrollments-per-month window.
	dashboardMonths = 6
	topCoursesLimit = 5
)

// Service computes the admin dashboard and the per-student progress summary.
type Service interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	UserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// DashboardSummary is the headline counter block of the admin dashboard.
type DashboardSummary struct {
	TotalUsers          int64 `json:"totalUsers"`
	TotalCourses        int64 `json:"totalCourses"`
	TotalEnrollments    int64 `json:"totalEnrollments"`
	PendingEnrollments  int64 `json:"pendingEnrollments"`
	ApprovedEnrollments int64 `json:"approvedEnrollments"`
}

// MonthCount is one bucket of the enrollments-per-month series.
type MonthCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// TopCourse is one row of the most-enrolled ranking.
type TopCourse struct {
	CourseID    uuid.UUID       `json:"courseId"`
	Title       types.Bilingual `json:"title"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Enrollments int             `json:"enrollments"`
}

// DashboardStats is the admin dashboard payload. Recent activity is not
// duplicated here: the frontend reads it from the audit-logs listing.
type DashboardStats struct {
	Summary             DashboardSummary `json:"summary"`
	EnrollmentsByStatus map[string]int64 `json:"enrollmentsByStatus"`
	EnrollmentsPerMonth []MonthCount     `json:"enrollmentsPerMonth"`
	TopCourses          []TopCourse      `json:"topCourses"`
}

// CourseProgress pairs an approved enrollment's course with its progress.
type CourseProgress struct {
	Course      *models.Course `json:"course,omitempty"`
	Progress    int            `json:"progress"`
	StartedAt   *time.Time     `json:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

// UserStats is the student-facing progress summary.
type UserStats struct {
	TotalEnrolled int              `json:"totalEnrolled"`
	InProgress    int              `json:"inProgress"`
	Completed     int              `json:"completed"`
	AvgProgress   int              `json:"avgProgress"`
	Courses       []CourseProgress `json:"courses"`
}

// NewService wires the stats service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stats repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	totalUsers, err := s.repo.CountClients(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count users")
	}
	totalCourses, err := s.repo.CountPublishedCourses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count courses")
	}
	byStatus, err := s.repo.CountEnrollmentsByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count enrollments by status")
	}

	var totalEnrollments int64
	statusCounts := make(map[string]int64, len(byStatus))
	for status, count := range byStatus {
		totalEnrollments += count
		statusCounts[status.String()] = count
	}

	since := monthStart(s.now().UTC().AddDate(0, -(dashboardMonths - 1), 0))
	created, err := s.repo.EnrollmentCreationTimes(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list enrollment creation times")
	}

	ranked, err := s.repo.TopCoursesByEnrollment(ctx, topCoursesLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: rank courses")
	}
	topCourses := make([]TopCourse, 0, len(ranked))
	for _, course := range ranked {
		topCourses = append(topCourses, TopCourse{
			CourseID:    course.ID,
			Title:       course.Title,
			ImageURL:    course.ImageURL,
			Enrollments: course.EnrollmentCount,
		})
	}

	return &DashboardStats{
		Summary: DashboardSummary{
			TotalUsers:          totalUsers,
			TotalCourses:        totalCourses,
			TotalEnrollments:    totalEnrollments,
			PendingEnrollments:  byStatus[enums.EnrollmentStatusPendente],
			ApprovedEnrollments: byStatus[enums.EnrollmentStatusAprovado],
		},
		EnrollmentsByStatus: statusCounts,
		EnrollmentsPerMonth: bucketByMonth(created, since),
		TopCourses:          topCourses,
	}, nil
}

func (s *service) UserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authenticated user")
	}

	rows, err := s.repo.ApprovedEnrollmentsWithCourse(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list approved enrollments")
	}

	out := &UserStats{Courses: make([]CourseProgress, 0, len(rows))}
	var progressSum int
	for _, row := range rows {
		out.TotalEnrolled++
		progressSum += row.OverallProgress
		switch {
		case row.OverallProgress >= 100:
			out.Completed++
		case row.OverallProgress > 0:
			out.InProgress++
		}
		out.Courses = append(out.Courses, CourseProgress{
			Course:      row.Course,
			Progress:    row.OverallProgress,
			StartedAt:   row.StartedAt,
			CompletedAt: row.CompletedAt,
		})
	}
	if out.TotalEnrolled > 0 {
		out.AvgProgress = int(math.Round(float64(progressSum) / float64(out.TotalEnrolled)))
	}
	return out, nil
}

// bucketByMonth folds creation timestamps into per-month counts. Every
// month in the window appears even when its count is zero, so the chart
// axis stays stable.
func bucketByMonth(created []time.Time, since time.Time) []MonthCount {
	counts := make(map[MonthCount]int64)
	for _, ts := range created {
		ts = ts.UTC()
		if ts.Before(since) {
			continue
		}
		counts[MonthCount{Year: ts.Year(), Month: int(ts.Month())}]++
	}

	buckets := make([]MonthCount, 0, dashboardMonths)
	cursor := since
	for i := 0; i < dashboardMonths; i++ {
		key := MonthCount{Year: cursor.Year(), Month: int(cursor.Month())}
		key.Count = counts[key]
		buckets = append(buckets, key)
		cursor = cursor.AddDate(0, 1, 0)
	}
	return buckets
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
