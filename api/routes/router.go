package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edsonmucavele/engacademy-backend/api/controllers"
	"github.com/edsonmucavele/engacademy-backend/api/middleware"
	"github.com/edsonmucavele/engacademy-backend/internal/audit"
	"github.com/edsonmucavele/engacademy-backend/internal/auth"
	"github.com/edsonmucavele/engacademy-backend/internal/catalog"
	"github.com/edsonmucavele/engacademy-backend/internal/enrollments"
	"github.com/edsonmucavele/engacademy-backend/internal/notifications"
	"github.com/edsonmucavele/engacademy-backend/internal/stats"
	"github.com/edsonmucavele/engacademy-backend/internal/users"
	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/db"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Registry      *prometheus.Registry
	Auth          auth.Service
	Users         users.Service
	Catalog       catalog.Service
	Enrollments   enrollments.Service
	Notifications notifications.Service
	Audit         audit.Service
	Stats         stats.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRate.LoginWindow,
		cfg.AuthRate.LoginIPLimit,
		cfg.AuthRate.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRate.RegisterWindow,
		cfg.AuthRate.RegisterIPLimit,
		cfg.AuthRate.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, logg)
	requireAdmin := middleware.RequireRole(enums.UserRoleAdmin, logg)
	requireSuperadmin := middleware.RequireRole(enums.UserRoleSuperadmin, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/me", controllers.GetMyProfile(deps.Users, logg))
		r.Put("/me", controllers.UpdateMyProfile(deps.Users, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", controllers.ListUsers(deps.Users, logg))
			r.With(requireSuperadmin).Put("/{userId}/role", controllers.SetUserRole(deps.Users, logg))
			r.Put("/{userId}/active", controllers.SetUserActive(deps.Users, logg))
		})
	})

	r.Route("/api/v1/courses", func(r chi.Router) {
		// Public catalog. Auth is optional here: drafts stay hidden for
		// anonymous and cliente traffic.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Get("/", controllers.ListCourses(deps.Catalog, logg))
			r.Get("/{courseId}", controllers.GetCourse(deps.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", controllers.CreateCourse(deps.Catalog, logg))
			r.Put("/{courseId}", controllers.UpdateCourse(deps.Catalog, logg))
			r.Delete("/{courseId}", controllers.DeleteCourse(deps.Catalog, logg))
			r.Put("/{courseId}/publish", controllers.SetCoursePublished(deps.Catalog, logg))
			r.Post("/{courseId}/modules", controllers.CreateModule(deps.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/{courseId}/progress", controllers.RecordProgress(deps.Enrollments, logg))
		})
	})

	r.Route("/api/v1/modules", func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Put("/{moduleId}", controllers.UpdateModule(deps.Catalog, logg))
		r.Delete("/{moduleId}", controllers.DeleteModule(deps.Catalog, logg))
		r.Post("/{moduleId}/lessons", controllers.CreateLesson(deps.Catalog, logg))
	})

	r.Route("/api/v1/lessons", func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Put("/{lessonId}", controllers.UpdateLesson(deps.Catalog, logg))
		r.Delete("/{lessonId}", controllers.DeleteLesson(deps.Catalog, logg))
		r.Post("/{lessonId}/materials", controllers.AddLessonMaterial(deps.Catalog, logg))
		r.Delete("/{lessonId}/materials/{materialId}", controllers.RemoveLessonMaterial(deps.Catalog, logg))
	})

	r.Route("/api/v1/enrollments", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", controllers.CreateEnrollment(deps.Enrollments, logg))
		r.Get("/me", controllers.ListMyEnrollments(deps.Enrollments, logg))
		r.Get("/{enrollmentId}", controllers.GetEnrollment(deps.Enrollments, logg))
		r.Post("/{enrollmentId}/cancel", controllers.CancelEnrollment(deps.Enrollments, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", controllers.ListAllEnrollments(deps.Enrollments, logg))
			r.Post("/{enrollmentId}/approve", controllers.ApproveEnrollment(deps.Enrollments, logg))
			r.Post("/{enrollmentId}/reject", controllers.RejectEnrollment(deps.Enrollments, logg))
		})
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
		r.Put("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
		r.Put("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		r.With(requireAdmin).Post("/message", controllers.SendAdminNotification(deps.Notifications, logg))
	})

	r.Route("/api/v1/stats", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/me", controllers.GetMyStats(deps.Stats, logg))
		r.With(requireAdmin).Get("/dashboard", controllers.GetDashboardStats(deps.Stats, logg))
	})

	r.Route("/api/v1/audit-logs", func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Get("/", controllers.ListAuditLogs(deps.Audit, logg))
	})

	return r
}
