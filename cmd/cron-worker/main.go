package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/edsonmucavele/engacademy-backend/internal/audit"
	"github.com/edsonmucavele/engacademy-backend/internal/catalog"
	"github.com/edsonmucavele/engacademy-backend/internal/cron"
	"github.com/edsonmucavele/engacademy-backend/internal/enrollments"
	"github.com/edsonmucavele/engacademy-backend/internal/notifications"
	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/db"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/metrics"
	"github.com/edsonmucavele/engacademy-backend/pkg/migrate"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox"
	"github.com/edsonmucavele/engacademy-backend/pkg/redis"
)

const lockKeyFormat = "ea:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build audit service", err)
		os.Exit(1)
	}
	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to build notification service", err)
		os.Exit(1)
	}
	outboxRepo := outbox.NewRepository(dbClient.DB())
	enrollmentService, err := enrollments.NewService(enrollments.ServiceParams{
		DB:          dbClient,
		Repo:        enrollments.NewRepository(dbClient.DB()),
		Catalog:     catalog.NewRepository(dbClient.DB()),
		Outbox:      outbox.NewService(outboxRepo, logg),
		Audit:       auditService,
		Logg:        logg,
		PendingDays: cfg.Enrollment.PendingDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build enrollment service", err)
		os.Exit(1)
	}

	auditJob, err := cron.NewAuditRetentionJob(cron.AuditRetentionJobParams{
		Logger:    logg,
		Audit:     auditService,
		Retention: cfg.Retention.AuditLogDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build audit retention job", err)
		os.Exit(1)
	}
	notificationJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:        logg,
		Notifications: notificationService,
		GraceDays:     cfg.Retention.NotificationGraceDay,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build notification cleanup job", err)
		os.Exit(1)
	}
	expiryJob, err := cron.NewEnrollmentExpiryJob(cron.EnrollmentExpiryJobParams{
		Logger:      logg,
		Enrollments: enrollmentService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build enrollment expiry job", err)
		os.Exit(1)
	}
	outboxJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build outbox retention job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Jobs:     []cron.Job{auditJob, notificationJob, expiryJob, outboxJob},
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Retention.CronInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
