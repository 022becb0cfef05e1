package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
)

type notificationSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	Notifications notificationSweeper
	GraceDays     int
}

func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	grace := params.GraceDays
	if grace < 0 {
		grace = 0
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		notifs:    params.Notifications,
		graceDays: grace,
		now:       time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	notifs    notificationSweeper
	graceDays int
	now       func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

// Run deletes notifications whose expiry passed more than the grace window
// ago. Grace zero means expired rows go on the next sweep.
func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.graceDays) * 24 * time.Hour)
	deleted, err := j.notifs.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"grace_days":   j.graceDays,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
