package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
)

const auditRetentionDays = 90

type auditSweeper interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type AuditRetentionJobParams struct {
	Logger    *logger.Logger
	Audit     auditSweeper
	Retention int
}

func NewAuditRetentionJob(params AuditRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = auditRetentionDays
	}
	return &auditRetentionJob{
		logg:      params.Logger,
		audit:     params.Audit,
		retention: retention,
		now:       time.Now,
	}, nil
}

type auditRetentionJob struct {
	logg      *logger.Logger
	audit     auditSweeper
	retention int
	now       func() time.Time
}

func (j *auditRetentionJob) Name() string { return "audit-retention" }

func (j *auditRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.audit.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("audit retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "audit retention sweep complete")
	return nil
}
