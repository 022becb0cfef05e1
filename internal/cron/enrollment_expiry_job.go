package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
)

type enrollmentExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type EnrollmentExpiryJobParams struct {
	Logger      *logger.Logger
	Enrollments enrollmentExpirer
}

func NewEnrollmentExpiryJob(params EnrollmentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Enrollments == nil {
		return nil, fmt.Errorf("enrollments service required")
	}
	return &enrollmentExpiryJob{
		logg:        params.Logger,
		enrollments: params.Enrollments,
		now:         time.Now,
	}, nil
}

type enrollmentExpiryJob struct {
	logg        *logger.Logger
	enrollments enrollmentExpirer
	now         func() time.Time
}

func (j *enrollmentExpiryJob) Name() string { return "enrollment-expiry" }

func (j *enrollmentExpiryJob) Run(ctx context.Context) error {
	expired, err := j.enrollments.ExpireOverdue(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("enrollment expiry: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_expired", expired)
	j.logg.Info(logCtx, "enrollment expiry sweep complete")
	return nil
}
