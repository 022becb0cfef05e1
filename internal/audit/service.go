package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/pagination"
)

// Recorder is the write-side surface other services depend on.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Service adds the admin read side and retention sweep on top of Recorder.
type Service interface {
	Recorder
	List(ctx context.Context, params ListParams) (*ListResult, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// Entry describes one audited action. PreviousData and NewData are
// marshaled to JSON before persisting.
type Entry struct {
	UserID       *uuid.UUID
	Action       enums.AuditAction
	Description  string
	TargetType   *enums.AuditTargetType
	TargetID     *uuid.UUID
	PreviousData any
	NewData      any
	IP           *string
	UserAgent    *string
	Status       enums.AuditStatus
	ErrorMessage *string
}

// ListParams filters the admin audit listing.
type ListParams struct {
	Page       pagination.Params
	UserID     *uuid.UUID
	Action     *enums.AuditAction
	TargetType *enums.AuditTargetType
	Status     *enums.AuditStatus
	From       *time.Time
	To         *time.Time
}

// ListResult wraps a page of audit entries.
type ListResult struct {
	Items      []models.AuditLog `json:"items"`
	Pagination pagination.Result `json:"pagination"`
}

// NewService wires the audit service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Record persists an audit entry. Failures are logged and swallowed so an
// audit problem never breaks the action being audited.
func (s *service) Record(ctx context.Context, entry Entry) {
	if !entry.Action.IsValid() {
		s.logg.Warn(s.logg.WithField(ctx, "action", string(entry.Action)), "skipping audit entry with unknown action")
		return
	}

	status := entry.Status
	if status == "" {
		status = enums.AuditStatusSuccess
	}

	row := &models.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		Description:  entry.Description,
		TargetType:   entry.TargetType,
		TargetID:     entry.TargetID,
		IP:           entry.IP,
		UserAgent:    entry.UserAgent,
		Status:       status,
		ErrorMessage: entry.ErrorMessage,
	}
	if entry.PreviousData != nil {
		if raw, err := json.Marshal(entry.PreviousData); err == nil {
			row.PreviousData = raw
		}
	}
	if entry.NewData != nil {
		if raw, err := json.Marshal(entry.NewData); err == nil {
			row.NewData = raw
		}
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "action", string(entry.Action)), "failed to write audit entry", err)
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Action != nil && !params.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid action filter")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	page := params.Page.Normalize()
	rows, total, err := s.repo.List(ctx, listAuditLogsParams{
		Offset:     page.Offset(),
		Limit:      page.Limit,
		UserID:     params.UserID,
		Action:     params.Action,
		TargetType: params.TargetType,
		Status:     params.Status,
		From:       params.From,
		To:         params.To,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}

	return &ListResult{
		Items:      rows,
		Pagination: pagination.NewResult(page, total),
	}, nil
}

func (s *service) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete audit entries")
	}
	return count, nil
}
