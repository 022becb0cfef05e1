package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/pagination"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	SendAdminMessage(ctx context.Context, params AdminMessageParams) (*models.Notification, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for a user's notifications.
type ListParams struct {
	UserID     uuid.UUID
	Page       pagination.Params
	UnreadOnly bool
}

// ListResult wraps returned notifications with page metadata and the unread badge count.
type ListResult struct {
	Items       []models.Notification `json:"items"`
	Pagination  pagination.Result     `json:"pagination"`
	UnreadCount int64                 `json:"unreadCount"`
}

// AdminMessageParams carries an admin-authored notification for a single user.
type AdminMessageParams struct {
	UserID    uuid.UUID
	Title     types.Bilingual
	Message   types.Bilingual
	Priority  enums.NotificationPriority
	Data      *types.NotificationData
	ExpiresAt *time.Time
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	page := params.Page.Normalize()
	rows, total, err := s.repo.List(ctx, listNotificationsParams{
		UserID:     params.UserID,
		Offset:     page.Offset(),
		Limit:      page.Limit,
		UnreadOnly: params.UnreadOnly,
		Now:        time.Now().UTC(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	unread, err := s.repo.CountUnread(ctx, params.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}

	return &ListResult{
		Items:       rows,
		Pagination:  pagination.NewResult(page, total),
		UnreadCount: unread,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) SendAdminMessage(ctx context.Context, params AdminMessageParams) (*models.Notification, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if params.Title.PT == "" || params.Title.EN == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bilingual title required")
	}
	if params.Message.PT == "" || params.Message.EN == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bilingual message required")
	}
	priority := params.Priority
	if priority == "" {
		priority = enums.NotificationPriorityNormal
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification priority")
	}

	notification := &models.Notification{
		UserID:    params.UserID,
		Type:      enums.NotificationTypeAdminMessage,
		Title:     params.Title,
		Message:   params.Message,
		Data:      params.Data,
		Priority:  priority,
		ExpiresAt: params.ExpiresAt,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return notification, nil
}

func (s *service) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expired notifications")
	}
	return count, nil
}
