package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/pagination"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

type fakeRepository struct {
	createFn        func(ctx context.Context, notification *models.Notification) error
	listFn          func(ctx context.Context, params listNotificationsParams) ([]models.Notification, int64, error)
	countUnreadFn   func(ctx context.Context, userID uuid.UUID) (int64, error)
	markReadFn      func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn   func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	deleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	if f.createFn != nil {
		return f.createFn(ctx, notification)
	}
	return nil
}

func (f *fakeRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.countUnreadFn != nil {
		return f.countUnreadFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID, now)
	}
	return 0, nil
}

func (f *fakeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if f.deleteExpiredFn != nil {
		return f.deleteExpiredFn(ctx, now)
	}
	return 0, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	userID := uuid.New()
	row := models.Notification{ID: uuid.New(), UserID: userID, CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, int64, error) {
			if params.UserID != userID {
				t.Fatalf("unexpected user id %s", params.UserID)
			}
			if params.Limit != 5 || params.Offset != 5 {
				t.Fatalf("unexpected window limit=%d offset=%d", params.Limit, params.Offset)
			}
			return []models.Notification{row}, 11, nil
		},
		countUnreadFn: func(ctx context.Context, id uuid.UUID) (int64, error) {
			return 4, nil
		},
	}

	svc := newServiceWithRepo(repo)
	result, err := svc.List(context.Background(), ListParams{
		UserID: userID,
		Page:   pagination.Params{Page: 2, Limit: 5},
	})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Pagination.Total != 11 || result.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination %+v", result.Pagination)
	}
	if result.UnreadCount != 4 {
		t.Fatalf("expected 4 unread, got %d", result.UnreadCount)
	}
}

func TestService_ListNotificationsMissingUser(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{})
	if err == nil {
		t.Fatal("expected error for missing user id")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_MarkRead(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: true, Updated: true}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("unexpected mark read error: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("expected not found error")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_MarkAllRead(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
			return 3, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected mark all read error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 updated rows, got %d", count)
	}
}

func TestService_SendAdminMessage(t *testing.T) {
	var created *models.Notification
	repo := &fakeRepository{
		createFn: func(ctx context.Context, notification *models.Notification) error {
			created = notification
			return nil
		},
	}
	svc := newServiceWithRepo(repo)

	_, err := svc.SendAdminMessage(context.Background(), AdminMessageParams{
		UserID:  uuid.New(),
		Title:   types.Bilingual{PT: "Aviso", EN: "Notice"},
		Message: types.Bilingual{PT: "Manutenção programada.", EN: "Scheduled maintenance."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected notification to be created")
	}
	if created.Type != enums.NotificationTypeAdminMessage {
		t.Fatalf("unexpected type %s", created.Type)
	}
	if created.Priority != enums.NotificationPriorityNormal {
		t.Fatalf("expected default priority, got %s", created.Priority)
	}
}

func TestService_SendAdminMessageMissingTitle(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.SendAdminMessage(context.Background(), AdminMessageParams{
		UserID:  uuid.New(),
		Title:   types.Bilingual{PT: "Aviso"},
		Message: types.Bilingual{PT: "Texto", EN: "Text"},
	})
	if err == nil {
		t.Fatal("expected error for missing english title")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_DeleteExpiredError(t *testing.T) {
	repo := &fakeRepository{
		deleteExpiredFn: func(ctx context.Context, now time.Time) (int64, error) {
			return 0, errors.New("boom")
		},
	}
	svc := newServiceWithRepo(repo)
	if _, err := svc.DeleteExpired(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error")
	}
}
