package audit

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
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
)

type fakeAuditRepo struct {
	createFn func(ctx context.Context, entry *models.AuditLog) error
	listFn   func(ctx context.Context, params listAuditLogsParams) ([]models.AuditLog, int64, error)
	deleteFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (f *fakeAuditRepo) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, params listAuditLogsParams) ([]models.AuditLog, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeAuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, cutoff)
	}
	return 0, nil
}

func newAuditService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, logger.New(logger.Options{}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestService_RecordPersistsEntry(t *testing.T) {
	var created *models.AuditLog
	repo := &fakeAuditRepo{
		createFn: func(ctx context.Context, entry *models.AuditLog) error {
			created = entry
			return nil
		},
	}
	svc := newAuditService(t, repo)

	userID := uuid.New()
	svc.Record(context.Background(), Entry{
		UserID:      &userID,
		Action:      enums.AuditActionLogin,
		Description: "user logged in",
		NewData:     map[string]string{"email": "ana@example.com"},
	})

	if created == nil {
		t.Fatal("expected entry to be created")
	}
	if created.Status != enums.AuditStatusSuccess {
		t.Fatalf("expected default success status, got %s", created.Status)
	}
	if len(created.NewData) == 0 {
		t.Fatal("expected new data to be marshaled")
	}
}

func TestService_RecordSwallowsRepoErrors(t *testing.T) {
	repo := &fakeAuditRepo{
		createFn: func(ctx context.Context, entry *models.AuditLog) error {
			return errors.New("db down")
		},
	}
	svc := newAuditService(t, repo)

	// Must not panic or propagate the failure.
	svc.Record(context.Background(), Entry{Action: enums.AuditActionLogout})
}

func TestService_RecordSkipsUnknownAction(t *testing.T) {
	called := false
	repo := &fakeAuditRepo{
		createFn: func(ctx context.Context, entry *models.AuditLog) error {
			called = true
			return nil
		},
	}
	svc := newAuditService(t, repo)

	svc.Record(context.Background(), Entry{Action: enums.AuditAction("made_up")})
	if called {
		t.Fatal("expected unknown action to be skipped")
	}
}

func TestService_ListValidatesFilters(t *testing.T) {
	svc := newAuditService(t, &fakeAuditRepo{})
	bad := enums.AuditAction("nope")
	_, err := svc.List(context.Background(), ListParams{Action: &bad})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_DeleteOlderThan(t *testing.T) {
	repo := &fakeAuditRepo{
		deleteFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			return 12, nil
		},
	}
	svc := newAuditService(t, repo)
	count, err := svc.DeleteOlderThan(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected 12 deleted rows, got %d", count)
	}
}
