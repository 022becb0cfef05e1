package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/internal/audit"
	"github.com/edsonmucavele/engacademy-backend/internal/users"
	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:                "test-secret",
	Issuer:                "engacademy-test",
	ExpirationMinutes:     15,
	RefreshExpirationDays: 7,
}

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	created *models.User

	lastLoginID uuid.UUID
}

func newFakeUserRepo(seed ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
	for _, user := range seed {
		repo.byEmail[user.Email] = user
		repo.byID[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	f.created = user
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.lastLoginID = id
	return nil
}

type fakeSessionStore struct {
	tokens  map[string]string
	revoked []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{tokens: map[string]string{}}
}

func (f *fakeSessionStore) StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	f.tokens[userID] = token
	return nil
}

func (f *fakeSessionStore) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	if token, ok := f.tokens[userID]; ok {
		return token, nil
	}
	return "", gorm.ErrRecordNotFound
}

func (f *fakeSessionStore) RevokeRefreshToken(ctx context.Context, userID string) error {
	delete(f.tokens, userID)
	f.revoked = append(f.revoked, userID)
	return nil
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, entry audit.Entry) {
	f.entries = append(f.entries, entry)
}

func newTestUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Name:         "Ana Macuácua",
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleCliente,
		Language:     enums.LanguagePT,
		IsActive:     true,
	}
}

func newAuthService(t *testing.T, repo userRepository, sessions sessionStore, recorder audit.Recorder) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:  repo,
		Sessions:  sessions,
		Audit:     recorder,
		JWTConfig: testJWTConfig,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestService_RegisterIssuesTokens(t *testing.T) {
	repo := newFakeUserRepo()
	sessions := newFakeSessionStore()
	recorder := &fakeRecorder{}
	svc := newAuthService(t, repo, sessions, recorder)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ana Macuácua",
		Email:    "Ana@Example.com",
		Password: "senha-segura",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected tokens to be issued")
	}
	if repo.created == nil || repo.created.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %+v", repo.created)
	}
	if repo.created.Role != enums.UserRoleCliente {
		t.Fatalf("expected cliente role, got %s", repo.created.Role)
	}
	if sessions.tokens[repo.created.ID.String()] != resp.RefreshToken {
		t.Fatal("expected refresh token to be stored")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionRegister {
		t.Fatalf("expected register audit entry, got %+v", recorder.entries)
	}
}

func TestService_RegisterDuplicateEmail(t *testing.T) {
	existing := newTestUser(t, "ana@example.com", "senha-segura")
	svc := newAuthService(t, newFakeUserRepo(existing), newFakeSessionStore(), &fakeRecorder{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Outra Ana",
		Email:    "ana@example.com",
		Password: "senha-segura",
	}, RequestMeta{})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_LoginSuccess(t *testing.T) {
	user := newTestUser(t, "ana@example.com", "senha-segura")
	repo := newFakeUserRepo(user)
	recorder := &fakeRecorder{}
	svc := newAuthService(t, repo, newFakeSessionStore(), recorder)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "senha-segura",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected user in response: %+v", resp.User)
	}
	if repo.lastLoginID != user.ID {
		t.Fatal("expected last login to be recorded")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionLogin {
		t.Fatalf("expected login audit entry, got %+v", recorder.entries)
	}
}

func TestService_LoginWrongPassword(t *testing.T) {
	user := newTestUser(t, "ana@example.com", "senha-segura")
	recorder := &fakeRecorder{}
	svc := newAuthService(t, newFakeUserRepo(user), newFakeSessionStore(), recorder)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "senha-errada",
	}, RequestMeta{})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Status != enums.AuditStatusFailure {
		t.Fatalf("expected failure audit entry, got %+v", recorder.entries)
	}
}

func TestService_LoginInactiveUser(t *testing.T) {
	user := newTestUser(t, "ana@example.com", "senha-segura")
	user.IsActive = false
	svc := newAuthService(t, newFakeUserRepo(user), newFakeSessionStore(), &fakeRecorder{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "senha-segura",
	}, RequestMeta{})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestService_RefreshRotatesToken(t *testing.T) {
	user := newTestUser(t, "ana@example.com", "senha-segura")
	sessions := newFakeSessionStore()
	svc := newAuthService(t, newFakeUserRepo(user), sessions, &fakeRecorder{})

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "senha-segura",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatal("expected a new access token")
	}
	if sessions.tokens[user.ID.String()] != refreshed.RefreshToken {
		t.Fatal("expected rotated refresh token to be stored")
	}
}

func TestService_RefreshRevokedToken(t *testing.T) {
	user := newTestUser(t, "ana@example.com", "senha-segura")
	sessions := newFakeSessionStore()
	svc := newAuthService(t, newFakeUserRepo(user), sessions, &fakeRecorder{})

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "senha-segura",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), user.ID, RequestMeta{}); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	if err == nil {
		t.Fatal("expected error for revoked token")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
