package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/edsonmucavele/engacademy-backend/pkg/auth"
	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                "test-secret",
		Issuer:                "engacademy",
		ExpirationMinutes:     30,
		RefreshExpirationDays: 7,
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	cfg := testJWTConfig()
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without credentials")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 but got %d", w.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	cfg := testJWTConfig()
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 but got %d", w.Code)
	}
}

func TestAuthSeedsActorContext(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:   userID,
		Role:     enums.UserRoleAdmin,
		Language: enums.LanguageEN,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var gotUser uuid.UUID
	var gotRole enums.UserRole
	var gotLang enums.Language
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotLang = LanguageFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 but got %d", w.Code)
	}
	if gotUser != userID {
		t.Fatalf("expected user %s in context but got %s", userID, gotUser)
	}
	if gotRole != enums.UserRoleAdmin {
		t.Fatalf("expected admin role in context but got %s", gotRole)
	}
	if gotLang != enums.LanguageEN {
		t.Fatalf("expected en language in context but got %s", gotLang)
	}
}

func TestRequireRoleHonorsHierarchy(t *testing.T) {
	cases := []struct {
		role       enums.UserRole
		minimum    enums.UserRole
		wantStatus int
	}{
		{enums.UserRoleCliente, enums.UserRoleAdmin, http.StatusForbidden},
		{enums.UserRoleAdmin, enums.UserRoleAdmin, http.StatusNoContent},
		{enums.UserRoleSuperadmin, enums.UserRoleAdmin, http.StatusNoContent},
		{enums.UserRoleAdmin, enums.UserRoleSuperadmin, http.StatusForbidden},
	}

	for _, tc := range cases {
		handler := RequireRole(tc.minimum, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithActor(req.Context(), uuid.New(), tc.role))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != tc.wantStatus {
			t.Fatalf("role %s with minimum %s: expected %d but got %d", tc.role, tc.minimum, tc.wantStatus, w.Code)
		}
	}
}
