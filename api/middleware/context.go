package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxLanguage contextKey = "language"
)

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.UserRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.UserRole); ok {
		return v
	}
	return ""
}

// LanguageFromContext returns the actor's preferred language, defaulting to Portuguese.
func LanguageFromContext(ctx context.Context) enums.Language {
	if ctx != nil {
		if v, ok := ctx.Value(ctxLanguage).(enums.Language); ok && v.IsValid() {
			return v
		}
	}
	return enums.LanguagePT
}

// WithActor seeds the context with the authenticated principal. Exposed for tests
// and for work started outside the HTTP auth chain.
func WithActor(ctx context.Context, userID uuid.UUID, role enums.UserRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}

func withLanguage(ctx context.Context, lang enums.Language) context.Context {
	if !lang.IsValid() {
		return ctx
	}
	return context.WithValue(ctx, ctxLanguage, lang)
}
