package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/internal/audit"
	"github.com/edsonmucavele/engacademy-backend/internal/users"
	pkgauth "github.com/edsonmucavele/engacademy-backend/pkg/auth"
	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest, meta RequestMeta) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest, meta RequestMeta) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, meta RequestMeta) error
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionStore interface {
	StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, userID string) (string, error)
	RevokeRefreshToken(ctx context.Context, userID string) error
}

type service struct {
	users       userRepository
	sessions    sessionStore
	audit       audit.Recorder
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	Sessions       sessionStore
	Audit          audit.Recorder
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session store required")
	}
	if params.Audit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "audit recorder required")
	}
	return &service{
		users:       params.UserRepo,
		sessions:    params.Sessions,
		audit:       params.Audit,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest, meta RequestMeta) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(req.Password) < 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must have at least 6 characters")
	}
	if req.Language != "" && !req.Language.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid language")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        req.Phone,
		Language:     req.Language,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	targetType := enums.AuditTargetUser
	s.audit.Record(ctx, audit.Entry{
		UserID:      &user.ID,
		Action:      enums.AuditActionRegister,
		Description: "new account registered",
		TargetType:  &targetType,
		TargetID:    &user.ID,
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
	})

	return s.issueTokens(ctx, user)
}

func (s *service) Login(ctx context.Context, req LoginRequest, meta RequestMeta) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		s.recordLoginFailure(ctx, user, meta)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	user.LastLoginAt = &now

	targetType := enums.AuditTargetUser
	s.audit.Record(ctx, audit.Entry{
		UserID:      &user.ID,
		Action:      enums.AuditActionLogin,
		Description: "user logged in",
		TargetType:  &targetType,
		TargetID:    &user.ID,
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
	})

	return s.issueTokens(ctx, user)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token required")
	}

	claims, err := pkgauth.ParseRefreshToken(s.jwtCfg, refreshToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
	}

	stored, err := s.sessions.GetRefreshToken(ctx, claims.UserID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "refresh session not found")
	}
	if stored != refreshToken {
		// A mismatch means the token was rotated or revoked.
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh token revoked")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.issueTokens(ctx, user)
}

func (s *service) Logout(ctx context.Context, userID uuid.UUID, meta RequestMeta) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if err := s.sessions.RevokeRefreshToken(ctx, userID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke refresh token")
	}

	targetType := enums.AuditTargetUser
	s.audit.Record(ctx, audit.Entry{
		UserID:      &userID,
		Action:      enums.AuditActionLogout,
		Description: "user logged out",
		TargetType:  &targetType,
		TargetID:    &userID,
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
	})
	return nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User) (*AuthResponse, error) {
	now := time.Now().UTC()

	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Role:     user.Role,
		Language: user.Language,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refreshToken, err := pkgauth.MintRefreshToken(s.jwtCfg, now, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}

	refreshTTL := time.Duration(s.jwtCfg.RefreshExpirationDays) * 24 * time.Hour
	if err := s.sessions.StoreRefreshToken(ctx, user.ID.String(), refreshToken, refreshTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}

	return &AuthResponse{
		User:         users.FromModel(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.jwtCfg.ExpirationMinutes * 60,
	}, nil
}

func (s *service) recordLoginFailure(ctx context.Context, user *models.User, meta RequestMeta) {
	targetType := enums.AuditTargetUser
	message := "wrong password"
	s.audit.Record(ctx, audit.Entry{
		UserID:       &user.ID,
		Action:       enums.AuditActionLogin,
		Description:  "login attempt failed",
		TargetType:   &targetType,
		TargetID:     &user.ID,
		IP:           meta.IP,
		UserAgent:    meta.UserAgent,
		Status:       enums.AuditStatusFailure,
		ErrorMessage: &message,
	})
}
