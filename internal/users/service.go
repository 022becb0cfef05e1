package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/pagination"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// Service exposes profile and user-administration operations.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*UserDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	SetRole(ctx context.Context, actorRole enums.UserRole, userID uuid.UUID, role enums.UserRole) error
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params listUsersParams) ([]models.User, int64, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) (int64, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error)
}

type service struct {
	repo repository
}

// UpdateProfileParams carries the optional profile fields a user may change.
// Nil pointers leave the stored value untouched.
type UpdateProfileParams struct {
	Name        *string
	Phone       *string
	Avatar      *string
	Language    *enums.Language
	Theme       *string
	Bio         *string
	Profession  *string
	Location    *types.Location
	SocialLinks *types.SocialLinks
}

// ListParams configures the admin user listing.
type ListParams struct {
	Page   pagination.Params
	Role   *enums.UserRole
	Search string
}

// ListResult wraps a page of users.
type ListResult struct {
	Items      []UserDTO         `json:"items"`
	Pagination pagination.Result `json:"pagination"`
}

// NewService wires the users service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	updates := map[string]any{}
	if params.Name != nil {
		if *params.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = *params.Name
	}
	if params.Phone != nil {
		updates["phone"] = *params.Phone
	}
	if params.Avatar != nil {
		updates["avatar"] = *params.Avatar
	}
	if params.Language != nil {
		if !params.Language.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid language")
		}
		updates["language"] = *params.Language
	}
	if params.Theme != nil {
		if *params.Theme != "dark" && *params.Theme != "light" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "theme must be dark or light")
		}
		updates["theme"] = *params.Theme
	}
	if params.Bio != nil {
		updates["bio"] = *params.Bio
	}
	if params.Profession != nil {
		updates["profession"] = *params.Profession
	}
	if params.Location != nil {
		updates["location"] = params.Location
	}
	if params.SocialLinks != nil {
		updates["social_links"] = params.SocialLinks
	}

	if len(updates) > 0 {
		affected, err := s.repo.UpdateProfile(ctx, userID, updates)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
		if affected == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
	}

	return s.GetProfile(ctx, userID)
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Role != nil && !params.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role filter")
	}

	page := params.Page.Normalize()
	rows, total, err := s.repo.List(ctx, listUsersParams{
		Offset: page.Offset(),
		Limit:  page.Limit,
		Role:   params.Role,
		Search: params.Search,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{
		Items:      items,
		Pagination: pagination.NewResult(page, total),
	}, nil
}

func (s *service) SetRole(ctx context.Context, actorRole enums.UserRole, userID uuid.UUID, role enums.UserRole) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if !actorRole.Satisfies(enums.UserRoleSuperadmin) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only superadmins can change roles")
	}

	affected, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

func (s *service) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	affected, err := s.repo.SetActive(ctx, userID, active)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update active flag")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
