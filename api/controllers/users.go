package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edsonmucavele/engacademy-backend/api/middleware"
	"github.com/edsonmucavele/engacademy-backend/api/responses"
	"github.com/edsonmucavele/engacademy-backend/api/validators"
	"github.com/edsonmucavele/engacademy-backend/internal/users"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// GetMyProfile returns the authenticated user's profile.
func GetMyProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		profile, err := svc.GetProfile(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type updateProfileBody struct {
	Name        *string            `json:"name,omitempty" validate:"omitempty,min=2"`
	Phone       *string            `json:"phone,omitempty"`
	Avatar      *string            `json:"avatar,omitempty"`
	Language    *string            `json:"language,omitempty"`
	Theme       *string            `json:"theme,omitempty"`
	Bio         *string            `json:"bio,omitempty"`
	Profession  *string            `json:"profession,omitempty"`
	Location    *types.Location    `json:"location,omitempty"`
	SocialLinks *types.SocialLinks `json:"socialLinks,omitempty"`
}

func UpdateMyProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body updateProfileBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := users.UpdateProfileParams{
			Name:        body.Name,
			Phone:       body.Phone,
			Avatar:      body.Avatar,
			Theme:       body.Theme,
			Bio:         body.Bio,
			Profession:  body.Profession,
			Location:    body.Location,
			SocialLinks: body.SocialLinks,
		}
		if body.Language != nil {
			lang := enums.Language(*body.Language)
			if !lang.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "language must be pt or en"))
				return
			}
			params.Language = &lang
		}

		profile, err := svc.UpdateProfile(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ListUsers is the admin user directory with role and search filters.
func ListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := users.ListParams{Page: page}
		if raw := validators.QueryString(r, "role"); raw != nil {
			role, err := enums.ParseUserRole(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter"))
				return
			}
			params.Role = &role
		}
		if raw := validators.QueryString(r, "search"); raw != nil {
			params.Search = *raw
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type setRoleBody struct {
	Role string `json:"role" validate:"required"`
}

// SetUserRole changes another user's role tier. Promotion to superadmin is
// enforced inside the service.
func SetUserRole(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := validators.PathUUID(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setRoleBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseUserRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		actorRole := middleware.RoleFromContext(r.Context())
		if err := svc.SetRole(r.Context(), actorRole, userID, role); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

type setActiveBody struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func SetUserActive(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := validators.PathUUID(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setActiveBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), userID, *body.IsActive); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
