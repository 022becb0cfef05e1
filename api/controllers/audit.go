package controllers

import (
	"net/http"
	"time"

	"github.com/edsonmucavele/engacademy-backend/api/responses"
	"github.com/edsonmucavele/engacademy-backend/api/validators"
	"github.com/edsonmucavele/engacademy-backend/internal/audit"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
)

// ListAuditLogs is the admin view over the audit trail.
func ListAuditLogs(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := audit.ListParams{Page: page}

		if raw := validators.QueryString(r, "userId"); raw != nil {
			id, err := validators.PathUUID(*raw, "userId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			params.UserID = &id
		}
		if raw := validators.QueryString(r, "action"); raw != nil {
			action, err := enums.ParseAuditAction(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action filter"))
				return
			}
			params.Action = &action
		}
		if raw := validators.QueryString(r, "targetType"); raw != nil {
			target := enums.AuditTargetType(*raw)
			if !target.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid targetType filter"))
				return
			}
			params.TargetType = &target
		}
		if raw := validators.QueryString(r, "status"); raw != nil {
			status := enums.AuditStatus(*raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			params.Status = &status
		}
		if raw := validators.QueryString(r, "from"); raw != nil {
			from, err := time.Parse(time.RFC3339, *raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "from must be RFC3339"))
				return
			}
			params.From = &from
		}
		if raw := validators.QueryString(r, "to"); raw != nil {
			to, err := time.Parse(time.RFC3339, *raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "to must be RFC3339"))
				return
			}
			params.To = &to
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
