package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/api/middleware"
	"github.com/edsonmucavele/engacademy-backend/api/responses"
	"github.com/edsonmucavele/engacademy-backend/api/validators"
	"github.com/edsonmucavele/engacademy-backend/internal/enrollments"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

func enrollmentActor(r *http.Request) enrollments.Actor {
	return enrollments.Actor{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
}

type createEnrollmentBody struct {
	CourseID       uuid.UUID             `json:"courseId" validate:"required"`
	ProofURL       string                `json:"proofUrl" validate:"required,url"`
	ProofPublicID  *string               `json:"proofPublicId,omitempty"`
	PaymentMethod  string                `json:"paymentMethod" validate:"required"`
	PaymentDetails *types.PaymentDetails `json:"paymentDetails,omitempty"`
	Observations   string                `json:"observations,omitempty"`
}

// CreateEnrollment submits a payment proof and opens a pending enrollment.
func CreateEnrollment(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollments service unavailable"))
			return
		}

		var body createEnrollmentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		enrollment, err := svc.Create(r.Context(), enrollmentActor(r), enrollments.CreateInput{
			CourseID:       body.CourseID,
			ProofURL:       body.ProofURL,
			ProofPublicID:  body.ProofPublicID,
			PaymentMethod:  body.PaymentMethod,
			PaymentDetails: body.PaymentDetails,
			Observations:   body.Observations,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, enrollment)
	}
}

func enrollmentListParams(r *http.Request) (enrollments.ListParams, error) {
	page, err := validators.ParsePagination(r)
	if err != nil {
		return enrollments.ListParams{}, err
	}
	params := enrollments.ListParams{
		Page:   page,
		Status: validators.QueryString(r, "status"),
	}
	if raw := validators.QueryString(r, "courseId"); raw != nil {
		id, err := validators.PathUUID(*raw, "courseId")
		if err != nil {
			return enrollments.ListParams{}, err
		}
		params.CourseID = &id
	}
	return params, nil
}

// ListMyEnrollments returns the caller's own enrollments.
func ListMyEnrollments(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollments service unavailable"))
			return
		}

		params, err := enrollmentListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMine(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListAllEnrollments is the admin review queue.
func ListAllEnrollments(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollments service unavailable"))
			return
		}

		params, err := enrollmentListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetEnrollment(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollments service unavailable"))
			return
		}

		enrollmentID, err := validators.PathUUID(chi.URLParam(r, "enrollmentId"), "enrollmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		enrollment, err := svc.Get(r.Context(), enrollmentActor(r), enrollmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, enrollment)
	}
}

type approveEnrollmentBody struct {
	AdminNotes string `json:"adminNotes,omitempty"`
}

func ApproveEnrollment(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollments service unavailable"))
			return
		}

		enrollmentID, err := validators.PathUUID(chi.URLParam(r, "enrollmentId"), "enrollmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body approveEnrollmentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		enrollment, err := svc.Approve(r.Context(), enrollmentActor(r), enrollmentID, body.AdminNotes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, enrollment)
	}
}

type rejectEnrollmentBody struct {
	RejectionReason string `json:"rejectionReason" validate:"required,min=3"`
	AdminNotes      string `json:"adminNotes,omitempty"`
}

func RejectEnrollment(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollments service unavailable"))
			return
		}

		enrollmentID, err := validators.PathUUID(chi.URLParam(r, "enrollmentId"), "enrollmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectEnrollmentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		enrollment, err := svc.Reject(r.Context(), enrollmentActor(r), enrollmentID, body.RejectionReason, body.AdminNotes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, enrollment)
	}
}

func CancelEnrollment(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollments service unavailable"))
			return
		}

		enrollmentID, err := validators.PathUUID(chi.URLParam(r, "enrollmentId"), "enrollmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		enrollment, err := svc.Cancel(r.Context(), enrollmentActor(r), enrollmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, enrollment)
	}
}

type progressBody struct {
	LessonID     uuid.UUID `json:"lessonId" validate:"required"`
	Completed    *bool     `json:"completed,omitempty"`
	WatchTime    *int      `json:"watchTime,omitempty"`
	LastPosition *int      `json:"lastPosition,omitempty"`
}

// RecordProgress upserts per-lesson progress for the caller's approved
// enrollment in the course.
func RecordProgress(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "enrollments service unavailable"))
			return
		}

		courseID, err := validators.PathUUID(chi.URLParam(r, "courseId"), "courseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body progressBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		enrollment, err := svc.RecordProgress(r.Context(), enrollmentActor(r), courseID, enrollments.ProgressInput{
			LessonID:            body.LessonID,
			Completed:           body.Completed,
			WatchTimeSeconds:    body.WatchTime,
			LastPositionSeconds: body.LastPosition,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, enrollment)
	}
}
