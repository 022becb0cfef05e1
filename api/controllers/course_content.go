package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edsonmucavele/engacademy-backend/api/responses"
	"github.com/edsonmucavele/engacademy-backend/api/validators"
	"github.com/edsonmucavele/engacademy-backend/internal/catalog"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

type createModuleBody struct {
	Title       types.Bilingual `json:"title" validate:"required"`
	Description types.Bilingual `json:"description"`
	Order       int             `json:"order,omitempty"`
	IsPublished *bool           `json:"isPublished,omitempty"`
}

func CreateModule(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		courseID, err := validators.PathUUID(chi.URLParam(r, "courseId"), "courseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createModuleBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		module, err := svc.CreateModule(r.Context(), catalogActor(r), courseID, catalog.CreateModuleInput{
			Title:       body.Title,
			Description: body.Description,
			Position:    body.Order,
			IsPublished: body.IsPublished,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, module)
	}
}

type updateModuleBody struct {
	Title       *types.Bilingual `json:"title,omitempty"`
	Description *types.Bilingual `json:"description,omitempty"`
	Order       *int             `json:"order,omitempty"`
	IsPublished *bool            `json:"isPublished,omitempty"`
}

func UpdateModule(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		moduleID, err := validators.PathUUID(chi.URLParam(r, "moduleId"), "moduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateModuleBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		module, err := svc.UpdateModule(r.Context(), catalogActor(r), moduleID, catalog.UpdateModuleInput{
			Title:       body.Title,
			Description: body.Description,
			Position:    body.Order,
			IsPublished: body.IsPublished,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, module)
	}
}

func DeleteModule(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		moduleID, err := validators.PathUUID(chi.URLParam(r, "moduleId"), "moduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteModule(r.Context(), catalogActor(r), moduleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createLessonBody struct {
	Title       types.Bilingual `json:"title" validate:"required"`
	Description types.Bilingual `json:"description"`
	Order       int             `json:"order,omitempty"`
	Duration    int             `json:"duration,omitempty"`
	IsFree      bool            `json:"isFree,omitempty"`
	IsPublished *bool           `json:"isPublished,omitempty"`
}

func CreateLesson(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		moduleID, err := validators.PathUUID(chi.URLParam(r, "moduleId"), "moduleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createLessonBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lesson, err := svc.CreateLesson(r.Context(), catalogActor(r), moduleID, catalog.CreateLessonInput{
			Title:           body.Title,
			Description:     body.Description,
			Position:        body.Order,
			DurationMinutes: body.Duration,
			IsFree:          body.IsFree,
			IsPublished:     body.IsPublished,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lesson)
	}
}

type updateLessonBody struct {
	Title       *types.Bilingual `json:"title,omitempty"`
	Description *types.Bilingual `json:"description,omitempty"`
	Order       *int             `json:"order,omitempty"`
	Duration    *int             `json:"duration,omitempty"`
	IsFree      *bool            `json:"isFree,omitempty"`
	IsPublished *bool            `json:"isPublished,omitempty"`
}

func UpdateLesson(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		lessonID, err := validators.PathUUID(chi.URLParam(r, "lessonId"), "lessonId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateLessonBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lesson, err := svc.UpdateLesson(r.Context(), catalogActor(r), lessonID, catalog.UpdateLessonInput{
			Title:           body.Title,
			Description:     body.Description,
			Position:        body.Order,
			DurationMinutes: body.Duration,
			IsFree:          body.IsFree,
			IsPublished:     body.IsPublished,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lesson)
	}
}

func DeleteLesson(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		lessonID, err := validators.PathUUID(chi.URLParam(r, "lessonId"), "lessonId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteLesson(r.Context(), catalogActor(r), lessonID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type addMaterialBody struct {
	Title              types.Bilingual `json:"title" validate:"required"`
	Description        types.Bilingual `json:"description"`
	Type               string          `json:"type" validate:"required"`
	FileType           string          `json:"fileType" validate:"required"`
	FileURL            string          `json:"fileUrl" validate:"required,url"`
	CloudinaryPublicID *string         `json:"cloudinaryPublicId,omitempty"`
	MimeType           *string         `json:"mimeType,omitempty"`
	FileSize           *int64          `json:"fileSize,omitempty"`
	Duration           int             `json:"duration,omitempty"`
	IsDownloadable     bool            `json:"isDownloadable,omitempty"`
}

func AddLessonMaterial(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		lessonID, err := validators.PathUUID(chi.URLParam(r, "lessonId"), "lessonId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addMaterialBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		material, err := svc.AddMaterial(r.Context(), catalogActor(r), lessonID, catalog.AddMaterialInput{
			Title:           body.Title,
			Description:     body.Description,
			Type:            body.Type,
			FileType:        body.FileType,
			FileURL:         body.FileURL,
			StoragePublicID: body.CloudinaryPublicID,
			MimeType:        body.MimeType,
			FileSizeBytes:   body.FileSize,
			DurationMinutes: body.Duration,
			IsDownloadable:  body.IsDownloadable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, material)
	}
}

func RemoveLessonMaterial(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		lessonID, err := validators.PathUUID(chi.URLParam(r, "lessonId"), "lessonId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		materialID, err := validators.PathUUID(chi.URLParam(r, "materialId"), "materialId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveMaterial(r.Context(), catalogActor(r), lessonID, materialID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
