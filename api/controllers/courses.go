package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edsonmucavele/engacademy-backend/api/middleware"
	"github.com/edsonmucavele/engacademy-backend/api/responses"
	"github.com/edsonmucavele/engacademy-backend/api/validators"
	"github.com/edsonmucavele/engacademy-backend/internal/catalog"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	pkgerrors "github.com/edsonmucavele/engacademy-backend/pkg/errors"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

func catalogActor(r *http.Request) catalog.Actor {
	return catalog.Actor{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
}

// ListCourses serves the public catalog. Admins see drafts when they ask
// for them via includeUnpublished.
func ListCourses(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := catalog.ListCoursesParams{
			Page:          page,
			PublishedOnly: true,
			Category:      validators.QueryString(r, "category"),
			Level:         validators.QueryString(r, "level"),
			Language:      validators.QueryString(r, "language"),
		}

		featured, err := validators.QueryBool(r, "featured")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Featured = featured

		if raw := validators.QueryString(r, "search"); raw != nil {
			params.Search = *raw
		}
		if raw := validators.QueryString(r, "instructorId"); raw != nil {
			id, err := validators.PathUUID(*raw, "instructorId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			params.InstructorID = &id
		}

		if middleware.RoleFromContext(r.Context()).Satisfies(enums.UserRoleAdmin) {
			include, err := validators.QueryBool(r, "includeUnpublished")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if include != nil && *include {
				params.PublishedOnly = false
			}
		}

		result, err := svc.ListCourses(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetCourse resolves the path segment as a UUID first and falls back to
// slug lookup, mirroring how the frontend links both ways.
func GetCourse(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "courseId"))
		reader := catalogActor(r)

		if id, err := uuid.Parse(raw); err == nil {
			course, err := svc.GetCourseByID(r.Context(), reader, id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, course)
			return
		}

		course, err := svc.GetCourseBySlug(r.Context(), reader, raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, course)
	}
}

type createCourseBody struct {
	Title            types.Bilingual         `json:"title" validate:"required"`
	Description      types.Bilingual         `json:"description" validate:"required"`
	ShortDescription types.Bilingual         `json:"shortDescription"`
	InstructorID     *uuid.UUID              `json:"instructorId,omitempty"`
	ImageURL         *string                 `json:"imageUrl,omitempty"`
	PriceMZN         decimal.Decimal         `json:"priceMzn"`
	PriceUSD         decimal.Decimal         `json:"priceUsd"`
	DiscountMZN      decimal.Decimal         `json:"discountMzn"`
	DiscountUSD      decimal.Decimal         `json:"discountUsd"`
	PricingOptions   types.PricingOptionList `json:"pricingOptions,omitempty"`
	Categories       []string                `json:"categories" validate:"required,min=1"`
	Level            string                  `json:"level,omitempty"`
	Language         string                  `json:"language,omitempty"`
	Requirements     types.BilingualStrings  `json:"requirements"`
	Objectives       types.BilingualStrings  `json:"objectives"`
	TargetAudience   types.BilingualStrings  `json:"targetAudience"`
	Certificate      *bool                   `json:"certificate,omitempty"`
	PaymentInfo      *types.PaymentInfo      `json:"paymentInfo,omitempty"`
	Tags             []string                `json:"tags,omitempty"`
}

func CreateCourse(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body createCourseBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := catalogActor(r)
		instructorID := actor.UserID
		if body.InstructorID != nil {
			instructorID = *body.InstructorID
		}

		course, err := svc.CreateCourse(r.Context(), actor, catalog.CreateCourseInput{
			Title:            body.Title,
			Description:      body.Description,
			ShortDescription: body.ShortDescription,
			InstructorID:     instructorID,
			ImageURL:         body.ImageURL,
			PriceMZN:         body.PriceMZN,
			PriceUSD:         body.PriceUSD,
			DiscountMZN:      body.DiscountMZN,
			DiscountUSD:      body.DiscountUSD,
			PricingOptions:   body.PricingOptions,
			Categories:       body.Categories,
			Level:            body.Level,
			Language:         body.Language,
			Requirements:     body.Requirements,
			Objectives:       body.Objectives,
			TargetAudience:   body.TargetAudience,
			Certificate:      body.Certificate,
			PaymentInfo:      body.PaymentInfo,
			Tags:             body.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, course)
	}
}

type updateCourseBody struct {
	Title            *types.Bilingual         `json:"title,omitempty"`
	Description      *types.Bilingual         `json:"description,omitempty"`
	ShortDescription *types.Bilingual         `json:"shortDescription,omitempty"`
	ImageURL         *string                  `json:"imageUrl,omitempty"`
	PriceMZN         *decimal.Decimal         `json:"priceMzn,omitempty"`
	PriceUSD         *decimal.Decimal         `json:"priceUsd,omitempty"`
	DiscountMZN      *decimal.Decimal         `json:"discountMzn,omitempty"`
	DiscountUSD      *decimal.Decimal         `json:"discountUsd,omitempty"`
	PricingOptions   *types.PricingOptionList `json:"pricingOptions,omitempty"`
	Categories       *[]string                `json:"categories,omitempty"`
	Level            *string                  `json:"level,omitempty"`
	Language         *string                  `json:"language,omitempty"`
	Requirements     *types.BilingualStrings  `json:"requirements,omitempty"`
	Objectives       *types.BilingualStrings  `json:"objectives,omitempty"`
	TargetAudience   *types.BilingualStrings  `json:"targetAudience,omitempty"`
	Certificate      *bool                    `json:"certificate,omitempty"`
	Featured         *bool                    `json:"featured,omitempty"`
	PaymentInfo      *types.PaymentInfo       `json:"paymentInfo,omitempty"`
	Tags             *[]string                `json:"tags,omitempty"`
}

func UpdateCourse(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body updateCourseBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		course, err := svc.UpdateCourse(r.Context(), catalogActor(r), courseID, catalog.UpdateCourseInput{
			Title:            body.Title,
			Description:      body.Description,
			ShortDescription: body.ShortDescription,
			ImageURL:         body.ImageURL,
			PriceMZN:         body.PriceMZN,
			PriceUSD:         body.PriceUSD,
			DiscountMZN:      body.DiscountMZN,
			DiscountUSD:      body.DiscountUSD,
			PricingOptions:   body.PricingOptions,
			Categories:       body.Categories,
			Level:            body.Level,
			Language:         body.Language,
			Requirements:     body.Requirements,
			Objectives:       body.Objectives,
			TargetAudience:   body.TargetAudience,
			Certificate:      body.Certificate,
			Featured:         body.Featured,
			PaymentInfo:      body.PaymentInfo,
			Tags:             body.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, course)
	}
}

func DeleteCourse(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.DeleteCourse(r.Context(), catalogActor(r), courseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type setPublishedBody struct {
	Published *bool `json:"published" validate:"required"`
}

func SetCoursePublished(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body setPublishedBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		course, err := svc.SetPublished(r.Context(), catalogActor(r), courseID, *body.Published)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, course)
	}
}
