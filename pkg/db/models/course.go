package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// Course represents the canonical catalog listing.
type Course struct {
	ID                  uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title               types.Bilingual         `gorm:"column:title;type:jsonb;not null" json:"title"`
	Slug                string                  `gorm:"column:slug;type:text;not null;uniqueIndex" json:"slug"`
	Description         types.Bilingual         `gorm:"column:description;type:jsonb;not null" json:"description"`
	ShortDescription    types.Bilingual         `gorm:"column:short_description;type:jsonb" json:"shortDescription"`
	InstructorID        uuid.UUID               `gorm:"column:instructor_id;type:uuid;not null" json:"instructorId"`
	ImageURL            *string                 `gorm:"column:image_url" json:"imageUrl,omitempty"`
	PriceMZN            decimal.Decimal         `gorm:"column:price_mzn;type:numeric(12,2);not null" json:"priceMzn"`
	PriceUSD            decimal.Decimal         `gorm:"column:price_usd;type:numeric(12,2);not null" json:"priceUsd"`
	DiscountMZN         decimal.Decimal         `gorm:"column:discount_mzn;type:numeric(12,2);not null;default:0" json:"discountMzn"`
	DiscountUSD         decimal.Decimal         `gorm:"column:discount_usd;type:numeric(12,2);not null;default:0" json:"discountUsd"`
	PricingOptions      types.PricingOptionList `gorm:"column:pricing_options;type:jsonb;serializer:json" json:"pricingOptions,omitempty"`
	Categories          pq.StringArray          `gorm:"column:categories;type:text[];not null;default:ARRAY[]::text[]" json:"categories"`
	Level               enums.CourseLevel       `gorm:"column:level;type:course_level;not null;default:'todos'" json:"level"`
	Language            enums.CourseLanguage    `gorm:"column:language;type:text;not null;default:'pt'" json:"language"`
	Duration            types.Duration          `gorm:"column:duration;type:jsonb;serializer:json" json:"duration"`
	Requirements        types.BilingualStrings  `gorm:"column:requirements;type:jsonb;serializer:json" json:"requirements"`
	Objectives          types.BilingualStrings  `gorm:"column:objectives;type:jsonb;serializer:json" json:"objectives"`
	TargetAudience      types.BilingualStrings  `gorm:"column:target_audience;type:jsonb;serializer:json" json:"targetAudience"`
	Certificate         bool                    `gorm:"column:certificate;not null;default:true" json:"certificate"`
	CertificateTemplate *string                 `gorm:"column:certificate_template" json:"certificateTemplate,omitempty"`
	Published           bool                    `gorm:"column:published;not null;default:false" json:"published"`
	Featured            bool                    `gorm:"column:featured;not null;default:false" json:"featured"`
	RatingAverage       float64                 `gorm:"column:rating_average;type:numeric(3,2);not null;default:0" json:"ratingAverage"`
	RatingCount         int                     `gorm:"column:rating_count;not null;default:0" json:"ratingCount"`
	EnrollmentCount     int                     `gorm:"column:enrollment_count;not null;default:0" json:"enrollmentCount"`
	Tags                pq.StringArray          `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]" json:"tags"`
	PaymentInfo         *types.PaymentInfo      `gorm:"column:payment_info;type:jsonb;serializer:json" json:"paymentInfo,omitempty"`
	Modules             []CourseModule          `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
