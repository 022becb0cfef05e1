package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
)

// Material is a single lesson attachment. The JSON field names are part of
// the frontend contract and must not change.
type Material struct {
	ID              uuid.UUID              `json:"id"`
	Title           Bilingual              `json:"title"`
	Description     Bilingual              `json:"description"`
	Type            enums.MaterialType     `json:"type"`
	FileType        enums.MaterialFileType `json:"fileType"`
	FileURL         string                 `json:"fileUrl"`
	StoragePublicID *string                `json:"cloudinaryPublicId"`
	MimeType        *string                `json:"mimeType"`
	FileSizeBytes   *int64                 `json:"fileSize"`
	Duration        Duration               `json:"duration"`
	IsDownloadable  bool                   `json:"isDownloadable"`
	Order           int                    `json:"order"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// MaterialList is persisted as a JSONB array on the lesson row.
type MaterialList []Material

// NextOrder returns the order value a newly appended material should take.
func (m MaterialList) NextOrder() int {
	max := 0
	for _, mat := range m {
		if mat.Order > max {
			max = mat.Order
		}
	}
	return max + 1
}
