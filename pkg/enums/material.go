package enums

import "fmt"

// MaterialType distinguishes uploaded files from external links.
type MaterialType string

const (
	MaterialTypeUpload MaterialType = "upload"
	MaterialTypeURL    MaterialType = "url"
)

var validMaterialTypes = []MaterialType{MaterialTypeUpload, MaterialTypeURL}

// IsValid reports whether the value is a known MaterialType.
func (m MaterialType) IsValid() bool {
	for _, candidate := range validMaterialTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaterialType converts raw input into a MaterialType.
func ParseMaterialType(value string) (MaterialType, error) {
	for _, candidate := range validMaterialTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material type %q", value)
}

// MaterialFileType tags the kind of file a material points at.
type MaterialFileType string

const (
	MaterialFileTypeVideo    MaterialFileType = "video"
	MaterialFileTypePDF      MaterialFileType = "pdf"
	MaterialFileTypeImage    MaterialFileType = "image"
	MaterialFileTypeDocument MaterialFileType = "document"
	MaterialFileTypeOther    MaterialFileType = "other"
)

var validMaterialFileTypes = []MaterialFileType{
	MaterialFileTypeVideo,
	MaterialFileTypePDF,
	MaterialFileTypeImage,
	MaterialFileTypeDocument,
	MaterialFileTypeOther,
}

// IsValid reports whether the value is a known MaterialFileType.
func (m MaterialFileType) IsValid() bool {
	for _, candidate := range validMaterialFileTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaterialFileType converts raw input into a MaterialFileType.
func ParseMaterialFileType(value string) (MaterialFileType, error) {
	for _, candidate := range validMaterialFileTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material file type %q", value)
}
