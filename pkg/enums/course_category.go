package enums

import "fmt"

// CourseCategory is the closed catalog taxonomy.
type CourseCategory string

const (
	CategoryEngenhariaCivil       CourseCategory = "engenharia-civil"
	CategoryEngenhariaMecanica    CourseCategory = "engenharia-mecanica"
	CategoryEngenhariaEletrica    CourseCategory = "engenharia-eletrica"
	CategoryEngenhariaInformatica CourseCategory = "engenharia-informatica"
	CategoryArquitetura           CourseCategory = "arquitetura"
	CategoryGestaoProjetos        CourseCategory = "gestao-projetos"
	CategorySegurancaTrabalho     CourseCategory = "seguranca-trabalho"
	CategoryAutoCAD               CourseCategory = "autocad"
	CategoryBIMRevit              CourseCategory = "bim-revit"
	CategoryExcelAvancado         CourseCategory = "excel-avancado"
	CategoryProgramacao           CourseCategory = "programacao"
	CategoryRedes                 CourseCategory = "redes"
	CategoryEnergiaRenovavel      CourseCategory = "energia-renovavel"
	CategoryConsultoria           CourseCategory = "consultoria"
	CategoryGestao                CourseCategory = "gestao"
	CategoryGeoprocessamento      CourseCategory = "geoprocessamento"
	CategoryEnergiaSustent        CourseCategory = "energia-sustentabilidade"
	CategorySoftware              CourseCategory = "software"
	CategoryOutros                CourseCategory = "outros"
)

var validCourseCategories = []CourseCategory{
	CategoryEngenhariaCivil,
	CategoryEngenhariaMecanica,
	CategoryEngenhariaEletrica,
	CategoryEngenhariaInformatica,
	CategoryArquitetura,
	CategoryGestaoProjetos,
	CategorySegurancaTrabalho,
	CategoryAutoCAD,
	CategoryBIMRevit,
	CategoryExcelAvancado,
	CategoryProgramacao,
	CategoryRedes,
	CategoryEnergiaRenovavel,
	CategoryConsultoria,
	CategoryGestao,
	CategoryGeoprocessamento,
	CategoryEnergiaSustent,
	CategorySoftware,
	CategoryOutros,
}

// IsValid reports whether the value is a known CourseCategory.
func (c CourseCategory) IsValid() bool {
	for _, candidate := range validCourseCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCourseCategory converts raw input into a CourseCategory.
func ParseCourseCategory(value string) (CourseCategory, error) {
	for _, candidate := range validCourseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid course category %q", value)
}
