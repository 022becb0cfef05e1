package enums

import "fmt"

// CourseLevel is the difficulty tier shown in the catalog.
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "iniciante"
	CourseLevelIntermediate CourseLevel = "intermediario"
	CourseLevelAdvanced     CourseLevel = "avancado"
	CourseLevelAll          CourseLevel = "todos"
)

var validCourseLevels = []CourseLevel{
	CourseLevelBeginner,
	CourseLevelIntermediate,
	CourseLevelAdvanced,
	CourseLevelAll,
}

// IsValid reports whether the value is a known CourseLevel.
func (c CourseLevel) IsValid() bool {
	for _, candidate := range validCourseLevels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCourseLevel converts raw input into a CourseLevel.
func ParseCourseLevel(value string) (CourseLevel, error) {
	for _, candidate := range validCourseLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid course level %q", value)
}

// CourseLanguage says which languages the course content covers. Unlike the
// user-facing Language it allows "both".
type CourseLanguage string

const (
	CourseLanguagePT   CourseLanguage = "pt"
	CourseLanguageEN   CourseLanguage = "en"
	CourseLanguageBoth CourseLanguage = "both"
)

var validCourseLanguages = []CourseLanguage{CourseLanguagePT, CourseLanguageEN, CourseLanguageBoth}

// IsValid reports whether the value is a known CourseLanguage.
func (c CourseLanguage) IsValid() bool {
	for _, candidate := range validCourseLanguages {
		if candidate == c {
			return true
		}
	}
	return false
}
