package enums

// Language selects which side of a bilingual pair a user sees.
type Language string

const (
	LanguagePT Language = "pt"
	LanguageEN Language = "en"
)

// IsValid reports whether the value is a known Language.
func (l Language) IsValid() bool {
	return l == LanguagePT || l == LanguageEN
}
