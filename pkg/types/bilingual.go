package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Bilingual carries the pt/en text pairs the frontend renders. Persisted as
// JSONB with the exact {"pt":...,"en":...} shape the original API exposed.
type Bilingual struct {
	PT string `json:"pt"`
	EN string `json:"en"`
}

// Value marshals the pair into JSON for Postgres.
func (b Bilingual) Value() (driver.Value, error) {
	buf, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the pair.
func (b *Bilingual) Scan(value interface{}) error {
	if value == nil {
		*b = Bilingual{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("bilingual: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*b = Bilingual{}
		return nil
	}
	return json.Unmarshal(raw, b)
}

// In returns the text for the requested language, defaulting to Portuguese.
func (b Bilingual) In(lang string) string {
	if lang == "en" {
		return b.EN
	}
	return b.PT
}
