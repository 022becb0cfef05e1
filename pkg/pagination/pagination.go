package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds page/limit pagination inputs from controllers or services.
// The frontend paginates with 1-based page numbers and expects totals back.
type Params struct {
	Page  int
	Limit int
}

// Result carries the page metadata returned alongside list payloads.
type Result struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Normalize enforces the default and maximum limits and a 1-based page.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NewResult assembles the page metadata for a total row count.
func NewResult(params Params, total int64) Result {
	n := params.Normalize()
	pages := int((total + int64(n.Limit) - 1) / int64(n.Limit))
	if pages < 1 {
		pages = 1
	}
	return Result{
		Page:       n.Page,
		Limit:      n.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
