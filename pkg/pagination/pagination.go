package pagination

const (
	// DefaultPerPage is the standard page size when per_page is not provided.
	DefaultPerPage = 25
	// MaxPerPage caps how many rows any list query can request.
	MaxPerPage = 100
)

// Params holds page-based pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Normalize enforces the configured defaults and maximum page size.
func (p Params) Normalize() Params {
	out := p
	if out.Page <= 0 {
		out.Page = 1
	}
	if out.PerPage <= 0 {
		out.PerPage = DefaultPerPage
	}
	if out.PerPage > MaxPerPage {
		out.PerPage = MaxPerPage
	}
	return out
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PerPage
}

// Meta describes a page of results for API responses.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta assembles response metadata from the normalized params and row count.
func NewMeta(p Params, total int64) Meta {
	n := p.Normalize()
	pages := int(total) / n.PerPage
	if int(total)%n.PerPage != 0 {
		pages++
	}
	return Meta{
		Page:       n.Page,
		PerPage:    n.PerPage,
		Total:      total,
		TotalPages: pages,
	}
}
