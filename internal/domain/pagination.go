package domain

// PaginationParams selects one page of a list query. Page is 1-based; the
// HTTP layer clamps both fields before they reach a repository.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Limit returns the LIMIT argument for the page.
func (p PaginationParams) Limit() int {
	return p.PageSize
}

// Offset returns the 0-based OFFSET argument for the page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
