package helpers

import (
	"net/http"
	"strconv"

	"campusevents/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// queryInt reads an integer query parameter, returning fallback for missing,
// non-numeric, or sub-minimum values.
func queryInt(r *http.Request, key string, fallback, min int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < min {
		return fallback
	}
	return v
}

// ParsePagination reads page and page_size from the query string. Values are
// clamped: page >= 1, page_size capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	page := queryInt(r, "page", DefaultPage, 1)
	pageSize := queryInt(r, "page_size", DefaultPageSize, 1)
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return domain.PaginationParams{Page: page, PageSize: pageSize}
}

// PaginationMeta accompanies every paginated listing.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta computes TotalPages as ceiling(total / pageSize); a zero
// pageSize yields zero pages.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
