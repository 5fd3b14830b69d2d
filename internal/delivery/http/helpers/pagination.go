package helpers

import (
	"net/http"
	"strconv"

	"holidaymatch/internal/domain"
)

// ParsePagination reads page and page_size from the query string. Values that
// are missing or not integers are ignored and the result is clamped to the
// profile listing bounds.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return domain.PaginationParams{Page: page, PageSize: size}.Clamp()
}

// PaginationMeta describes the page returned by a profile listing.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewPaginationMeta describes page p of a listing with total matching profiles.
func NewPaginationMeta(p domain.PaginationParams, total int) PaginationMeta {
	pages := p.Pages(total)
	return PaginationMeta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: pages,
		HasMore:    p.Page < pages,
	}
}
