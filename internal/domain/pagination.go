package domain

// Profile listing page bounds. The browse grid shows cards in rows of four.
const (
	DefaultProfilePageSize = 12
	MaxProfilePageSize     = 48
)

// PaginationParams selects one page of the profile listing. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Clamp returns p with Page at least 1 and PageSize in [1, MaxProfilePageSize].
// A missing PageSize becomes DefaultProfilePageSize.
func (p PaginationParams) Clamp() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultProfilePageSize
	case p.PageSize > MaxProfilePageSize:
		p.PageSize = MaxProfilePageSize
	}
	return p
}

func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Pages reports how many pages of p.PageSize cover total profiles.
func (p PaginationParams) Pages(total int) int {
	if p.PageSize < 1 || total < 1 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}
