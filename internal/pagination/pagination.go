// Package pagination normalises page/limit query values shared by the
// listing endpoints.
package pagination

const (
	MaxLimit = 100
	MaxPage  = 100000
)

type Params struct {
	Page  int
	Limit int
}

// New clamps page to [1, MaxPage] and limit to [1, MaxLimit], substituting
// defaultLimit when limit is not positive.
func New(page, limit, defaultLimit int) Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Params) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
