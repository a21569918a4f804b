package blogservice

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type pagination struct {
	page   int
	limit  int
	offset int
}

// normalizePagination coerces non-positive page and limit to their defaults,
// clamps limit to MaxLimit and negative offsets to zero. page is capped so that
// (page-1)*limit cannot overflow.
func normalizePagination(page, limit, offset int) pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	if offset < 0 {
		offset = 0
	}
	return pagination{page: page, limit: limit, offset: offset}
}

// skip is the number of rows to pass over. A positive offset wins over page.
func (p pagination) skip() int {
	if p.offset > 0 {
		return p.offset
	}
	return (p.page - 1) * p.limit
}

// effectivePage is the page the first returned row falls on.
func (p pagination) effectivePage() int {
	return p.skip()/p.limit + 1
}

func (p pagination) hasNext(returned, total int) bool {
	return p.skip()+returned < total
}
