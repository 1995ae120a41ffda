package services

// Pagination selects a 1-based page of a listing
type Pagination struct {
	Page  int
	Limit int
}

// Page is one page of a listing together with the total number of rows
type Page[T any] struct {
	Count   int64
	Page    int
	Limit   int
	Results []T
}

// HasNext reports whether rows exist after this page
func (p Page[T]) HasNext() bool {
	return int64(p.Page*p.Limit) < p.Count
}

// HasPrevious reports whether this is not the first page
func (p Page[T]) HasPrevious() bool {
	return p.Page > 1
}

func (p Pagination) normalize(defaultLimit int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	return p
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.Limit
}
