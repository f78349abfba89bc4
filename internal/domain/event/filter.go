package event

import "time"

// Sort keys for public listings, always descending.
const (
	SortEventDate = "EVENT_DATE"
	SortViews     = "VIEWS"
)

// Filter holds the optional public-listing predicates. Nil/empty fields
// impose no constraint.
type Filter struct {
	Text          *string
	Categories    []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	State         *State

	Sort string
	Page Pagination
}

// AdminFilter is the full-filtering admin variant, sorted by id descending.
type AdminFilter struct {
	Users      []int64
	Categories []int64
	States     []State
	RangeStart *time.Time
	RangeEnd   *time.Time

	Page Pagination
}

// Pagination is offset/limit where the offset is implicitly aligned to the
// enclosing page: offset = (from / size) * size.
type Pagination struct {
	From int
	Size int
}

func (p Pagination) Limit() int {
	if p.Size < 1 {
		return 10
	}
	return p.Size
}

func (p Pagination) Offset() int {
	size := p.Limit()

	if p.From < 0 {
		return 0
	}

	return (p.From / size) * size
}
