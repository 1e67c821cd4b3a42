package pagination

import (
	"strings"
)

const (
	// DefaultPage is used when the caller omits or mangles the page input.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any listing can request.
	MaxLimit = 100

	// DefaultSortField orders listings newest first when no sort is given.
	DefaultSortField = "created_at"
)

// Params holds page/limit pagination inputs from controllers or services.
type Params struct {
	Page      int
	Limit     int
	SortField string
	SortDesc  bool
	Query     string
}

// Page is the listing result wrapper carrying total-count metadata.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// Normalize applies the page/limit defaults and clamps the limit.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if strings.TrimSpace(p.SortField) == "" {
		p.SortField = DefaultSortField
		p.SortDesc = true
	}
	p.Query = strings.TrimSpace(p.Query)
	return p
}

// Offset converts the normalized page into a row offset.
func (p Params) Offset() int {
	page := p.Page
	if page <= 0 {
		page = DefaultPage
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return (page - 1) * limit
}

// OrderClause renders the sort as a SQL ORDER BY fragment. The field must
// already be validated against a column whitelist by the caller.
func (p Params) OrderClause() string {
	direction := "ASC"
	if p.SortDesc {
		direction = "DESC"
	}
	field := p.SortField
	if field == "" {
		field = DefaultSortField
	}
	return field + " " + direction
}

// NewPage assembles a Page from items plus the filtered total.
func NewPage[T any](items []T, total int64, params Params) Page[T] {
	params = params.Normalize()
	totalPages := int(total) / params.Limit
	if int(total)%params.Limit != 0 {
		totalPages++
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}
}
