// Package pagination provides page/limit handling for list endpoints.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a validated page request. Pages are 1-based.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Meta describes the page that was actually returned.
type Meta struct {
	CurrentPage  int  `json:"current_page"`
	PerPage      int  `json:"per_page"`
	TotalPages   int  `json:"total_pages"`
	TotalRecords int  `json:"total_records"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// ParseParams reads the page and limit query parameters, falling back to the
// defaults for anything missing or unparseable.
func ParseParams(r *http.Request) Params {
	params := Params{Page: DefaultPage, Limit: DefaultLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		params.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		params.Limit = v
	}
	params.Validate()
	return params
}

// Validate clamps the parameters into their allowed ranges.
func (p *Params) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// CalculateOffset converts the page number into a store offset.
func (p *Params) CalculateOffset() int {
	return (p.Page - 1) * p.Limit
}

// CalculateMeta builds the response metadata for the given total. An empty
// result set still reports one (empty) page.
func (p *Params) CalculateMeta(totalRecords int) Meta {
	totalPages := (totalRecords + p.Limit - 1) / p.Limit
	if totalPages < 1 {
		totalPages = 1
	}
	return Meta{
		CurrentPage:  p.Page,
		PerPage:      p.Limit,
		TotalPages:   totalPages,
		TotalRecords: totalRecords,
		HasNext:      p.Page < totalPages,
		HasPrevious:  p.Page > 1,
	}
}
