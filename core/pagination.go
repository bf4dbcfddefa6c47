package core

import "math"

// PageRequest selects one page of a listing. Page is 1-based.
type PageRequest struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

// Clean applies defaults and bounds: a zero or negative page becomes 1,
// a zero or negative PerPage becomes defaultPerPage and PerPage is capped at maxPerPage.
// Page is capped so that Page*PerPage fits in an int.
func (pr *PageRequest) Clean(defaultPerPage, maxPerPage int) {
	if pr.Page < 1 {
		pr.Page = 1
	}
	if pr.PerPage < 1 {
		pr.PerPage = defaultPerPage
	}
	if maxPerPage > 0 && pr.PerPage > maxPerPage {
		pr.PerPage = maxPerPage
	}
	if pr.PerPage > 0 && pr.Page > math.MaxInt/pr.PerPage {
		pr.Page = math.MaxInt / pr.PerPage
	}
}

func (pr PageRequest) Offset() int {
	return (pr.Page - 1) * pr.PerPage
}

type PageMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

func NewPageMeta(pr PageRequest, total int) PageMeta {
	last := 1
	if pr.PerPage > 0 && total > 0 {
		last = (total + pr.PerPage - 1) / pr.PerPage
	}
	return PageMeta{CurrentPage: pr.Page, PerPage: pr.PerPage, Total: total, LastPage: last}
}
