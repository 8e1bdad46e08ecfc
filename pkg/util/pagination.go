package util

import "strconv"

// Page describes one page of a listing.
type Page struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Paginate clamps the requested page: unparsable or < 1 gives the first
// page, past the end gives the last one. An empty listing has one page.
func Paginate(rawPage string, perPage int, total int64) Page {
	if perPage < 1 {
		perPage = 1
	}
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return Page{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}
