// Package pagination computes page windows for list responses.
package pagination

// Page describes the window of a paginated result set.
type Page struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// New computes pagination metadata for a result set of total records.
// PageCount is the ceiling of total divided by pageSize.
func New(page, pageSize, total int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return Page{
		Page:      page,
		PageSize:  pageSize,
		PageCount: (total + pageSize - 1) / pageSize,
		Total:     total,
	}
}

// Skip returns the number of records preceding the page.
func (p Page) Skip() int {
	return (p.Page - 1) * p.PageSize
}
