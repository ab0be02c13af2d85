package store

// clampPage and clampPerPage mirror the API contract: 1-indexed pages,
// per-page capped to [1,100].
func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampPerPage(perPage int) int {
	if perPage < 1 {
		return 1
	}
	if perPage > 100 {
		return 100
	}
	return perPage
}

// Pagination is the metadata block attached to every paginated response.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPagination derives the page metadata. Zero items means zero pages and
// both flags false.
func NewPagination(page, perPage int, total int64) Pagination {
	page = clampPage(page)
	perPage = clampPerPage(perPage)

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalPages > 0,
	}
}
