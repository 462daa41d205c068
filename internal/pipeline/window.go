package pipeline

import "showcase/internal/models"

// DefaultPageSize is the number of cards revealed per page
const DefaultPageSize = 6

// Page is the revealed part of a filtered collection
type Page struct {
	Visible  []models.Article
	HasMore  bool
	Total    int
	Page     int
	PageSize int
}

// Window reveals the first page*size articles of filtered. Pages accumulate:
// page 2 shows everything page 1 showed plus the next size articles.
func Window(filtered []models.Article, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(filtered)
	n := total
	// bounding page by total/size keeps page*size from overflowing
	if page <= total/size && page*size < total {
		n = page * size
	}

	return Page{
		Visible:  filtered[:n:n],
		HasMore:  n < total,
		Total:    total,
		Page:     page,
		PageSize: size,
	}
}
