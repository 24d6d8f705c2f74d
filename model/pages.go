package model

// PageRequest represents a single requested page of a listing: the zero-based page
// position and the number of records per page.
type PageRequest struct {
	Position int
	Size     int
}

// Offset returns the number of records to skip before the first record of the page.
func (r PageRequest) Offset() int {
	return r.Position * r.Size
}

// Page represents one page of a listing along with the listing totals.
type Page[T any] struct {
	Content       []T   `json:"content"`
	PagePosition  int   `json:"page_position"`
	PageSize      int   `json:"page_size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int64 `json:"total_pages"`
}

// NewPage builds a page from its content and the total number of matching records.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := total / int64(req.Size)
	if total%int64(req.Size) != 0 {
		totalPages++
	}
	return Page[T]{
		Content:       content,
		PagePosition:  req.Position,
		PageSize:      req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
