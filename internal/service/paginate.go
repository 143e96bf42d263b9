package service

import "tablette/catalog/internal/domain"

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// NormalizePage clamps page to at least 1 and replaces a page size outside
// [1, MaxPageSize] with DefaultPageSize.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// Paginate slices the filtered records. Total is always the full filtered
// count; a page past the end is empty.
func Paginate(records []domain.Record, page, pageSize int) *domain.Page {
	page, pageSize = NormalizePage(page, pageSize)
	total := len(records)

	start := (page - 1) * pageSize
	if start > total || start < 0 {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]domain.Record, end-start)
	copy(items, records[start:end])

	return &domain.Page{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	}
}
