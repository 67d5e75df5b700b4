package inventory

import (
	"slices"

	"github.com/mamadbah2/megg/internal/domain/models"
)

// PageSizes enumerates the page sizes offered by the batch list.
var PageSizes = []int{6, 9, 12, 15}

// DefaultPageSize is used when a requested size is not in PageSizes.
const DefaultPageSize = 6

// NormalizePageSize returns size when it is one of PageSizes, DefaultPageSize otherwise.
func NormalizePageSize(size int) int {
	if slices.Contains(PageSizes, size) {
		return size
	}
	return DefaultPageSize
}

// Paginate returns the 1-indexed page of items. The page number is clamped
// into [1, totalPages]; an empty list yields page 1 of 0.
func Paginate[T any](items []T, page, pageSize int) models.Page[T] {
	pageSize = NormalizePageSize(pageSize)
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	var pageItems []T
	if start < end {
		pageItems = slices.Clone(items[start:end])
	} else {
		pageItems = []T{}
	}

	return models.Page[T]{
		Items:       pageItems,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  total,
	}
}

// NormalizeView fills defaults for a view state loaded from storage or a request.
func NormalizeView(v models.ViewState) models.ViewState {
	if v.Filters.Status == "" {
		v.Filters.Status = models.StatusFilterAll
	}
	if v.Sort.Key == "" {
		v.Sort.Key = models.DefaultSort.Key
	}
	if v.Sort.Direction != models.SortAsc && v.Sort.Direction != models.SortDesc {
		v.Sort.Direction = models.DefaultSort.Direction
	}
	v.PageSize = NormalizePageSize(v.PageSize)
	if v.CurrentPage < 1 {
		v.CurrentPage = 1
	}
	return v
}

// ChangeView moves from prev to next, resetting the current page to 1 when
// the filters, the sort or the page size changed.
func ChangeView(prev, next models.ViewState) models.ViewState {
	prev = NormalizeView(prev)
	next = NormalizeView(next)
	if !sameFilters(prev.Filters, next.Filters) || prev.Sort != next.Sort || prev.PageSize != next.PageSize {
		next.CurrentPage = 1
	}
	return next
}

func sameFilters(a, b models.FilterState) bool {
	return a.Search == b.Search &&
		a.DateFrom == b.DateFrom &&
		a.DateTo == b.DateTo &&
		a.Status == b.Status &&
		a.DefectRateThreshold == b.DefectRateThreshold &&
		slices.Equal(a.Sizes, b.Sizes)
}
