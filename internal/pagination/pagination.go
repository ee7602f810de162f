// Package pagination computes page windows and page arithmetic for list views.
package pagination

import (
	"strconv"
	"strings"
)

// DefaultMaxVisiblePages is the number of numbered page links shown when the
// caller does not pick one.
const DefaultMaxVisiblePages = 5

// Window returns the page numbers to expose as numbered controls.
//
// The window is centered on currentPage when the boundaries allow it, always
// has length min(maxVisiblePages, totalPages) and never leaves [1, totalPages].
// An out-of-range currentPage is clamped rather than rejected.
func Window(currentPage, totalPages, maxVisiblePages int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	if maxVisiblePages < 1 {
		maxVisiblePages = 1
	}
	currentPage = clamp(currentPage, 1, totalPages)

	startPage := max(1, currentPage-maxVisiblePages/2)
	endPage := min(totalPages, startPage+maxVisiblePages-1)
	if endPage-startPage+1 < maxVisiblePages {
		startPage = max(1, endPage-maxVisiblePages+1)
	}

	pages := make([]int, 0, endPage-startPage+1)
	for p := startPage; p <= endPage; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Paginate clamps page into range and returns it with the total page count
// and the zero-based offset of the first row on that page. An empty result
// set still reports one page so that "page 1 of 1" renders.
func Paginate(totalCount int64, page, perPage int) (int, int, int) {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}
	denom := int64(perPage)
	totalPages := int((totalCount + denom - 1) / denom)
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	offset := (page - 1) * perPage
	return page, totalPages, offset
}

// ShowingRange returns the 1-based "showing X to Y" bounds for a page.
func ShowingRange(totalCount int64, offset, showingCount int) (int, int) {
	if totalCount <= 0 || showingCount <= 0 {
		return 0, 0
	}
	showingFrom := offset + 1
	showingTo := offset + showingCount
	if int64(showingTo) > totalCount {
		showingTo = int(totalCount)
	}
	return showingFrom, showingTo
}

// ParsePage parses a page query value, falling back to 1.
func ParsePage(raw string) int {
	page := 1
	if raw = strings.TrimSpace(raw); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return page
}

// Slice returns the items that fall on page of an in-memory collection.
func Slice[T any](items []T, page, perPage int) []T {
	if len(items) == 0 {
		return []T{}
	}
	_, _, offset := Paginate(int64(len(items)), page, perPage)
	end := min(offset+max(perPage, 1), len(items))
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
