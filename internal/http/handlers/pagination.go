package handlers

import (
	"strconv"

	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
	"github.com/tutorhub/tutorhub-admin/internal/pagination"
)

// paginationView turns the control strip for one list into links. hrefFor maps
// a page number to the URL that shows it.
func (h *Handlers) paginationView(page, totalPages int, target string, hrefFor func(int) string) viewmodels.PaginationView {
	controls := pagination.NewControls(page, totalPages, h.maxVisiblePages())
	if !controls.Visible() {
		return viewmodels.PaginationView{}
	}

	link := func(ctrl pagination.Control, label, aria string) viewmodels.PageLink {
		out := viewmodels.PageLink{
			Label:    label,
			Active:   ctrl.Active,
			Disabled: ctrl.Disabled,
			AriaText: aria,
		}
		if !ctrl.Disabled {
			out.Href = hrefFor(ctrl.Page)
		}
		return out
	}

	pages := make([]viewmodels.PageLink, 0, len(controls.Pages))
	for _, ctrl := range controls.Pages {
		n := strconv.Itoa(ctrl.Page)
		pages = append(pages, link(ctrl, n, "Page "+n))
	}
	return viewmodels.PaginationView{
		Visible: true,
		Target:  target,
		First:   link(controls.First, "First", "First page"),
		Prev:    link(controls.Prev, "Previous", "Previous page"),
		Pages:   pages,
		Next:    link(controls.Next, "Next", "Next page"),
		Last:    link(controls.Last, "Last", "Last page"),
	}
}
