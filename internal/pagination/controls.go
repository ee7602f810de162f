package pagination

// ControlKind identifies a navigation control.
type ControlKind string

const (
	ControlFirst ControlKind = "first"
	ControlPrev  ControlKind = "prev"
	ControlPage  ControlKind = "page"
	ControlNext  ControlKind = "next"
	ControlLast  ControlKind = "last"
)

// Control is one rendered navigation button. Page is the page number the
// control emits when activated.
type Control struct {
	Kind     ControlKind
	Page     int
	Active   bool
	Disabled bool
}

// Controls is the full first/prev/window/next/last strip for a list.
type Controls struct {
	CurrentPage int
	TotalPages  int
	First       Control
	Prev        Control
	Pages       []Control
	Next        Control
	Last        Control
}

// NewControls builds the navigation strip. First and prev are disabled exactly
// when currentPage is 1; next and last exactly when currentPage is totalPages.
func NewControls(currentPage, totalPages, maxVisiblePages int) Controls {
	if totalPages > 0 {
		currentPage = clamp(currentPage, 1, totalPages)
	}

	atStart := currentPage == 1
	atEnd := currentPage >= totalPages

	window := Window(currentPage, totalPages, maxVisiblePages)
	pages := make([]Control, 0, len(window))
	for _, p := range window {
		pages = append(pages, Control{Kind: ControlPage, Page: p, Active: p == currentPage})
	}

	return Controls{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		First:       Control{Kind: ControlFirst, Page: 1, Disabled: atStart},
		Prev:        Control{Kind: ControlPrev, Page: currentPage - 1, Disabled: atStart},
		Pages:       pages,
		Next:        Control{Kind: ControlNext, Page: currentPage + 1, Disabled: atEnd},
		Last:        Control{Kind: ControlLast, Page: totalPages, Disabled: atEnd},
	}
}

// Visible reports whether the strip is worth rendering at all.
func (c Controls) Visible() bool {
	return c.TotalPages > 1
}
