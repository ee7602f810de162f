package viewmodels

// PageLink is one entry of a pagination strip. Href is empty when Disabled.
type PageLink struct {
	Label    string
	Href     string
	Active   bool
	Disabled bool
	AriaText string
}

type PaginationView struct {
	Visible bool
	// Target is the element id htmx swaps with the linked page.
	Target string
	First  PageLink
	Prev   PageLink
	Pages  []PageLink
	Next   PageLink
	Last   PageLink
}
