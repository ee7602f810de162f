package views

import (
	"github.com/a-h/templ"

	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
)

// Pagination renders the navigation strip. Nothing is rendered for a single page.
func Pagination(p viewmodels.PaginationView) templ.Component {
	return component(func(w *htmlWriter) {
		if !p.Visible {
			return
		}
		w.raw(`<nav aria-label="Pagination"><ul class="pagination">`)
		pageLink(w, p.First, p.Target)
		pageLink(w, p.Prev, p.Target)
		for _, link := range p.Pages {
			pageLink(w, link, p.Target)
		}
		pageLink(w, p.Next, p.Target)
		pageLink(w, p.Last, p.Target)
		w.raw(`</ul></nav>`)
	})
}

func pageLink(w *htmlWriter, link viewmodels.PageLink, target string) {
	w.raw(`<li>`)
	switch {
	case link.Disabled:
		w.raw(`<span class="disabled" aria-disabled="true"`)
		if link.AriaText != "" {
			w.attr("aria-label", link.AriaText)
		}
		w.raw(`>`)
		w.text(link.Label)
		w.raw(`</span>`)
	case link.Active:
		w.raw(`<span class="active" aria-current="page">`)
		w.text(link.Label)
		w.raw(`</span>`)
	default:
		w.raw(`<a`)
		w.attr("href", link.Href)
		if target != "" {
			w.attr("hx-get", link.Href)
			w.attr("hx-target", "#"+target)
			w.raw(` hx-swap="outerHTML" hx-push-url="true"`)
		}
		if link.AriaText != "" {
			w.attr("aria-label", link.AriaText)
		}
		w.raw(`>`)
		w.text(link.Label)
		w.raw(`</a>`)
	}
	w.raw(`</li>`)
}
