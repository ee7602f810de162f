package views

import (
	"github.com/a-h/templ"

	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
)

func AuditPage(data viewmodels.AuditViewData) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<h1>Audit log</h1>`)
		if !data.Persistent {
			w.raw(`<p class="state-loading">Entries are kept in memory and are lost on restart.</p>`)
		}
		if len(data.Entries) == 0 {
			w.raw(`<p>`)
			w.text(data.EmptyStateMsg)
			w.raw(`</p>`)
			return
		}
		w.raw(`<p class="showing">Showing `)
		w.text(FormatInt(data.ShowingFrom) + "–" + FormatInt(data.ShowingTo) + " of " + FormatInt64(data.TotalCount))
		w.raw(`</p><table><thead><tr><th>When</th><th>Action</th><th>Target</th><th>Operator</th><th>Outcome</th><th>Detail</th></tr></thead><tbody>`)
		for _, entry := range data.Entries {
			w.raw(`<tr><td>`)
			w.text(entry.When)
			w.raw(`</td><td>`)
			w.text(HumanizeAction(entry.Action))
			w.raw(`</td><td>`)
			w.text(EmptyDash(entry.TargetID))
			w.raw(`</td><td>`)
			w.text(EmptyDash(entry.Operator))
			w.raw(`</td><td><span`)
			w.attr("class", OutcomeBadgeClass(entry.Outcome))
			w.raw(`>`)
			w.text(entry.Outcome)
			w.raw(`</span></td><td>`)
			w.text(EmptyDash(entry.Detail))
			w.raw(`</td></tr>`)
		}
		w.raw(`</tbody></table>`)
		w.component(Pagination(data.Pagination))
	})
	return Layout(data.Layout, body)
}

func NotFoundPage(layout viewmodels.LayoutData) templ.Component {
	return Layout(layout, component(func(w *htmlWriter) {
		w.raw(`<h1>Not found</h1><p>The page you asked for does not exist. <a href="/moderation">Back to moderation</a></p>`)
	}))
}

func ErrorPage(layout viewmodels.LayoutData, message string) templ.Component {
	return Layout(layout, component(func(w *htmlWriter) {
		w.raw(`<h1>Something went wrong</h1><p role="alert">`)
		w.text(message)
		w.raw(`</p>`)
	}))
}
