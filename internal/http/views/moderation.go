package views

import (
	"github.com/a-h/templ"

	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
)

const (
	StatsSectionID   = "moderation-stats"
	PendingSectionID = "pending-gigs"
	ReportsSectionID = "abuse-reports"
)

func ModerationPage(data viewmodels.ModerationViewData) templ.Component {
	body := component(func(w *htmlWriter) {
		csrf := data.Layout.CSRFToken
		w.raw(`<h1>Moderation</h1>`)
		w.raw(`<form method="post" action="/moderation/reload" class="reload-all">`)
		w.csrfInput(csrf)
		w.hiddenInput("collection", "all")
		w.hiddenInput("pending_page", FormatInt(data.Pending.Page))
		w.hiddenInput("reports_page", FormatInt(data.Reports.Page))
		w.raw(`<button type="submit">Reload everything</button></form>`)
		w.component(StatsSection(data.Stats, csrf))
		w.component(PendingSection(data.Pending, csrf))
		w.component(ReportsSection(data.Reports, csrf))
		w.component(DeleteReviewForm(csrf))
	})
	return Layout(data.Layout, body)
}

// loadState renders the status line and, after a failure, a retry form for
// the collection.
func loadState(w *htmlWriter, s viewmodels.LoadStateView, csrf string, sectionID string, pendingPage, reportsPage int) {
	switch {
	case s.Loading:
		w.raw(`<p class="state-loading">Loading…</p>`)
	case s.Failed:
		w.raw(`<div class="state-failed" role="alert"><span>`)
		w.text(EmptyDash(s.Error))
		w.raw(`</span> <form method="post" action="/moderation/reload"`)
		w.attr("hx-post", "/moderation/reload")
		w.attr("hx-target", "#"+sectionID)
		w.raw(` hx-swap="outerHTML">`)
		w.csrfInput(csrf)
		w.hiddenInput("collection", s.ReloadCollection)
		w.hiddenInput("pending_page", FormatInt(pendingPage))
		w.hiddenInput("reports_page", FormatInt(reportsPage))
		w.raw(`<button type="submit">Retry</button></form></div>`)
	}
}

func StatsSection(v viewmodels.StatsView, csrf string) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<section`)
		w.attr("id", StatsSectionID)
		w.raw(`><h2>Platform statistics</h2>`)
		loadState(w, v.State, csrf, StatsSectionID, 1, 1)
		if len(v.Rows) > 0 {
			w.raw(`<dl class="stats">`)
			for _, row := range v.Rows {
				w.raw(`<div><dt>`)
				w.text(row.Label)
				w.raw(`</dt><dd>`)
				w.text(EmptyDash(row.Value))
				w.raw(`</dd></div>`)
			}
			w.raw(`</dl>`)
		} else if v.State.Loaded {
			w.raw(`<p>No statistics reported.</p>`)
		}
		w.raw(`</section>`)
	})
}

func PendingSection(v viewmodels.PendingGigsView, csrf string) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<section`)
		w.attr("id", PendingSectionID)
		w.raw(`><h2>Pending gigs</h2>`)
		loadState(w, v.State, csrf, PendingSectionID, v.Page, v.OtherPage)
		switch {
		case len(v.Items) > 0:
			showing(w, v.ShowingFrom, v.ShowingTo, v.TotalCount)
			w.raw(`<table><thead><tr><th>ID</th><th>Title</th><th>Subject</th><th>Submitted by</th><th>Submitted</th><th></th></tr></thead><tbody>`)
			for _, gig := range v.Items {
				w.raw(`<tr><td>`)
				w.text(gig.ID)
				w.raw(`</td><td>`)
				w.text(EmptyDash(gig.Title))
				w.raw(`</td><td>`)
				w.text(EmptyDash(gig.Subject))
				w.raw(`</td><td>`)
				w.text(EmptyDash(gig.SubmitterName))
				w.raw(`</td><td>`)
				w.text(EmptyDash(gig.Submitted))
				w.raw(`</td><td>`)
				actionForm(w, gig.ApproveAction, PendingSectionID, csrf, v.Page, v.OtherPage, "Approve", gig.InFlight)
				w.raw(`</td></tr>`)
			}
			w.raw(`</tbody></table>`)
			w.component(Pagination(v.Pagination))
		case v.State.Loaded:
			w.raw(`<p>No gigs are waiting for approval.</p>`)
		}
		w.raw(`</section>`)
	})
}

func ReportsSection(v viewmodels.AbuseReportsView, csrf string) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<section`)
		w.attr("id", ReportsSectionID)
		w.raw(`><h2>Abuse reports</h2>`)
		loadState(w, v.State, csrf, ReportsSectionID, v.OtherPage, v.Page)
		switch {
		case len(v.Items) > 0:
			showing(w, v.ShowingFrom, v.ShowingTo, v.TotalCount)
			w.raw(`<table><thead><tr><th>ID</th><th>Report</th><th>Target</th><th>Reported user</th><th>Reported</th><th></th></tr></thead><tbody>`)
			for _, report := range v.Items {
				w.raw(`<tr><td>`)
				w.text(report.ID)
				w.raw(`</td><td>`)
				w.text(EmptyDash(report.Message))
				w.raw(`</td><td>`)
				if report.TargetType != "" {
					w.text(report.TargetType + " #" + EmptyDash(report.TargetID))
				} else {
					w.text("-")
				}
				w.raw(`</td><td>`)
				w.text(EmptyDash(report.ActorID))
				w.raw(`</td><td>`)
				w.text(EmptyDash(report.Reported))
				w.raw(`</td><td>`)
				if report.CanBlock {
					// pending_page is the other list here, so the page order flips.
					actionForm(w, report.BlockAction, ReportsSectionID, csrf, v.OtherPage, v.Page, "Block user", report.InFlight)
				}
				w.raw(`</td></tr>`)
			}
			w.raw(`</tbody></table>`)
			w.component(Pagination(v.Pagination))
		case v.State.Loaded:
			w.raw(`<p>No open abuse reports.</p>`)
		}
		w.raw(`</section>`)
	})
}

func showing(w *htmlWriter, from, to, total int) {
	w.raw(`<p class="showing">Showing `)
	w.text(FormatInt(from) + "–" + FormatInt(to) + " of " + FormatInt(total))
	w.raw(`</p>`)
}

func actionForm(w *htmlWriter, action, sectionID, csrf string, pendingPage, reportsPage int, label string, inFlight bool) {
	w.raw(`<form method="post"`)
	w.attr("action", action)
	w.attr("hx-post", action)
	w.attr("hx-target", "#"+sectionID)
	w.raw(` hx-swap="outerHTML">`)
	w.csrfInput(csrf)
	w.hiddenInput("pending_page", FormatInt(pendingPage))
	w.hiddenInput("reports_page", FormatInt(reportsPage))
	w.raw(`<button type="submit"`)
	w.flag("disabled", inFlight)
	w.raw(`>`)
	w.text(label)
	w.raw(`</button></form>`)
}

func DeleteReviewForm(csrf string) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<section id="delete-review"><h2>Remove a review</h2>`)
		w.raw(`<form method="post" action="/moderation/reviews/delete" hx-post="/moderation/reviews/delete">`)
		w.csrfInput(csrf)
		w.raw(`<label>Review ID <input type="text" name="review_id" required pattern="[A-Za-z0-9_-]+"></label> `)
		w.raw(`<button type="submit">Delete review</button></form></section>`)
	})
}
