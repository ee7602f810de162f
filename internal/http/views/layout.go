package views

import (
	"encoding/json"
	"strings"

	"github.com/a-h/templ"

	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
)

const htmxScriptURL = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

const baseStyles = `body{font-family:system-ui,sans-serif;margin:0;color:#1f2937}
header{display:flex;gap:1rem;align-items:center;padding:.75rem 1.5rem;border-bottom:1px solid #e5e7eb}
header nav a{margin-right:1rem}header nav a.active{font-weight:600}
main{padding:1.5rem;max-width:72rem}section{margin-bottom:2rem}
table{border-collapse:collapse;width:100%}td,th{padding:.4rem .6rem;border-bottom:1px solid #e5e7eb;text-align:left}
.pagination{display:flex;gap:.25rem;list-style:none;padding:0}.pagination a,.pagination span{padding:.25rem .6rem;border:1px solid #d1d5db;border-radius:4px}
.pagination .active{background:#1f2937;color:#fff}.pagination .disabled{color:#9ca3af}
.toast{padding:.75rem 1rem;border-radius:6px;margin:1rem 1.5rem}.toast-success{background:#dcfce7}.toast-error{background:#fee2e2}.toast-info,.toast-warning{background:#fef9c3}
.badge{padding:.1rem .4rem;border-radius:4px;background:#e5e7eb}.badge-success{background:#dcfce7}.badge-danger{background:#fee2e2}
.state-failed{color:#b91c1c}.state-loading{color:#6b7280}`

func hxHeaders(csrfToken string) string {
	payload, err := json.Marshal(map[string]string{"X-CSRF-Token": csrfToken})
	if err != nil {
		return "{}"
	}
	return string(payload)
}

// Layout wraps page content with the console chrome.
func Layout(data viewmodels.LayoutData, content templ.Component) templ.Component {
	return component(func(w *htmlWriter) {
		title := strings.TrimSpace(data.Title)
		if title == "" {
			title = "Moderation"
		}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw(`<title>`)
		w.text(title + " · TutorHub Admin")
		w.raw(`</title><style>` + baseStyles + `</style>`)
		w.raw(`<script src="` + htmxScriptURL + `" defer></script></head>`)
		w.raw(`<body hx-boost="true"`)
		w.attr("hx-headers", hxHeaders(data.CSRFToken))
		w.raw(`><header><strong>TutorHub Admin</strong><nav>`)
		navLink(w, "/moderation", "Moderation", data.ActivePath)
		navLink(w, "/audit", "Audit log", data.ActivePath)
		w.raw(`</nav>`)
		if data.UserEmail != "" {
			w.raw(`<span class="operator">`)
			w.text(data.UserEmail)
			w.raw(`</span><form method="post" action="/logout" hx-boost="false">`)
			w.csrfInput(data.CSRFToken)
			w.raw(`<button type="submit">Sign out</button></form>`)
		}
		w.raw(`</header>`)
		w.component(ToastRegion(data.Toast, false))
		w.raw(`<main>`)
		w.component(content)
		w.raw(`</main></body></html>`)
	})
}

func navLink(w *htmlWriter, href, label, active string) {
	w.raw(`<a`)
	w.attr("href", href)
	if active == href || strings.HasPrefix(active, href+"/") {
		w.raw(` class="active" aria-current="page"`)
	}
	w.raw(`>`)
	w.text(label)
	w.raw(`</a>`)
}

// ToastRegion renders the toast container. With oob set it replaces the
// container on an htmx fragment response.
func ToastRegion(toast *viewmodels.ToastViewData, oob bool) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<div id="toast-region" role="status" aria-live="polite"`)
		if oob {
			w.raw(` hx-swap-oob="true"`)
		}
		w.raw(`>`)
		if toast != nil {
			w.raw(`<div`)
			w.attr("class", ToastClass(toast.Category))
			w.raw(`>`)
			if toast.Title != "" {
				w.raw(`<strong>`)
				w.text(toast.Title)
				w.raw(`</strong>`)
			}
			if toast.Description != "" {
				w.raw(` <span>`)
				w.text(toast.Description)
				w.raw(`</span>`)
			}
			w.raw(`</div>`)
		}
		w.raw(`</div>`)
	})
}
