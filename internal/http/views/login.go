package views

import (
	"github.com/a-h/templ"

	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
)

func LoginPage(data viewmodels.LoginViewData) templ.Component {
	body := component(func(w *htmlWriter) {
		w.raw(`<section class="login"><h1>Sign in</h1>`)
		w.raw(`<p>Use your marketplace administrator account.</p>`)
		if data.ErrorMessage != "" {
			w.raw(`<p class="state-failed" role="alert">`)
			w.text(data.ErrorMessage)
			w.raw(`</p>`)
		}
		w.raw(`<form method="post" action="/login" hx-boost="false">`)
		w.csrfInput(data.CSRFToken)
		if data.Next != "" {
			w.hiddenInput("next", data.Next)
		}
		w.raw(`<label>Email <input type="email" name="email" autocomplete="username" required`)
		w.attr("value", data.Email)
		w.raw(`></label> `)
		w.raw(`<label>Password <input type="password" name="password" autocomplete="current-password" required></label> `)
		w.raw(`<button type="submit">Sign in</button></form></section>`)
	})
	return Layout(viewmodels.LayoutData{
		Title:     "Sign in",
		CSRFToken: data.CSRFToken,
		Toast:     data.Toast,
	}, body)
}
