package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so components can be written as
// straight-line code.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (w *htmlWriter) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *htmlWriter) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *htmlWriter) attr(name, value string) {
	w.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (w *htmlWriter) flag(name string, on bool) {
	if on {
		w.raw(" " + name)
	}
}

func (w *htmlWriter) component(c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(w.ctx, w.w)
}

func (w *htmlWriter) csrfInput(token string) {
	if token == "" {
		return
	}
	w.raw(`<input type="hidden" name="csrf"`)
	w.attr("value", token)
	w.raw(`>`)
}

func (w *htmlWriter) hiddenInput(name, value string) {
	w.raw(`<input type="hidden"`)
	w.attr("name", name)
	w.attr("value", value)
	w.raw(`>`)
}

func component(fn func(w *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &htmlWriter{ctx: ctx, w: out}
		fn(w)
		return w.err
	})
}
