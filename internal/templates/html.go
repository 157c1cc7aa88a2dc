// Package templates renders the HTML pages and HTMX fragments.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// html accumulates writes and keeps the first error
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *html) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

// text writes escaped text
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// url writes a sanitized, escaped URL for use inside an attribute
func (h *html) url(s string) {
	h.raw(templ.EscapeString(string(templ.URL(s))))
}

func (h *html) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(ctx, h)
		return h.err
	})
}
