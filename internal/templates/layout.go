package templates

import (
	"context"

	"github.com/a-h/templ"
)

// AppName is shown in the page title and header
var AppName = "Agency Dashboard"

// Layout wraps body in the page shell. userID is empty for anonymous visitors.
func Layout(title, userID string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(` | `)
		h.text(AppName)
		h.raw(`</title>`)
		h.raw(`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`)
		h.raw(`</head><body><header><nav>`)
		h.raw(`<a href="/"><strong>`)
		h.text(AppName)
		h.raw(`</strong></a> `)
		if userID != "" {
			h.raw(`<a href="/agencies">Agencies</a> <a href="/contacts">Contacts</a> <a href="/usage">Usage</a> `)
			h.raw(`<span class="user">`)
			h.text(userID)
			h.raw(`</span> <form method="post" action="/sign-out" style="display:inline"><button type="submit">Sign out</button></form>`)
		} else {
			h.raw(`<a href="/sign-in">Sign in</a>`)
		}
		h.raw(`</nav></header><main>`)
		h.component(ctx, body)
		h.raw(`</main><div id="modal"></div></body></html>`)
	})
}
