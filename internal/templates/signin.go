package templates

import (
	"context"

	"github.com/a-h/templ"
)

// SignIn renders the token sign-in form
func SignIn(errMsg string) templ.Component {
	body := component(func(_ context.Context, h *html) {
		h.raw(`<h2>Sign in</h2>`)
		if errMsg != "" {
			h.raw(`<p class="error">`)
			h.text(errMsg)
			h.raw(`</p>`)
		}
		h.raw(`<form method="post" action="/sign-in">`)
		h.raw(`<label for="token">Session token</label>`)
		h.raw(`<textarea id="token" name="token" rows="4" required></textarea>`)
		h.raw(`<button type="submit">Sign in</button></form>`)
	})
	return Layout("Sign in", "", body)
}
