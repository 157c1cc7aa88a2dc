package templates

import (
	"context"
	"fmt"
	"net/url"

	"github.com/a-h/templ"
)

func fieldLabel(field string) string {
	if field == FieldPhone {
		return "Phone"
	}
	return "Email"
}

// RevealButton renders the button that reveals one field of a contact. A
// non-empty errMsg is shown beneath it.
func RevealButton(contactID, field, errMsg string) templ.Component {
	return component(func(_ context.Context, h *html) {
		target := fmt.Sprintf("/contacts/%s/reveal?field=%s", url.PathEscape(contactID), url.QueryEscape(field))
		h.raw(`<div class="reveal"><button hx-post="`)
		h.url(target)
		h.raw(`" hx-target="closest .reveal" hx-swap="outerHTML" hx-disabled-elt="this">Reveal `)
		h.text(fieldLabel(field))
		h.raw(`</button>`)
		if errMsg != "" {
			h.raw(`<span class="error">`)
			h.text(errMsg)
			h.raw(`</span>`)
		}
		h.raw(`</div>`)
	})
}

// RevealedValue replaces the button once the field is revealed
func RevealedValue(field, value string) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<div class="reveal revealed" data-field="`)
		h.text(field)
		h.raw(`">`)
		h.text(value)
		h.raw(`</div>`)
	})
}

// LimitReached replaces the button with a disabled one and opens the
// upgrade modal
func LimitReached(limit int) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<div class="reveal"><button disabled>Limit Reached</button>`)
		h.raw(`<div class="modal" role="dialog" aria-modal="true"><div class="modal-content">`)
		h.raw(`<h3>Daily Limit Reached</h3><p>`)
		h.rawf(`You have viewed %d contacts today. To access more contacts and unlock unlimited views, please upgrade your plan.`, limit)
		h.raw(`</p><button type="button" onclick="this.closest('.modal').remove()">Upgrade to Pro</button>`)
		h.raw(`<button type="button" onclick="this.closest('.modal').remove()">Cancel</button>`)
		h.raw(`</div></div></div>`)
	})
}
