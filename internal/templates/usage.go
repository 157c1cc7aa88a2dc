package templates

import (
	"context"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/jjenkins/agencydash/internal/quota"
)

// Usage renders the caller's quota standing
func Usage(userID string, d quota.Decision) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.raw(`<h2>Today's usage</h2>`)
		h.component(ctx, usageSummary(d.CurrentCount, d.Limit, d.Remaining()))
		h.raw(`<p>Your allowance resets at <time datetime="`)
		h.text(d.ResetsAt.Format(time.RFC3339))
		h.raw(`">`)
		h.text(d.ResetsAt.Format("Jan 2, 3:04 PM MST"))
		h.raw(`</time> (`)
		h.text(d.ResetsAt.Location().String())
		h.raw(`), `)
		h.text(humanize.Time(d.ResetsAt))
		h.raw(`.</p>`)
		if !d.Allowed {
			h.raw(`<p class="error">Daily limit reached.</p>`)
		}
	})
	return Layout("Usage", userID, body)
}
