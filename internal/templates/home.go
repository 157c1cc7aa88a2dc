package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/jjenkins/agencydash/internal/service"
)

// Home renders the dashboard
func Home(userID string, m *service.DashboardMetrics) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.raw(`<h2>Dashboard</h2><div class="cards">`)
		card(h, "Agencies", FormatNumber(int64(m.Directory.TotalAgencies)))
		card(h, "Contacts", FormatNumber(int64(m.Directory.TotalContacts)))
		card(h, "Contacts without agency", FormatNumber(int64(m.Directory.UnlinkedContacts)))
		card(h, "States covered", FormatNumber(int64(m.Directory.StatesCovered)))
		if m.Directory.RevealsToday.Valid {
			card(h, "Reveals today (all users)", FormatNumber(m.Directory.RevealsToday.Int64))
		}
		h.raw(`</div>`)
		h.component(ctx, usageSummary(m.Usage.CurrentCount, m.Usage.Limit, m.Usage.Remaining()))
		h.raw(`<p><a href="/contacts">Browse contacts</a> or <a href="/agencies">browse agencies</a>.</p>`)
	})
	return Layout("Dashboard", userID, body)
}

func card(h *html, label, value string) {
	h.raw(`<div class="card"><div class="card-label">`)
	h.text(label)
	h.raw(`</div><div class="card-value">`)
	h.text(value)
	h.raw(`</div></div>`)
}

func usageSummary(count, limit, remaining int) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.rawf(`<p class="usage">You have revealed <strong>%d</strong> of %d contacts today. <strong>%d</strong> remaining.</p>`,
			count, limit, remaining)
	})
}
