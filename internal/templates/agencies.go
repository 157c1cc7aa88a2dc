package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/jjenkins/agencydash/internal/model"
)

// AgencyPage is one page of the agency listing
type AgencyPage struct {
	Agencies   []model.Agency
	Pagination Pagination
}

// Agencies renders the full agencies page
func Agencies(userID string, p AgencyPage) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.raw(`<h2>Agencies</h2><p>Browse government agencies.</p>`)
		h.rawf(`<p class="total">Total Records: <strong>%d</strong></p>`, p.Pagination.Total)
		h.component(ctx, AgenciesTable(p))
	})
	return Layout("Agencies", userID, body)
}

// AgenciesTable renders the table and pagination, the unit HTMX swaps
func AgenciesTable(p AgencyPage) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<div id="agencies-table"><table><thead><tr>`)
		h.raw(`<th>Name</th><th>State</th><th>Type</th><th>Population</th><th>Website</th>`)
		h.raw(`</tr></thead><tbody>`)
		if len(p.Agencies) == 0 {
			h.raw(`<tr><td colspan="5">No agencies found.</td></tr>`)
		}
		for _, a := range p.Agencies {
			h.raw(`<tr><td>`)
			h.text(a.Name)
			h.raw(`</td><td>`)
			h.text(a.State)
			h.raw(`</td><td>`)
			h.text(a.Type)
			h.raw(`</td><td>`)
			h.text(Population(a.Population))
			h.raw(`</td><td>`)
			if a.Website.Valid && a.Website.String != "" {
				h.raw(`<a href="`)
				h.url(a.Website.String)
				h.raw(`" target="_blank" rel="noopener noreferrer">Visit</a>`)
			} else {
				h.raw(`<span class="muted">No website</span>`)
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		paginationControls(ctx, h, p.Pagination)
		h.raw(`</div>`)
	})
}
