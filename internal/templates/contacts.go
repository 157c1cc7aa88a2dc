package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/jjenkins/agencydash/internal/model"
)

// Reveal fields
const (
	FieldEmail = "email"
	FieldPhone = "phone"
)

// ContactPage is one page of the contact listing
type ContactPage struct {
	Contacts   []model.ContactListing
	Pagination Pagination
}

// Contacts renders the full contacts page
func Contacts(userID string, p ContactPage) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.raw(`<h2>Contacts</h2><p>View and contact agency representatives.</p>`)
		h.rawf(`<p class="total">Total Records: <strong>%d</strong></p>`, p.Pagination.Total)
		h.component(ctx, ContactsTable(p))
	})
	return Layout("Contacts", userID, body)
}

// ContactsTable renders the table and pagination, the unit HTMX swaps
func ContactsTable(p ContactPage) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<div id="contacts-table"><table><thead><tr>`)
		h.raw(`<th>Name</th><th>Title</th><th>Agency &amp; Dept</th><th>Contact Info</th>`)
		h.raw(`</tr></thead><tbody>`)
		if len(p.Contacts) == 0 {
			h.raw(`<tr><td colspan="4">No contacts found.</td></tr>`)
		}
		for _, c := range p.Contacts {
			h.raw(`<tr><td>`)
			h.text(c.FullName())
			h.raw(`</td><td>`)
			h.text(c.Title)
			h.raw(`</td><td><div>`)
			h.text(AgencyName(c.AgencyName))
			h.raw(`</div><div class="muted">`)
			h.text(c.Department)
			h.raw(`</div></td><td>`)
			h.component(ctx, RevealButton(c.ID, FieldEmail, ""))
			h.component(ctx, RevealButton(c.ID, FieldPhone, ""))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		paginationControls(ctx, h, p.Pagination)
		h.raw(`</div>`)
	})
}
