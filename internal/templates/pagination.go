package templates

import (
	"context"
	"fmt"
)

// Pagination describes the current page of a listing
type Pagination struct {
	Page       int
	TotalPages int
	Total      int
	Path       string
	Target     string
}

// HasPrev reports whether there is an earlier page
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether there is a later page
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

func (p Pagination) href(page int) string {
	return fmt.Sprintf("%s?page=%d", p.Path, page)
}

func (p Pagination) link(h *html, page int, label string, enabled bool) {
	if !enabled {
		h.raw(`<button disabled>`)
		h.text(label)
		h.raw(`</button>`)
		return
	}
	h.raw(`<a href="`)
	h.url(p.href(page))
	h.raw(`" hx-get="`)
	h.url(p.href(page))
	h.raw(`" hx-target="`)
	h.text(p.Target)
	h.raw(`" hx-swap="outerHTML" hx-push-url="true">`)
	h.text(label)
	h.raw(`</a>`)
}

func paginationControls(_ context.Context, h *html, p Pagination) {
	h.raw(`<div class="pagination">`)
	p.link(h, p.Page-1, "Previous", p.HasPrev())
	h.rawf(` <span>Showing page %d of %d</span> `, p.Page, max(p.TotalPages, 1))
	p.link(h, p.Page+1, "Next", p.HasNext())
	h.raw(`</div>`)
}
