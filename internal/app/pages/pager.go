/*
Package pages holds the page controllers: the state and actions behind each screen of the
client, independent of how the screen is drawn.

Controllers own pagination, client-side search filtering, polling while work is pending and
the local state updates that follow a successful action. Destructive actions ask a
confirm.Confirmer first and issue no request when declined.
*/
package pages

import "zimage/internal/pkg/errs"

// Pager tracks the current page within [1, max(1, TotalPages)].
type Pager struct {
	Page       int
	TotalPages int
}

// NewPager starts on page 1.
func NewPager() Pager {
	return Pager{Page: 1}
}

// Last returns the last reachable page.
func (p *Pager) Last() int {
	return max(1, p.TotalPages)
}

// SetTotal records the page count reported by the backend and pulls the current page back in range.
func (p *Pager) SetTotal(totalPages int) {
	p.TotalPages = max(0, totalPages)
	p.Page = min(max(1, p.Page), p.Last())
}

// Next moves forward one page, stopping at the last page.
func (p *Pager) Next() int {
	p.Page = min(p.Page+1, p.Last())
	return p.Page
}

// Prev moves back one page, stopping at page 1.
func (p *Pager) Prev() int {
	p.Page = max(p.Page-1, 1)
	return p.Page
}

// Goto jumps to page. Pages outside the range are rejected and the current page is kept.
func (p *Pager) Goto(page int) error {
	if page < 1 || page > p.Last() {
		return errs.NewError(errs.ErrPageOutOfRange, page, p.Last())
	}
	p.Page = page
	return nil
}

// Seek selects page before the page count is known. The next SetTotal pulls it back in range.
func (p *Pager) Seek(page int) {
	p.Page = max(1, page)
}

// HasNext reports whether Next would move.
func (p *Pager) HasNext() bool { return p.Page < p.Last() }

// HasPrev reports whether Prev would move.
func (p *Pager) HasPrev() bool { return p.Page > 1 }
