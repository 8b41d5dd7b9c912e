package pages

import (
	"context"
	"sync"

	"zimage/internal/app/api"
	"zimage/internal/pkg/errs"
)

// GalleryLimit is the page size of the public gallery.
const GalleryLimit = 18

// GalleryLister loads gallery pages.
type GalleryLister interface {
	List(ctx context.Context, page, limit int, sort api.GallerySort) (*api.GalleryPage, error)
}

// Gallery is the public gallery browser.
type Gallery struct {
	svc GalleryLister

	mu     sync.Mutex
	pager  Pager
	sort   api.GallerySort
	search string
	total  int
}

// NewGallery starts on page 1 with the most liked works first.
func NewGallery(svc GalleryLister) *Gallery {
	return &Gallery{svc: svc, pager: NewPager(), sort: api.SortByLikes}
}

// Load fetches the current page with one request and returns the items matching the search text.
func (g *Gallery) Load(ctx context.Context) ([]api.GalleryItem, error) {
	g.mu.Lock()
	page, sort, search := g.pager.Page, g.sort, g.search
	g.mu.Unlock()

	res, err := g.svc.List(ctx, page, GalleryLimit, sort)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.pager.SetTotal(res.TotalPages)
	g.total = res.Total
	g.mu.Unlock()

	return FilterByPrompt(res.Items, search, func(it api.GalleryItem) string { return it.Prompt }), nil
}

// SetSort changes the order and goes back to page 1.
func (g *Gallery) SetSort(sort api.GallerySort) error {
	if !sort.Valid() {
		return errs.NewError(errs.ErrInvalidParams, "sort must be time, likes or comments")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.sort = sort
	g.pager.Page = 1
	return nil
}

// SetSearch sets the prompt filter applied to loaded items.
func (g *Gallery) SetSearch(query string) {
	g.mu.Lock()
	g.search = query
	g.mu.Unlock()
}

// Goto selects a page; see Pager.Goto.
func (g *Gallery) Goto(page int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pager.Goto(page)
}

// SetPage selects the page the next Load requests, clamped to the reported count after it.
func (g *Gallery) SetPage(page int) {
	g.mu.Lock()
	g.pager.Seek(page)
	g.mu.Unlock()
}

// Next advances one page.
func (g *Gallery) Next() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pager.Next()
}

// Prev goes back one page.
func (g *Gallery) Prev() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pager.Prev()
}

// Pager returns the pagination state after the last Load.
func (g *Gallery) Pager() Pager {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pager
}

// Sort returns the current order.
func (g *Gallery) Sort() api.GallerySort {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sort
}

// Total returns the number of published items reported by the last Load.
func (g *Gallery) Total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total
}
