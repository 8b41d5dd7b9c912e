package pages_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimage/internal/app/api"
	"zimage/internal/app/api/apitest"
	"zimage/internal/app/pages"
	"zimage/internal/pkg/errs"
)

func galleryBackend(t *testing.T) (*api.Client, *apitest.Backend) {
	return newAPI(t, func(r chi.Router) {
		r.Get("/api/gallery", apitest.Handler(http.StatusOK, api.GalleryPage{
			Items: []api.GalleryItem{
				{ID: "a", Prompt: "Misty mountains"},
				{ID: "b", Prompt: "city at night"},
			},
			Total:      40,
			Page:       1,
			TotalPages: 3,
		}))
	})
}

func TestGalleryLoadIssuesOneRequest(t *testing.T) {
	client, backend := galleryBackend(t)
	g := pages.NewGallery(client.Gallery)

	items, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	q := reqs[0].URL.Query()
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "18", q.Get("limit"))
	assert.Equal(t, "likes", q.Get("sort_by"), "most liked first by default")

	assert.Equal(t, 3, g.Pager().TotalPages)
	assert.Equal(t, 40, g.Total())
}

func TestGallerySearchFiltersLocally(t *testing.T) {
	client, backend := galleryBackend(t)
	g := pages.NewGallery(client.Gallery)

	g.SetSearch("MOUNTAIN")
	items, err := g.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
	assert.Empty(t, backend.Requests()[0].URL.Query().Get("search"))
}

func TestGallerySetSortResetsPage(t *testing.T) {
	client, backend := galleryBackend(t)
	g := pages.NewGallery(client.Gallery)

	_, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, g.Next())

	require.NoError(t, g.SetSort(api.SortByComments))
	assert.Equal(t, 1, g.Pager().Page)
	assert.Equal(t, api.SortByComments, g.Sort())

	_, err = g.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "comments", backend.Requests()[1].URL.Query().Get("sort_by"))

	err = g.SetSort("random")
	assert.True(t, errs.Is(err, errs.ErrInvalidParams))
	assert.Equal(t, api.SortByComments, g.Sort())
}

func TestGallerySetPageLoadsOnce(t *testing.T) {
	client, backend := galleryBackend(t)
	g := pages.NewGallery(client.Gallery)
	require.NoError(t, g.SetSort(api.SortByTime))

	g.SetPage(2)
	_, err := g.Load(context.Background())
	require.NoError(t, err)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	q := reqs[0].URL.Query()
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "18", q.Get("limit"))
	assert.Equal(t, "time", q.Get("sort_by"))
	assert.Equal(t, 2, g.Pager().Page)

	g.SetPage(9)
	_, err = g.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "9", backend.Requests()[1].URL.Query().Get("page"))
	assert.Equal(t, 3, g.Pager().Page, "pulled back to the reported page count")
}
