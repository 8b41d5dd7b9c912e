package pages_test

import (
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimage/internal/app/api"
	"zimage/internal/app/api/apitest"
	"zimage/internal/app/pages"
	"zimage/internal/pkg/errs"
)

// newAPI returns a client without credentials pointed at a fake backend.
func newAPI(t *testing.T, setup func(r chi.Router)) (*api.Client, *apitest.Backend) {
	t.Helper()
	backend := apitest.New(t, setup)
	return api.New(backend.URL, nil), backend
}

func TestPagerClampsIntoRange(t *testing.T) {
	p := pages.NewPager()
	assert.Equal(t, 1, p.Prev())
	assert.Equal(t, 1, p.Next(), "no total means a single page")

	p.SetTotal(3)
	assert.Equal(t, 2, p.Next())
	assert.Equal(t, 3, p.Next())
	assert.Equal(t, 3, p.Next())
	assert.False(t, p.HasNext())
	assert.True(t, p.HasPrev())

	p.SetTotal(2)
	assert.Equal(t, 2, p.Page, "shrinking the total pulls the page back")
}

func TestPagerGotoRejectsOutOfRange(t *testing.T) {
	p := pages.NewPager()
	p.SetTotal(4)
	require.NoError(t, p.Goto(3))

	for _, page := range []int{0, -1, 5} {
		err := p.Goto(page)
		assert.True(t, errs.Is(err, errs.ErrPageOutOfRange), "page %d", page)
		assert.Equal(t, 3, p.Page)
	}
}

func TestPagerSeekBeforeTotalIsKnown(t *testing.T) {
	p := pages.NewPager()
	p.Seek(5)
	assert.Equal(t, 5, p.Page)

	p.SetTotal(3)
	assert.Equal(t, 3, p.Page)

	p.Seek(-2)
	assert.Equal(t, 1, p.Page)
}

func TestFilterByPrompt(t *testing.T) {
	items := []string{"A red Fox", "blue sky", "fox in snow"}
	id := func(s string) string { return s }

	assert.Equal(t, []string{"A red Fox", "fox in snow"}, pages.FilterByPrompt(items, "  FOX ", id))
	assert.Equal(t, items, pages.FilterByPrompt(items, "   ", id))
	assert.Empty(t, pages.FilterByPrompt(items, "cat", id))
}
