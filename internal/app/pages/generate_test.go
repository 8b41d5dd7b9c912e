package pages_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimage/internal/app/api"
	"zimage/internal/app/api/apitest"
	"zimage/internal/app/pages"
	"zimage/internal/app/session"
	"zimage/internal/app/user"
	"zimage/internal/pkg/errs"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func newProfile(t *testing.T, u *user.User) *session.Store {
	t.Helper()
	store := session.NewStore(&memKV{data: map[string]string{}})
	require.NoError(t, store.Hydrate(context.Background()))
	if u != nil {
		require.NoError(t, store.SetAuth(context.Background(), "tok", u))
	}
	return store
}

func TestGenerateFormDefaults(t *testing.T) {
	f := pages.NewGenerateForm()
	assert.Equal(t, 1024, f.Width)
	assert.Equal(t, 576, f.Height)
	assert.Equal(t, 9, f.Steps)
	assert.Equal(t, pages.RandomSeed, f.Seed)

	f.Prompt = "  a cat  "
	in := f.Request()
	assert.Equal(t, "a cat", in.Prompt)
	assert.Nil(t, in.Seed)

	f.Seed = 42
	require.NotNil(t, f.Request().Seed)
	assert.EqualValues(t, 42, *f.Request().Seed)
}

func TestGenerateFormPresets(t *testing.T) {
	f := pages.NewGenerateForm()
	require.NoError(t, f.ApplyPreset("9:16"))
	assert.Equal(t, 576, f.Width)
	assert.Equal(t, 1024, f.Height)

	require.NoError(t, f.ApplyPreset("4:3"))
	assert.Equal(t, 768, f.Height)

	err := f.ApplyPreset("21:9")
	assert.True(t, errs.Is(err, errs.ErrInvalidParams))
	assert.Equal(t, 768, f.Height)
}

func TestGenerateFormValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(f *pages.GenerateForm)
		code int
	}{
		{"blank prompt", func(f *pages.GenerateForm) { f.Prompt = "   " }, errs.ErrPromptRequired},
		{"long prompt", func(f *pages.GenerateForm) { f.Prompt = strings.Repeat("字", 2001) }, errs.ErrPromptTooLong},
		{"long negative", func(f *pages.GenerateForm) { f.NegativePrompt = strings.Repeat("n", 1001) }, errs.ErrPromptTooLong},
		{"narrow", func(f *pages.GenerateForm) { f.Width = 255 }, errs.ErrInvalidImageSize},
		{"tall", func(f *pages.GenerateForm) { f.Height = 1025 }, errs.ErrInvalidImageSize},
		{"few steps", func(f *pages.GenerateForm) { f.Steps = 3 }, errs.ErrInvalidSteps},
		{"many steps", func(f *pages.GenerateForm) { f.Steps = 31 }, errs.ErrInvalidSteps},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := pages.NewGenerateForm()
			f.Prompt = "ok"
			tc.edit(&f)
			assert.True(t, errs.Is(f.Validate(), tc.code))
		})
	}

	f := pages.NewGenerateForm()
	f.Prompt = strings.Repeat("字", 2000)
	assert.NoError(t, f.Validate())
}

func TestGeneratorSubmit(t *testing.T) {
	var body map[string]any
	client, _ := newAPI(t, func(r chi.Router) {
		r.Post("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			apitest.JSON(w, http.StatusOK, api.Job{ID: "new", Status: api.JobQueued})
		})
	})
	profile := newProfile(t, &user.User{ID: 1, Username: "alice", RemainingQuota: 2})
	gen := pages.NewGenerator(client.Jobs, profile)

	form := pages.NewGenerateForm()
	form.Prompt = "harbor at dawn"
	job, err := gen.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "new", job.ID)

	assert.Equal(t, "harbor at dawn", body["prompt"])
	assert.EqualValues(t, 1024, body["width"])
	assert.EqualValues(t, 9, body["steps"])
	assert.NotContains(t, body, "seed")

	assert.Equal(t, 1, profile.User().RemainingQuota)
}

func TestGeneratorRefusesBeforeSending(t *testing.T) {
	client, backend := newAPI(t, func(r chi.Router) {
		r.Post("/api/jobs", apitest.Handler(http.StatusOK, api.Job{ID: "x"}))
	})
	form := pages.NewGenerateForm()
	form.Prompt = "anything"

	_, err := pages.NewGenerator(client.Jobs, newProfile(t, nil)).Submit(context.Background(), form)
	assert.True(t, errs.Is(err, errs.ErrLoginRequired))

	spent := newProfile(t, &user.User{ID: 1, Username: "bob", RemainingQuota: 0})
	_, err = pages.NewGenerator(client.Jobs, spent).Submit(context.Background(), form)
	assert.True(t, errs.Is(err, errs.ErrQuotaExhausted))

	assert.Empty(t, backend.Requests())
}

func TestGeneratorSurfacesServerMessage(t *testing.T) {
	client, _ := newAPI(t, func(r chi.Router) {
		r.Post("/api/jobs", func(w http.ResponseWriter, _ *http.Request) {
			apitest.Detail(w, http.StatusBadRequest, "Prompt contains blocked words")
		})
	})
	profile := newProfile(t, &user.User{ID: 1, Username: "alice", RemainingQuota: 5})
	form := pages.NewGenerateForm()
	form.Prompt = "something"

	_, err := pages.NewGenerator(client.Jobs, profile).Submit(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, "Prompt contains blocked words", errs.Message(err))
	assert.Equal(t, 5, profile.User().RemainingQuota)
}
