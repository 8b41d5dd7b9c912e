package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zimage/internal/app/db"
	"zimage/internal/app/storage"
	"zimage/internal/pkg/errs"
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR-image-bytes")

type imageMock struct{ mock.Mock }

func (m *imageMock) Image(ctx context.Context, jobID string) ([]byte, string, error) {
	args := m.Called(ctx, jobID)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func openLedger(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "zimage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestExportToLocalDirectory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "out")
	images := new(imageMock)
	images.On("Image", mock.Anything, "j1").Return(pngImage, "image/png", nil).Twice()
	ledger := openLedger(t)

	exporter := storage.NewExporter(images, storage.LocalSink{Dir: dir}, ledger)

	rec, err := exporter.Export(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "zimage-j1.png"), rec.Location)
	assert.Equal(t, "local", rec.Sink)

	written, err := os.ReadFile(rec.Location)
	require.NoError(t, err)
	assert.Equal(t, pngImage, written)

	// A second export finds the identical file and only records it.
	again, err := exporter.Export(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, rec.Location, again.Location)

	records, err := ledger.Exports(ctx, "j1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	images.AssertExpectations(t)
}

func TestExportRejectsNonImages(t *testing.T) {
	images := new(imageMock)
	images.On("Image", mock.Anything, "j1").Return([]byte("<html>oops</html>"), "text/html", nil).Once()
	ledger := openLedger(t)

	_, err := storage.NewExporter(images, storage.LocalSink{Dir: t.TempDir()}, ledger).Export(context.Background(), "j1")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrUnsupportedImageType))

	records, err := ledger.Exports(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExportPropagatesDownloadErrors(t *testing.T) {
	images := new(imageMock)
	images.On("Image", mock.Anything, "gone").Return(nil, "", errs.NewError(errs.ErrNotFound)).Once()

	_, err := storage.NewExporter(images, storage.LocalSink{Dir: t.TempDir()}, openLedger(t)).Export(context.Background(), "gone")
	assert.True(t, errs.Is(err, errs.ErrNotFound))
}

// fakeBucket is a minimal path-style S3 endpoint holding objects in memory.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeBucket(t *testing.T) (*fakeBucket, *httptest.Server) {
	t.Helper()
	b := &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}

	r := chi.NewRouter()
	r.Put("/{bucket}/{key}", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.objects[chi.URLParam(r, "key")] = data
		b.types[chi.URLParam(r, "key")] = r.Header.Get("Content-Type")
		b.mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	})
	r.Head("/{bucket}/{key}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		data, ok := b.objects[chi.URLParam(r, "key")]
		contentType := b.types[chi.URLParam(r, "key")]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return b, srv
}

func newS3Sink(t *testing.T, endpoint string) *storage.S3Sink {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))

	sink, err := storage.NewS3Sink(context.Background(), storage.ServiceConfig{
		S3BucketName:      "exports",
		S3Endpoint:        endpoint,
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	return sink
}

func TestS3SinkPutAndStat(t *testing.T) {
	ctx := context.Background()
	bucket, srv := newFakeBucket(t)
	sink := newS3Sink(t, srv.URL)

	_, found, err := sink.Stat(ctx, "zimage-j1.png")
	require.NoError(t, err)
	assert.False(t, found)

	location, err := sink.Put(ctx, "zimage-j1.png", pngImage, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "s3://exports/zimage-j1.png", location)

	bucket.mu.Lock()
	assert.Contains(t, bucket.objects, "zimage-j1.png")
	bucket.mu.Unlock()

	info, found, err := sink.Stat(ctx, "zimage-j1.png")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, int64(len(pngImage)), info.Size)
	assert.Equal(t, location, info.Location)
}

func TestS3SinkPresignDownload(t *testing.T) {
	sink := newS3Sink(t, "http://bucket.test")

	u, err := sink.PresignDownload(context.Background(), "zimage-j1.png", 10*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "http://bucket.test/exports/zimage-j1.png")
	assert.Contains(t, u, "X-Amz-Expires=600")
}
