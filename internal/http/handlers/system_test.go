package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabcanvas/internal/http/handlers"
	"github.com/jmylchreest/tabcanvas/internal/scheduler"
	"github.com/jmylchreest/tabcanvas/internal/storage"
	"github.com/jmylchreest/tabcanvas/pkg/httpclient"
)

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[handlers.HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "ok", body.Components.Database.Status)
	assert.Equal(t, "sqlite", body.Components.Database.Driver)
	require.NotNil(t, body.Components.Database.Pool)
	assert.Equal(t, 1, body.Components.Database.Pool.MaxOpen, "in-memory sqlite uses one connection")
	assert.Len(t, body.Components.ImageSources, 2)
	assert.Positive(t, body.CPU.Cores)
}

func TestHealthHandler_DegradedWhenCircuitOpen(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	cfg := httpclient.DefaultConfig()
	cfg.RetryAttempts = 0
	cfg.CircuitThreshold = 1
	cfg.CircuitTimeout = time.Hour
	cfg.Logger = quietLogger()
	clients := httpclient.NewRegistry()
	client := clients.GetOrCreate("unsplash", cfg)
	resp, err := client.Get(context.Background(), upstream.URL)
	if err == nil {
		resp.Body.Close()
	}

	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Test API", "1.0.0"))
	handlers.NewHealthHandler("dev").WithClients(clients).Register(api)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[handlers.HealthResponse](t, rec)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "not_configured", body.Components.Database.Status)
	require.Len(t, body.Components.CircuitBreakers, 1)
	assert.Equal(t, "unsplash", body.Components.CircuitBreakers[0].Name)
}

type fakeJobs struct {
	ran []string
}

func (f *fakeJobs) Jobs() []scheduler.JobStatus {
	return []scheduler.JobStatus{{Name: scheduler.JobRotateWallpaper, Schedule: "@hourly", Next: time.Now()}}
}

func (f *fakeJobs) RunNow(_ context.Context, name string) error {
	if name != scheduler.JobRotateWallpaper {
		return scheduler.ErrUnknownJob
	}
	f.ran = append(f.ran, name)
	return nil
}

func TestJobHandler(t *testing.T) {
	jobs := &fakeJobs{}
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Test API", "1.0.0"))
	handlers.NewJobHandler(jobs).Register(api)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]map[string]any](t, rec)["jobs"], 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/jobs/rotate_wallpaper/run", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{scheduler.JobRotateWallpaper}, jobs.ran)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/jobs/nope/run", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCacheHandler(t *testing.T) {
	cache, err := storage.NewImageCache(t.TempDir())
	require.NoError(t, err)

	data := testPNG(t, 4, 4)
	meta := storage.NewCachedImage("https://img.example/a.png")
	meta.ContentType = "image/png"
	require.NoError(t, cache.Store(meta, data))

	router := chi.NewRouter()
	handlers.NewCacheHandler(cache).RegisterChiRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, handlers.ImageURL(meta.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, data, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, handlers.ImageURL(storage.ImageID("https://img.example/missing.png")), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, handlers.ImageURL("..%2F..%2Fetc"), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
