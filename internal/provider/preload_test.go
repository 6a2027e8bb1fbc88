package provider

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabcanvas/internal/storage"
	"github.com/jmylchreest/tabcanvas/pkg/httpclient"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func testClient() *httpclient.Client {
	cfg := httpclient.DefaultConfig()
	cfg.RetryAttempts = 0
	return httpclient.New(cfg)
}

func TestPreloader_Preload(t *testing.T) {
	body := testPNG(t, 8, 4)
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(body)
		case "/html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		case "/garbage":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("not an image"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cache, err := storage.NewImageCache(t.TempDir())
	require.NoError(t, err)
	p := NewPreloader(testClient(), cache)
	ctx := context.Background()

	assert.True(t, p.Preload(ctx, server.URL+"/ok.png", "random"))
	meta, err := cache.LookupURL(server.URL + "/ok.png")
	require.NoError(t, err)
	assert.Equal(t, 8, meta.Width)
	assert.Equal(t, "image/png", meta.ContentType)

	assert.True(t, p.Preload(ctx, server.URL+"/ok.png", "random"))
	assert.Equal(t, int32(1), hits.Load(), "second preload served from cache")

	assert.False(t, p.Preload(ctx, server.URL+"/html", "random"))
	assert.False(t, p.Preload(ctx, server.URL+"/garbage", "random"))
	assert.False(t, p.Preload(ctx, server.URL+"/missing", "random"))
	assert.False(t, p.Preload(ctx, "", "random"))
	assert.False(t, p.Preload(ctx, "data:image/png;base64,AA==", "random"))
}

func TestPreloader_WithoutCache(t *testing.T) {
	body := testPNG(t, 2, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer server.Close()

	assert.True(t, NewPreloader(testClient(), nil).Preload(context.Background(), server.URL, "unsplash"))
}
