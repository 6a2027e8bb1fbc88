package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

func TestLocalImageHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	base := "/api/v1/profiles/default/local-images"

	rec := env.do(t, http.MethodPost, base+"?name=beach.png", testPNG(t, 128, 32), "Content-Type", "image/png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	uploaded := decode[map[string]any](t, rec)
	id, _ := uploaded["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "beach.png", uploaded["name"])
	assert.Equal(t, float64(64), uploaded["width"])
	assert.NotContains(t, uploaded, "data")

	rec = env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string][]map[string]any](t, rec)["images"], 1)

	rec = env.do(t, http.MethodPut, base+"/"+id+"/select", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settings := decode[models.BackgroundSettings](t, rec)
	assert.Equal(t, models.BackgroundTypeLocal, settings.Type)
	assert.Equal(t, id, settings.CurrentLocalImage)

	rec = env.do(t, http.MethodGet, "/api/v1/profiles/default/background/style", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[service.StyleResult](t, rec).Style.Main.BackgroundImage, "data:image/jpeg;base64,")

	rec = env.do(t, http.MethodDelete, base+"/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, base+"/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocalImageHandler_UploadErrors(t *testing.T) {
	env := newTestEnv(t)
	base := "/api/v1/profiles/default/local-images"

	rec := env.do(t, http.MethodPost, base, []byte("<svg/>"), "Content-Type", "image/svg+xml")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = env.do(t, http.MethodPost, base, make([]byte, 1<<20+1), "Content-Type", "image/png")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = env.do(t, http.MethodPut, base+"/"+models.NewULID().String()+"/select", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
