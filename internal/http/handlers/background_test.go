package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

func TestBackgroundHandler_GetSettings_Defaults(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/profiles/default/background", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[models.BackgroundSettings](t, rec)
	assert.Equal(t, models.DefaultBackgroundSettings().Type, got.Type)
	assert.Equal(t, models.DefaultDisplaySettings(), got.Display)
}

func TestBackgroundHandler_SaveSettings(t *testing.T) {
	env := newTestEnv(t)

	in := models.DefaultBackgroundSettings()
	in.Type = models.BackgroundTypeColor
	in.Color = "#FFF"

	rec := env.do(t, http.MethodPut, "/api/v1/profiles/work/background", in)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "#ffffff", decode[models.BackgroundSettings](t, rec).Color)

	rec = env.do(t, http.MethodGet, "/api/v1/profiles/work/background", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.BackgroundTypeColor, decode[models.BackgroundSettings](t, rec).Type)

	rec = env.do(t, http.MethodGet, "/api/v1/profiles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"work"}, decode[map[string]any](t, rec)["profiles"])
}

func TestBackgroundHandler_SaveSettings_Invalid(t *testing.T) {
	env := newTestEnv(t)

	in := models.DefaultBackgroundSettings()
	in.Color = "not a colour"
	rec := env.do(t, http.MethodPut, "/api/v1/profiles/default/background", in)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/profiles/bad%20name/background", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBackgroundHandler_GetStyle(t *testing.T) {
	env := newTestEnv(t)

	in := models.DefaultBackgroundSettings()
	in.Type = models.BackgroundTypeColor
	in.Color = "#000000"
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/v1/profiles/default/background", in).Code)

	rec := env.do(t, http.MethodGet, "/api/v1/profiles/default/background/style", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[service.StyleResult](t, rec)
	assert.Equal(t, "#000000", res.Style.Main.BackgroundColor)
	assert.Equal(t, "none", res.Style.Main.BackgroundImage)
	assert.Equal(t, "light", res.TextTheme)
}

func TestBackgroundHandler_Resolve(t *testing.T) {
	env := newTestEnv(t)

	in := models.DefaultBackgroundSettings()
	in.Type = models.BackgroundTypeGradient
	rec := env.do(t, http.MethodPost, "/api/v1/background/resolve", in)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[service.StyleResult](t, rec)
	assert.True(t, strings.HasPrefix(res.Style.Main.BackgroundImage, "linear-gradient("))

	in.Display.OverlayColor = "nope"
	rec = env.do(t, http.MethodPost, "/api/v1/background/resolve", in)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBackgroundHandler_Resolve_StopWithoutColour(t *testing.T) {
	env := newTestEnv(t)

	in := models.DefaultBackgroundSettings()
	in.Type = models.BackgroundTypeGradient
	in.Gradient.Type = models.GradientTypeLinear
	in.Gradient.Direction = 135
	in.Gradient.Colors = []models.GradientStop{
		{Color: "#ff0000", Position: 20},
		{Color: "", Position: 80},
	}

	rec := env.do(t, http.MethodPost, "/api/v1/background/resolve", in)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[service.StyleResult](t, rec)
	assert.Equal(t, "linear-gradient(135deg, #ff0000 0%, #ff0000 100%)", res.Style.Main.BackgroundImage)
}

func TestBackgroundHandler_CSS(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/profiles/default/background.css?selector=%23bg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "#bg {"))

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = env.do(t, http.MethodGet, "/api/v1/profiles/default/background.css?selector=%23bg", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/profiles/bad%20name/background.css", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}
