package background

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsColor(t *testing.T) {
	valid := []string{"#fff", "#1a1a2e", "#1A1A2E80", "red", "Transparent", "rgb(10, 20, 30)", "rgba(10,20,30,0.5)", "hsl(120 50% 50%)"}
	for _, c := range valid {
		assert.True(t, IsColor(c), c)
	}

	invalid := []string{"", "#ff", "#ggg", "notacolour", "rgb(1,2)", "url(x)"}
	for _, c := range invalid {
		assert.False(t, IsColor(c), c)
	}
}

func TestNormalizeHex(t *testing.T) {
	assert.Equal(t, "#aabbcc", NormalizeHex("#ABC"))
	assert.Equal(t, "#1a1a2e", NormalizeHex("#1A1A2E"))
	assert.Equal(t, "red", NormalizeHex("red"))
}

func TestLuminance(t *testing.T) {
	white, ok := Luminance("#ffffff")
	assert.True(t, ok)
	assert.InDelta(t, 1.0, white, 1e-6)

	black, ok := Luminance("black")
	assert.True(t, ok)
	assert.InDelta(t, 0.0, black, 1e-6)

	_, ok = Luminance("rgb(1,2,3)")
	assert.False(t, ok)

	assert.True(t, IsDark("#1a1a2e"))
	assert.False(t, IsDark("#f0f0f0"))
}
