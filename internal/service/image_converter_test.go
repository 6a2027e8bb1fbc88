package service

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func createTransparentPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.RGBA{R: 0, G: 255, B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// createOversizedPNG returns a tiny PNG whose header declares width x height.
// Only the header is valid, which is all DecodeConfig reads.
func createOversizedPNG(t *testing.T, width, height uint32) []byte {
	t.Helper()
	data := createTestPNG(t, 1, 1)
	// IHDR data starts after the 8 byte signature, 4 byte length and 4 byte type.
	binary.BigEndian.PutUint32(data[16:20], width)
	binary.BigEndian.PutUint32(data[20:24], height)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func createTestGIF(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestImageConverter_Convert_OpaqueBecomesJPEG(t *testing.T) {
	converter := NewImageConverter(0, 0, 0)

	for name, input := range map[string][]byte{
		"png":  createTestPNG(t, 100, 50),
		"jpeg": createTestJPEG(t, 100, 50),
		"gif":  createTestGIF(t, 100, 50),
	} {
		t.Run(name, func(t *testing.T) {
			out, err := converter.Convert(input)
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", out.MimeType)
			assert.Equal(t, 100, out.Width)
			assert.Equal(t, 50, out.Height)

			_, err = jpeg.Decode(bytes.NewReader(out.Data))
			assert.NoError(t, err)
		})
	}
}

func TestImageConverter_Convert_TransparentStaysPNG(t *testing.T) {
	out, err := NewImageConverter(0, 0, 0).Convert(createTransparentPNG(t, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MimeType)

	_, err = png.Decode(bytes.NewReader(out.Data))
	assert.NoError(t, err)
}

func TestImageConverter_Convert_Downscales(t *testing.T) {
	converter := NewImageConverter(100, 100, 80)

	out, err := converter.Convert(createTestPNG(t, 400, 200))
	require.NoError(t, err)
	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 50, out.Height)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestImageConverter_Convert_Invalid(t *testing.T) {
	_, err := NewImageConverter(0, 0, 0).Convert([]byte("not an image"))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnsupportedImageType)
}

func TestImageConverter_Convert_RejectsHugeDeclaredDimensions(t *testing.T) {
	data := createOversizedPNG(t, 12000, 12000)

	w, h, err := NewImageConverter(0, 0, 0).GetImageDimensions(data)
	require.NoError(t, err)
	require.Equal(t, 12000, w)
	require.Equal(t, 12000, h)

	_, err = NewImageConverter(0, 0, 0).Convert(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrImageTooLarge)

	_, err = NewImageConverter(100, 100, 0).WithMaxSourcePixels(10_000).Convert(createTestPNG(t, 101, 100))
	assert.ErrorIs(t, err, models.ErrImageTooLarge)

	out, err := NewImageConverter(100, 100, 0).WithMaxSourcePixels(10_000).Convert(createTestPNG(t, 100, 100))
	require.NoError(t, err)
	assert.Equal(t, 100, out.Width)
}

func TestImageConverter_GetImageDimensions(t *testing.T) {
	converter := NewImageConverter(0, 0, 0)

	w, h, err := converter.GetImageDimensions(createTestJPEG(t, 320, 240))
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)

	_, _, err = converter.GetImageDimensions([]byte("nope"))
	assert.Error(t, err)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"inside bounds", 800, 600, 3840, 2160, 800, 600},
		{"wide", 7680, 2160, 3840, 2160, 3840, 1080},
		{"tall", 1000, 4320, 3840, 2160, 500, 2160},
		{"exact", 3840, 2160, 3840, 2160, 3840, 2160},
		{"tiny result", 10000, 1, 100, 100, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitWithin(tt.w, tt.h, tt.maxW, tt.maxH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestIsSupportedFormat(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"image/jpg", true},
		{"image/gif", true},
		{"image/webp", true},
		{"IMAGE/PNG", true},
		{"image/png; charset=binary", true},
		{"image/svg+xml", false},
		{"image/bmp", false},
		{"text/html", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSupportedFormat(tt.contentType))
		})
	}
}

func TestSniffContentType(t *testing.T) {
	pngData := createTestPNG(t, 2, 2)
	assert.Equal(t, "image/jpeg", SniffContentType("image/jpeg", pngData))
	assert.Equal(t, "image/png", SniffContentType("application/octet-stream", pngData))
	assert.Equal(t, "image/png", SniffContentType("", pngData))
}

func TestDataURI(t *testing.T) {
	uri := DataURI("image/png", []byte{1, 2, 3})
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, decoded)
}
