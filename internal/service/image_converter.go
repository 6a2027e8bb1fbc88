// Package service provides the business logic layer for tabcanvas: profile
// settings, local image uploads and wallpaper selection.
package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	// Register image format decoders
	_ "image/gif"

	// WebP support from x/image
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/jmylchreest/tabcanvas/internal/models"
)

// Default limits applied by NewImageConverter when given zero values.
const (
	DefaultMaxImageWidth  = 3840
	DefaultMaxImageHeight = 2160
	DefaultJPEGQuality    = 85
)

// ConvertedImage is an upload after decoding, downscaling and re-encoding.
type ConvertedImage struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// DataURI returns the image as a base64 data URI.
func (c *ConvertedImage) DataURI() string {
	return DataURI(c.MimeType, c.Data)
}

// sourcePixelFactor sizes the default decode budget relative to the output bounds.
const sourcePixelFactor = 4

// ImageConverter normalises uploaded images for inline storage.
type ImageConverter struct {
	maxWidth        int
	maxHeight       int
	jpegQuality     int
	maxSourcePixels int64
}

// NewImageConverter creates a converter that fits images inside
// maxWidth x maxHeight and writes JPEGs at the given quality.
func NewImageConverter(maxWidth, maxHeight, jpegQuality int) *ImageConverter {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxImageWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxImageHeight
	}
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &ImageConverter{
		maxWidth:        maxWidth,
		maxHeight:       maxHeight,
		jpegQuality:     jpegQuality,
		maxSourcePixels: int64(maxWidth) * int64(maxHeight) * sourcePixelFactor,
	}
}

// WithMaxSourcePixels caps the declared width*height of images that will be
// decoded. Zero or less keeps the default of four times the output bounds.
func (c *ImageConverter) WithMaxSourcePixels(n int64) *ImageConverter {
	if n > 0 {
		c.maxSourcePixels = n
	}
	return c
}

// Convert decodes data, scales it down to fit the configured bounds and
// re-encodes it. Images with transparency become PNG, everything else JPEG.
func (c *ImageConverter) Convert(data []byte) (*ConvertedImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnsupportedImageType, err)
	}
	if !IsSupportedFormat("image/" + format) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedImageType, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", models.ErrUnsupportedImageType)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > c.maxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", models.ErrImageTooLarge, cfg.Width, cfg.Height, c.maxSourcePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image (format=%s): %w", format, err)
	}

	width, height := FitWithin(cfg.Width, cfg.Height, c.maxWidth, c.maxHeight)
	if width != cfg.Width || height != cfg.Height {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	out := &ConvertedImage{Width: width, Height: height}
	if hasAlpha(img) {
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding to PNG: %w", err)
		}
		out.MimeType = "image/png"
	} else {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.jpegQuality}); err != nil {
			return nil, fmt.Errorf("encoding to JPEG: %w", err)
		}
		out.MimeType = "image/jpeg"
	}
	out.Data = buf.Bytes()
	return out, nil
}

// GetImageDimensions returns the width and height of an image without decoding pixels.
func (c *ImageConverter) GetImageDimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// IsSupportedFormat checks if the content type is an accepted upload format.
func IsSupportedFormat(contentType string) bool {
	mediaType, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	switch strings.TrimSpace(mediaType) {
	case "image/png", "image/jpeg", "image/jpg", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

// SniffContentType returns declared when it is a supported image type, and
// otherwise falls back to content sniffing.
func SniffContentType(declared string, data []byte) string {
	if IsSupportedFormat(declared) {
		return declared
	}
	return http.DetectContentType(data)
}

// DataURI encodes data as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// FitWithin scales w x h down to fit maxW x maxH, preserving aspect ratio.
// Images already inside the bounds are returned unchanged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	return min(nw, maxW), min(nh, maxH)
}

func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}
