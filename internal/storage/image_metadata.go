package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"
)

// imagesDir is the cache root inside the sandbox.
const imagesDir = "images"

// CachedImage is the metadata stored next to a cached wallpaper file.
// The ID is the SHA-256 of the normalised URL, so the same image is only
// downloaded once however many times it is preloaded.
type CachedImage struct {
	ID            string    `json:"id"`
	OriginalURL   string    `json:"original_url"`
	NormalizedURL string    `json:"normalized_url"`
	Source        string    `json:"source,omitempty"`
	ContentType   string    `json:"content_type"`
	FileSize      int64     `json:"file_size"`
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LastUsedAt    time.Time `json:"last_used_at"`
}

// NewCachedImage creates metadata for an image URL.
func NewCachedImage(originalURL string) *CachedImage {
	normalized := normalizeURL(originalURL)
	now := time.Now().UTC()
	return &CachedImage{
		ID:            hashURL(normalized),
		OriginalURL:   originalURL,
		NormalizedURL: normalized,
		CreatedAt:     now,
		LastUsedAt:    now,
	}
}

// ImageID returns the cache id a URL would be stored under.
func ImageID(rawURL string) string {
	return hashURL(normalizeURL(rawURL))
}

// RelativeImagePath returns images/{shard}/{id}{ext}.
func (m *CachedImage) RelativeImagePath() string {
	return path.Join(imagesDir, shard(m.ID), m.ID+extension(m.ContentType))
}

// RelativeMetadataPath returns images/{shard}/{id}.json.
func (m *CachedImage) RelativeMetadataPath() string {
	return metadataPath(m.ID)
}

func metadataPath(id string) string {
	return path.Join(imagesDir, shard(id), id+".json")
}

func shard(id string) string {
	if len(id) > 2 {
		return id[:2]
	}
	return id
}

// normalizeURL makes equivalent URLs hash the same: scheme dropped, host
// lower-cased, default ports removed, query parameters sorted.
func normalizeURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimSuffix(host, ":80")
	host = strings.TrimSuffix(host, ":443")

	var params []string
	for key, vals := range parsed.Query() {
		for _, v := range vals {
			params = append(params, key+"="+v)
		}
	}
	slices.Sort(params)

	result := host + strings.TrimSuffix(parsed.Path, "/")
	if len(params) > 0 {
		result += "?" + strings.Join(params, "&")
	}
	return result
}

func hashURL(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// extension maps an image content type to a file extension, defaulting to .jpg.
func extension(contentType string) string {
	switch baseContentType(contentType) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/avif":
		return ".avif"
	default:
		return ".jpg"
	}
}

func baseContentType(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
