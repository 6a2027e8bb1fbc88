// Package urlutil provides URL helpers for provider endpoints and image URLs.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// URL scheme constants.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// NormalizeBaseURL normalizes a provider base URL for path joining:
//   - Adds https:// if no scheme is provided
//   - Removes trailing slashes
//
// Examples:
//
//	"api.unsplash.com"        -> "https://api.unsplash.com"
//	"https://api.example.com/" -> "https://api.example.com"
//	"http://localhost:8080/"  -> "http://localhost:8080"
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	if !hasHTTPScheme(baseURL) {
		baseURL = SchemeHTTPS + "://" + baseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// JoinPath joins a base URL with a path, ensuring a single slash between them.
func JoinPath(baseURL, path string) string {
	if baseURL == "" {
		return path
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}

// WithQuery joins path onto baseURL and appends the encoded query, if any.
func WithQuery(baseURL, path string, q url.Values) string {
	u := JoinPath(baseURL, path)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// IsRemoteURL reports whether u is an absolute http or https URL.
// Data URIs, relative paths and empty strings are not remote.
func IsRemoteURL(u string) bool {
	return hasHTTPScheme(strings.TrimSpace(u))
}

// ValidateRemoteURL checks that u parses and is an http or https URL with a host.
func ValidateRemoteURL(u string) error {
	if u == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case SchemeHTTP, SchemeHTTPS:
	case "":
		return fmt.Errorf("URL must include a scheme (http:// or https://)")
	default:
		return fmt.Errorf("unsupported URL scheme: %s (supported: http, https)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

// ValidateBaseURL validates a configured base URL. A value without a scheme is
// checked as it will be used, after NormalizeBaseURL.
func ValidateBaseURL(u string) error {
	if !strings.Contains(u, "://") {
		u = NormalizeBaseURL(u)
	}
	return ValidateRemoteURL(u)
}

func hasHTTPScheme(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
