package middleware

import "net/http"

// SkipCompressionForPaths wraps a compression middleware so requests under
// any of the given path prefixes bypass it. Cached images are already
// compressed and are served with http.ServeContent range support.
func SkipCompressionForPaths(compressionHandler func(http.Handler) http.Handler, prefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		compressedHandler := compressionHandler(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasAnyPrefix(r.URL.Path, prefixes) {
				next.ServeHTTP(w, r)
				return
			}
			compressedHandler.ServeHTTP(w, r)
		})
	}
}
