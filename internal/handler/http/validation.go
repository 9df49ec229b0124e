package http

import (
	"net/http"

	"books-search/internal/handler/http/respond"
)

// Input limits.
const (
	maxPathLength  = 2048
	maxQueryLength = 4096
	maxBodyBytes   = 64 << 10 // settings values and search text only
)

// InputValidation returns middleware that rejects oversized paths and query
// strings and caps request bodies.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathLength {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "URI too long"})
				return
			}
			if len(r.URL.RawQuery) > maxQueryLength {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "query string too long"})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}
