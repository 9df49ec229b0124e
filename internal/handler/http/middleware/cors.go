package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets browsers on the allowed origins call the API. "*" allows any
// origin. Requests from other origins get no CORS headers, so the browser
// blocks them; same-origin requests pass through untouched.
func CORS(allowed []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Trace-Id", "Retry-After"},
		MaxAge:         86400,
	})
}
