// Package middleware provides HTTP middleware for the tracker API.
package middleware

import (
	"net/http"
	"strings"
)

// Methods the tracker API serves. PUT and DELETE are absent on purpose:
// plan rows are only created by the seed loader and then patched or
// transitioned, never replaced or removed over HTTP.
var allowMethods = strings.Join([]string{
	http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions,
}, ", ")

// CORS returns middleware that lets browser dashboards on the given
// origins call the API. A literal "*" entry echoes any origin but never
// grants credentials; only an exact origin match does.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			exact, wildcard := false, false
			for _, o := range allowedOrigins {
				switch o {
				case origin:
					exact = true
				case "*":
					wildcard = true
				}
			}

			if exact || wildcard {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", allowMethods)
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "300")
				if exact {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
