package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name            string
		allowed         []string
		origin          string
		wantOrigin      string
		wantCredentials string
	}{
		{
			name:       "wildcard echoes origin without credentials",
			allowed:    []string{"*"},
			origin:     "http://localhost:3000",
			wantOrigin: "http://localhost:3000",
		},
		{
			name:            "explicit origin allows credentials",
			allowed:         []string{"https://tracker.example.com"},
			origin:          "https://tracker.example.com",
			wantOrigin:      "https://tracker.example.com",
			wantCredentials: "true",
		},
		{
			name:    "unlisted origin gets no headers",
			allowed: []string{"https://tracker.example.com"},
			origin:  "https://evil.example.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			CORS(tt.allowed)(next).ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCredentials {
				t.Errorf("Allow-Credentials = %q, want %q", got, tt.wantCredentials)
			}
			if tt.wantOrigin != "" {
				methods := rec.Header().Get("Access-Control-Allow-Methods")
				for _, absent := range []string{http.MethodPut, http.MethodDelete} {
					if strings.Contains(methods, absent) {
						t.Errorf("Allow-Methods = %q, must not advertise %s", methods, absent)
					}
				}
				if !strings.Contains(methods, http.MethodPatch) {
					t.Errorf("Allow-Methods = %q, want PATCH included", methods)
				}
			}
		})
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	CORS([]string{"*"})(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if called {
		t.Error("preflight must not reach the next handler")
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "300" {
		t.Errorf("Max-Age = %q, want 300", got)
	}
}
