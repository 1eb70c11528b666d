package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name      string
		method    string
		path      string
		wantCache string
		wantCSP   string
	}{
		{"api", http.MethodGet, "/tasks", "no-store", "default-src 'none'"},
		{"avatar read", http.MethodGet, "/users/3f2b/avatar", "", "default-src 'none'"},
		{"avatar upload", http.MethodPost, "/users/me/avatar", "no-store", "default-src 'none'"},
		{"swagger", http.MethodGet, "/swagger/index.html", "no-store", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SecurityHeaders(next).ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, tt.wantCache, rec.Header().Get("Cache-Control"))
			assert.Equal(t, tt.wantCSP, rec.Header().Get("Content-Security-Policy"))
		})
	}
}
