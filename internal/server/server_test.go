package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestPublicPath(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   bool
	}{
		{http.MethodGet, "/ping", true},
		{http.MethodGet, "/health", true},
		{http.MethodPost, "/api/auth/login", true},
		{http.MethodPost, "/api/auth/forgot-password", true},
		{http.MethodPost, "/api/auth/reset-password/abc", true},
		{http.MethodGet, "/api/blogs", true},
		{http.MethodGet, "/api/blogs/42", true},
		{http.MethodGet, "/api/blogs/slug/my-first-post", true},
		{http.MethodPut, "/api/blogs/views/my-first-post", true},
		{http.MethodGet, "/api/blogs/stats", false},
		{http.MethodPost, "/api/blogs", false},
		{http.MethodPut, "/api/blogs/42", false},
		{http.MethodDelete, "/api/blogs/42", false},
		{http.MethodGet, "/api/admin", false},
	}

	e := echo.New()
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if got := publicPath(c); got != tt.want {
			t.Errorf("publicPath(%s %s) = %v, want %v", tt.method, tt.path, got, tt.want)
		}
	}
}
