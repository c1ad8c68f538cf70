package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

const devOrigin = "http://localhost:5173"

func corsRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.PUT("/api/v1/sessions/:id/language", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func corsRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/sessions/123/language", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	resp := corsRequest(corsRouter([]string{devOrigin}), http.MethodOptions, devOrigin)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,PUT,DELETE,OPTIONS" {
		t.Fatalf("unexpected Allow-Methods %q", got)
	}
	if got := resp.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("expected Max-Age 600, got %q", got)
	}
}

func TestCORSOrigins(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{name: "listed", allowed: []string{devOrigin}, origin: devOrigin, want: devOrigin},
		{name: "unlisted", allowed: []string{devOrigin}, origin: "https://evil.example", want: ""},
		{name: "wildcard", allowed: []string{" * "}, origin: "https://app.example", want: "https://app.example"},
		{name: "no origin", allowed: []string{"*"}, origin: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := corsRequest(corsRouter(tc.allowed), http.MethodPut, tc.origin)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.Code)
			}
			if got := resp.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("Allow-Origin = %q, want %q", got, tc.want)
			}
			if tc.want != "" && resp.Header().Get("Access-Control-Expose-Headers") == "" {
				t.Fatalf("expected Expose-Headers for allowed origin")
			}
		})
	}
}
