package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecoveryReturnsGenericError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/api/v1/sessions/:id/view", func(c *gin.Context) {
		panic("renderer exploded: secret detail")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc/view", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "secret detail") {
		t.Fatalf("panic detail leaked into response: %s", resp.Body.String())
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("expected INTERNAL_ERROR, got %q", body.Error.Code)
	}
}

func TestRecoveryKeepsStartedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery())
	router.GET("/api/v1/sessions/:id/page", func(c *gin.Context) {
		c.String(http.StatusOK, "<html>")
		panic("late failure")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/abc/page", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected the written status to stand, got %d", resp.Code)
	}
	if resp.Body.String() != "<html>" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}
