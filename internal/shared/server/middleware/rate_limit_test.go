package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitAnalyzeGroupPerSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	groupFor := func(c *gin.Context) string {
		if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/sessions/:id/analyze" {
			return "ANALYZE"
		}
		return "DEFAULT"
	}

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: groupFor,
		Limiter:  limiter,
		Rules: map[string]RateLimitRule{
			"ANALYZE": {Rate: 0.1, Burst: 2},
		},
	}))
	r.POST("/api/v1/sessions/:id/analyze", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	})
	r.GET("/api/v1/sessions/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	do := func(method, path string) int {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(method, path, nil))
		return resp.Code
	}

	for i := 0; i < 2; i++ {
		if code := do(http.MethodPost, "/api/v1/sessions/a/analyze"); code != http.StatusAccepted {
			t.Fatalf("analyze request %d expected 202, got %d", i+1, code)
		}
	}
	if code := do(http.MethodPost, "/api/v1/sessions/a/analyze"); code != http.StatusTooManyRequests {
		t.Fatalf("analyze request 3 expected 429, got %d", code)
	}
	if code := do(http.MethodPost, "/api/v1/sessions/b/analyze"); code != http.StatusAccepted {
		t.Fatalf("other session expected 202, got %d", code)
	}
	for i := 0; i < 5; i++ {
		if code := do(http.MethodGet, "/api/v1/sessions/a"); code != http.StatusOK {
			t.Fatalf("unlimited group expected 200, got %d", code)
		}
	}

	now = now.Add(10 * time.Second)
	if code := do(http.MethodPost, "/api/v1/sessions/a/analyze"); code != http.StatusAccepted {
		t.Fatalf("after refill expected 202, got %d", code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		Limiter: limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT": {Rate: 1, Burst: 1},
		},
	}))
	r.GET("/api/v1/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil))
	if resp1.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.Code)
	}

	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil))
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if got := resp2.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After 1, got %q", got)
	}

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" {
		t.Fatalf("expected code=rate_limited, got %q", payload.Error.Code)
	}
	if _, ok := payload.Error.Details["retryAfterMs"]; !ok {
		t.Fatalf("expected retryAfterMs in details")
	}
}

func TestRateLimiterForgetAndPrune(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 0.1, Burst: 1}

	for _, key := range []string{"a|ANALYZE", "a|DEFAULT", "ab|ANALYZE", "10.0.0.1|ANALYZE"} {
		if ok, _ := limiter.Allow(key, rule); !ok {
			t.Fatalf("first request for %s should pass", key)
		}
	}
	if got := limiter.Len(); got != 4 {
		t.Fatalf("expected 4 buckets, got %d", got)
	}

	limiter.Forget("a")
	if got := limiter.Len(); got != 2 {
		t.Fatalf("expected 2 buckets after forgetting a, got %d", got)
	}
	if ok, _ := limiter.Allow("ab|ANALYZE", rule); ok {
		t.Fatalf("forgetting a must not reset ab")
	}

	if removed := limiter.Prune(); removed != 0 {
		t.Fatalf("drained buckets must be kept, pruned %d", removed)
	}
	now = now.Add(time.Minute)
	if removed := limiter.Prune(); removed != 2 {
		t.Fatalf("expected 2 refilled buckets pruned, got %d", removed)
	}
	if got := limiter.Len(); got != 0 {
		t.Fatalf("expected no buckets, got %d", got)
	}
}
