package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimitBlocksOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewRateLimiter(), "query", 2, time.Minute, func(c *gin.Context) string { return c.ClientIP() }))
	r.GET("/x", func(c *gin.Context) { c.String(200, "ok") })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		return w
	}
	require.Equal(t, 200, do().Code)
	require.Equal(t, 200, do().Code)
	blocked := do()
	require.Equal(t, 429, blocked.Code)
	require.Equal(t, "60", blocked.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":"rate_limited"}`, blocked.Body.String())
}

func TestRateLimitIgnoresEmptyKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewRateLimiter(), "query", 1, time.Minute, func(c *gin.Context) string { return "" }))
	r.GET("/x", func(c *gin.Context) { c.String(200, "ok") })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, 200, w.Code)
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	l := NewRateLimiter()
	require.Equal(t, 1, l.take("k", 10*time.Millisecond))
	require.Equal(t, 2, l.take("k", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, l.take("k", 10*time.Millisecond))
}
