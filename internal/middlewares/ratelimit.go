package middlewares

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type rateWindow struct {
	count int
	reset time.Time
}

// RateLimiter 进程内的固定窗口计数器。单实例部署，无需外部存储。
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*rateWindow)}
}

// take 在 key 的当前窗口内记一次请求并返回累计次数；窗口过期则重新开窗。
func (l *RateLimiter) take(key string, window time.Duration) int {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.windows) > 1024 {
		for k, w := range l.windows {
			if now.After(w.reset) {
				delete(l.windows, k)
			}
		}
	}
	w := l.windows[key]
	if w == nil || now.After(w.reset) {
		w = &rateWindow{reset: now.Add(window)}
		l.windows[key] = w
	}
	w.count++
	return w.count
}

// RateLimit 返回一个固定窗口限流中间件。
// keyFn 用于构建请求者唯一键（如按 IP）；返回空串的请求不限流。
func RateLimit(limiter *RateLimiter, prefix string, limit int, window time.Duration, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}
		cnt := limiter.take(fmt.Sprintf("rl:%s:%s", prefix, key), window)
		if cnt > limit {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.AbortWithStatusJSON(429, gin.H{"error": "rate_limited"})
			return
		}
		c.Next()
	}
}
