package http

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/config"
)

// errorHandlingMiddleware renders the last recorded error as the standard
// {"error":{code,message}} body, once the handler chain has finished.
func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		attrs := []any{"code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err}
		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else {
			logger.Warn("request failed", attrs...)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := &clientLimiter{
		buckets:  make(map[string]*tokenBucket),
		perSec:   float64(cfg.RequestsPerMinute) / 60,
		capacity: float64(cfg.Burst),
		idleTTL:  5 * time.Minute,
	}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if limiter.take(ip) {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

// clientLimiter is a per-IP token bucket. Buckets idle past idleTTL are
// swept during take, so the map stays bounded by active clients.
type clientLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*tokenBucket
	perSec   float64
	capacity float64
	idleTTL  time.Duration
	lastGC   time.Time
}

type tokenBucket struct {
	tokens float64
	seen   time.Time
}

func (l *clientLimiter) take(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[ip]
	if !ok {
		b = &tokenBucket{tokens: l.capacity, seen: now}
		l.buckets[ip] = b
	} else {
		b.tokens += now.Sub(b.seen).Seconds() * l.perSec
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.seen = now
	}

	if now.Sub(l.lastGC) > l.idleTTL {
		for key, bucket := range l.buckets {
			if now.Sub(bucket.seen) > l.idleTTL {
				delete(l.buckets, key)
			}
		}
		l.lastGC = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
