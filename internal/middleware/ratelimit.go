package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Time window for rate limiting
	KeyPrefix         string        // Counter key prefix
}

// Counter increments a fixed-window counter and reports the hit count and
// time left in the window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisCounter shares windows across instances.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		c.client.Expire(ctx, key, window)
	}
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return count, ttl, nil
}

// MemoryCounter keeps windows in process, for single-instance deployments
// without Redis.
type MemoryCounter struct {
	mu        sync.Mutex
	windows   map[string]*memoryWindow
	now       func() time.Time
	nextSweep time.Time
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]*memoryWindow), now: time.Now}
}

func (c *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !now.Before(c.nextSweep) {
		for k, w := range c.windows {
			if !now.Before(w.resetAt) {
				delete(c.windows, k)
			}
		}
		c.nextSweep = now.Add(window)
	}

	win, ok := c.windows[key]
	if !ok || !now.Before(win.resetAt) {
		win = &memoryWindow{resetAt: now.Add(window)}
		c.windows[key] = win
	}
	win.count++
	return win.count, win.resetAt.Sub(now), nil
}

// RateLimitMiddleware rejects clients that exceed the configured requests per window
func RateLimitMiddleware(counter Counter, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// authenticated users are limited per account, others per address
			clientID := clientAddr(r)
			if userID, ok := GetUserID(r.Context()); ok {
				clientID = userID
			}

			key := fmt.Sprintf("%s:%s", config.KeyPrefix, clientID)

			count, ttl, err := counter.Hit(r.Context(), key, config.Window)
			if err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				// fail open
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(config.RequestsPerWindow) {
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))

				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			remaining := config.RequestsPerWindow - int(count)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}

// clientAddr drops the port so every connection from one host shares a window.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
