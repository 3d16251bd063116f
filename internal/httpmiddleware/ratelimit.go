package httpmiddleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"college/internal/metrics"
)

// Limiter decides whether one more request for key fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// defaultMaxClients bounds how many client buckets a TokenBucket tracks.
const defaultMaxClients = 10000

// TokenBucket is an in-memory limiter for single-instance deployments.
// Buckets live in an LRU; an evicted client starts over with a full bucket.
type TokenBucket struct {
	capacity int
	rate     int
	now      func() time.Time
	mu       sync.Mutex
	state    *lru.Cache[string, *bucket]
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewTokenBucket creates a limiter with capacity tokens refilled at perMinute.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	return newTokenBucket(capacity, perMinute, defaultMaxClients)
}

func newTokenBucket(capacity, perMinute, maxClients int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	// lru.New only fails for a non-positive size.
	state, _ := lru.New[string, *bucket](maxClients)
	return &TokenBucket{
		capacity: capacity,
		rate:     perMinute,
		now:      time.Now,
		state:    state,
	}
}


// Allow takes a token for key if one is available.
func (l *TokenBucket) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.state.Get(key)
	now := l.now()
	if !ok {
		l.state.Add(key, &bucket{tokens: l.capacity - 1, last: now})
		return true
	}
	elapsed := now.Sub(b.last).Minutes()
	refill := int(elapsed * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// RedisWindow is a fixed one-minute window counter shared across instances.
// It fails open: when Redis is unreachable requests are admitted.
type RedisWindow struct {
	client    *redis.Client
	prefix    string
	perMinute int
	now       func() time.Time
}

// NewRedisWindow creates a limiter admitting perMinute requests per key per minute.
func NewRedisWindow(client *redis.Client, prefix string, perMinute int) *RedisWindow {
	return &RedisWindow{client: client, prefix: prefix, perMinute: perMinute, now: time.Now}
}

// Allow increments the key's counter for the current window.
func (l *RedisWindow) Allow(ctx context.Context, key string) bool {
	window := l.now().Unix() / 60
	k := "ratelimit:" + l.prefix + ":" + key + ":" + strconv.FormatInt(window, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		log.WithError(err).Warn("rate limiter unavailable, admitting request")
		return true
	}
	return incr.Val() <= int64(l.perMinute)
}

// RateLimit rejects requests over the per-client-IP budget with 429.
func RateLimit(l Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(c.Request.Context(), ip) {
			metrics.RateLimited.WithLabelValues(scope).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
