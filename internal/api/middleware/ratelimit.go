package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
	// Limiter names the implementation that decided, for metrics.
	Limiter string
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) Decision
}

// RateLimiter provides rate limiting functionality using a sliding window algorithm
type RateLimiter struct {
	requests int           // Maximum requests per window
	window   time.Duration // Window duration
	clients  map[string]*clientWindow
	mu       sync.RWMutex
	now      func() time.Time

	cleanupTicker *time.Ticker
	done          chan struct{}
	stopOnce      sync.Once
}

type clientWindow struct {
	timestamps []time.Time
	mu         sync.Mutex
}

func normalizeLimits(requests, windowSeconds int) (int, time.Duration) {
	if requests <= 0 {
		requests = 100 // Default
	}
	if windowSeconds <= 0 {
		windowSeconds = 60 // Default
	}
	return requests, time.Duration(windowSeconds) * time.Second
}

// NewRateLimiter creates an in-process limiter. Call Stop to end its
// cleanup goroutine.
func NewRateLimiter(requests int, windowSeconds int) *RateLimiter {
	n, window := normalizeLimits(requests, windowSeconds)

	rl := &RateLimiter{
		requests: n,
		window:   window,
		clients:  make(map[string]*clientWindow),
		now:      time.Now,
		done:     make(chan struct{}),
	}

	// Start cleanup goroutine to remove old entries
	rl.cleanupTicker = time.NewTicker(time.Minute)
	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanupTicker.Stop()
		close(rl.done)
	})
}

// cleanup removes expired entries periodically
func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.cleanupTicker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, client := range rl.clients {
		client.mu.Lock()
		if len(client.timestamps) == 0 || now.Sub(client.timestamps[len(client.timestamps)-1]) > rl.window*2 {
			delete(rl.clients, key)
		}
		client.mu.Unlock()
	}
}

// Allow checks if a request for the given key should be allowed
func (rl *RateLimiter) Allow(_ context.Context, key string) Decision {
	rl.mu.RLock()
	client, exists := rl.clients[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// Double-check after acquiring write lock
		if client, exists = rl.clients[key]; !exists {
			client = &clientWindow{
				timestamps: make([]time.Time, 0, rl.requests),
			}
			rl.clients[key] = client
		}
		rl.mu.Unlock()
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)

	// Drop timestamps outside the window
	valid := len(client.timestamps)
	for i, ts := range client.timestamps {
		if ts.After(windowStart) {
			valid = i
			break
		}
	}
	client.timestamps = client.timestamps[valid:]

	d := Decision{Limit: rl.requests, Limiter: "memory"}

	if len(client.timestamps) >= rl.requests {
		// The oldest request in the window frees the next slot
		d.Reset = client.timestamps[0].Add(rl.window)
		return d
	}

	client.timestamps = append(client.timestamps, now)
	d.Allowed = true
	d.Remaining = rl.requests - len(client.timestamps)
	d.Reset = now.Add(rl.window)
	return d
}

// RedisLimiter is a fixed window counter shared by every server instance.
// When Redis cannot be reached the decision falls back to the in-process
// limiter.
type RedisLimiter struct {
	client   redis.Cmdable
	requests int
	window   time.Duration
	fallback *RateLimiter
	logger   *slog.Logger
	now      func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, requests, windowSeconds int, fallback *RateLimiter, logger *slog.Logger) *RedisLimiter {
	n, window := normalizeLimits(requests, windowSeconds)
	return &RedisLimiter{
		client:   client,
		requests: n,
		window:   window,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	start := rl.now().Truncate(rl.window)
	redisKey := fmt.Sprintf("crm:ratelimit:%s:%d", key, start.Unix())

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		rl.logger.Warn("redis rate limit unavailable, using in-process limiter", "error", err)
		return rl.fallback.Allow(ctx, key)
	}

	count := int(incr.Val())
	d := Decision{
		Allowed: count <= rl.requests,
		Limit:   rl.requests,
		Reset:   start.Add(rl.window),
		Limiter: "redis",
	}
	if d.Allowed {
		d.Remaining = rl.requests - count
	}
	return d
}

// RateLimit returns a middleware that limits requests per client IP. Each
// rejection is reported to onReject with the deciding limiter's name.
func RateLimit(limiter Limiter, onReject func(limiter string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Allow(r.Context(), getClientIP(r))

			// Set rate limit headers
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

			if !d.Allowed {
				if onReject != nil {
					onReject(d.Limiter)
				}
				w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(d.Reset).Seconds())+1, 10))
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers are
// only honoured through TrustedRealIP, which rewrites RemoteAddr for
// requests from a trusted proxy.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
