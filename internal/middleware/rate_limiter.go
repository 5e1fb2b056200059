package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a sliding window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// rateLimiter is one limiter instance with its own per-IP state. Instances
// never share counters: the webhook's tight budget must not be consumed by
// general API traffic passing through the global limiter.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*rateEntry
}

// Instances register themselves so the purge goroutine can reap expired IPs.
var (
	registryMu sync.Mutex
	registry   []*rateLimiter
)

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	l := &rateLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*rateEntry),
	}
	registryMu.Lock()
	registry = append(registry, l)
	registryMu.Unlock()
	return l
}

// allow counts the request and reports whether it fits the window. The lock
// is released before the caller runs the rest of the chain — holding it
// across downstream handlers would serialize an IP's requests and deadlock
// when two limiter instances stack on one route.
func (l *rateLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.entries[ip]
	if !exists {
		entry = &rateEntry{}
		l.entries[ip] = entry
	}

	now := time.Now()
	if now.After(entry.windowEnd) {
		// Reset sliding window
		entry.count = 0
		entry.windowEnd = now.Add(l.window)
	}

	entry.count++
	return entry.count <= l.limit, entry.windowEnd
}

func (l *rateLimiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	purged := 0
	for ip, entry := range l.entries {
		if now.After(entry.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	return purged
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	l := newRateLimiter(20, time.Minute)
	return func(c *gin.Context) {
		ok, _ := l.allow(c.ClientIP())
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter returns a general-purpose sliding-window rate limiter, also
// used standalone on the billing webhook route with a tighter limit.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newRateLimiter(limit, window)
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired entries from every limiter instance to prevent
// memory leaks from accumulating IPs that never return.

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		registryMu.Lock()
		limiters := make([]*rateLimiter, len(registry))
		copy(limiters, registry)
		registryMu.Unlock()

		purged := 0
		for _, l := range limiters {
			purged += l.purge(now)
		}
		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
		}
	}
}
