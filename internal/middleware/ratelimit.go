package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/diewo77/go-formations/httpx"
	"github.com/diewo77/go-formations/internal/apperr"
)

// RateLimiter is a fixed-window counter per client key.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	items map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		items:  make(map[string]*rateLimitEntry),
	}
}

// Allow counts a hit for key and reports whether it fits the current window.
func (l *RateLimiter) Allow(key string) bool {
	ok, _ := l.take(key)
	return ok
}

// take is Allow that also returns, on rejection, the time left until the
// key's window resets.
func (l *RateLimiter) take(key string) (bool, time.Duration) {
	if key == "" {
		return false, l.window
	}

	now := l.now().UTC()
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.items[key]
	if entry == nil || now.Sub(entry.windowStart) >= l.window {
		entry = &rateLimitEntry{windowStart: now}
		l.items[key] = entry
	}

	if entry.count >= l.limit {
		return false, entry.windowStart.Add(l.window).Sub(now)
	}

	entry.count++
	return true, 0
}

// Sweep drops entries whose window has elapsed.
func (l *RateLimiter) Sweep() int {
	now := l.now().UTC()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, e := range l.items {
		if now.Sub(e.windowStart) >= l.window {
			delete(l.items, k)
			n++
		}
	}
	return n
}

// Handler rejects requests over the limit with 429 RATE_LIMITED.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok, wait := l.take(clientIP(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			httpx.Error(w, r, apperr.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds rounds d up to whole seconds, at least one.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
