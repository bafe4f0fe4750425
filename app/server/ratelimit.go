package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tabletop-ledger/partie/app/shared/httpx"
	"golang.org/x/time/rate"
)

const (
	sweepInterval = time.Minute
	idleTTL       = 10 * time.Minute
)

type bucket struct {
	*rate.Limiter
	seen time.Time
}

// clientLimiter keeps one token bucket per client address. Buckets idle for
// longer than idleTTL are dropped on the first request after sweepInterval.
type clientLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	return &clientLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		for key, b := range l.buckets {
			if now.Sub(b.seen) > idleTTL {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[client] = b
	}
	b.seen = now
	l.mu.Unlock()

	return b.AllowN(now, 1)
}

func (l *clientLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit answers 429 once a client address exceeds perSecond requests
// with the given burst.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	return rateLimit(newClientLimiter(perSecond, burst))
}

func rateLimit(l *clientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(clientAddr(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", "1")
			httpx.WriteJSON(w, http.StatusTooManyRequests, httpx.ErrorBody{Error: httpx.ErrorDetail{
				Kind:    "rate_limited",
				Code:    "too_many_requests",
				Message: http.StatusText(http.StatusTooManyRequests),
			}})
		})
	}
}
