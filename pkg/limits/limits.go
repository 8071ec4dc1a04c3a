// Package limits caps live connections per client and the rate of events a
// single session may send.
package limits

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ErrRateLimited is returned for events dropped by an EventLimiter.
var ErrRateLimited = errors.New("rate limit exceeded")

// ConnectionLimiter bounds concurrent connections per client IP and overall.
// A zero bound disables that check.
type ConnectionLimiter struct {
	maxPerIP  int
	maxGlobal int

	mu     sync.Mutex
	perIP  map[string]int
	global int

	blocked atomic.Int64
}

// NewConnectionLimiter returns a limiter with the given bounds.
func NewConnectionLimiter(maxPerIP, maxGlobal int) *ConnectionLimiter {
	return &ConnectionLimiter{
		maxPerIP:  maxPerIP,
		maxGlobal: maxGlobal,
		perIP:     make(map[string]int),
	}
}

// Acquire takes a slot for ip. It reports false when a bound is reached.
func (cl *ConnectionLimiter) Acquire(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if (cl.maxGlobal > 0 && cl.global >= cl.maxGlobal) ||
		(cl.maxPerIP > 0 && cl.perIP[ip] >= cl.maxPerIP) {
		cl.blocked.Inc()
		return false
	}
	cl.global++
	cl.perIP[ip]++
	return true
}

// Release returns a slot taken by Acquire.
func (cl *ConnectionLimiter) Release(ip string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	n, ok := cl.perIP[ip]
	if !ok {
		return
	}
	if n <= 1 {
		delete(cl.perIP, ip)
	} else {
		cl.perIP[ip] = n - 1
	}
	cl.global--
}

// Count returns the open connections for ip.
func (cl *ConnectionLimiter) Count(ip string) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.perIP[ip]
}

// Total returns all open connections.
func (cl *ConnectionLimiter) Total() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.global
}

// Blocked returns how many connections were refused.
func (cl *ConnectionLimiter) Blocked() int64 {
	return cl.blocked.Load()
}

// ClientIP returns the client address, preferring X-Forwarded-For and
// X-Real-IP over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// EventLimiter is a token bucket per key.
type EventLimiter struct {
	rate  float64
	burst float64
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// NewEventLimiter allows rate events per second per key with bursts of
// burst events.
func NewEventLimiter(rate float64, burst int) *EventLimiter {
	return &EventLimiter{
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow takes one token for key.
func (l *EventLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastFill: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastFill).Seconds() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastFill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Forget drops the bucket for key.
func (l *EventLimiter) Forget(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Len returns the number of tracked keys.
func (l *EventLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
