// Package health serves the /healthz report.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the result of a single check.
type CheckResult struct {
	Status     Status         `json:"status"`
	DurationMS int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// Report is the overall health status.
type Report struct {
	Status    Status                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version,omitempty"`
}

// CheckFunc performs one check.
type CheckFunc func(ctx context.Context) error

type check struct {
	name     string
	fn       CheckFunc
	timeout  time.Duration
	critical bool
}

// Checker runs registered checks concurrently.
type Checker struct {
	checks  []check
	version string
	started time.Time
	mu      sync.RWMutex
}

// NewChecker creates a checker reporting the given version.
func NewChecker(version string) *Checker {
	return &Checker{
		version: version,
		started: time.Now(),
	}
}

// AddCheck adds a non-critical check. A failure degrades the report.
func (hc *Checker) AddCheck(name string, fn CheckFunc, timeout time.Duration) {
	hc.add(check{name: name, fn: fn, timeout: timeout})
}

// AddCriticalCheck adds a check whose failure makes the report unhealthy.
func (hc *Checker) AddCriticalCheck(name string, fn CheckFunc, timeout time.Duration) {
	hc.add(check{name: name, fn: fn, timeout: timeout, critical: true})
}

func (hc *Checker) add(c check) {
	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks = append(hc.checks, c)
}

// Check runs all checks and returns the report.
func (hc *Checker) Check(ctx context.Context) Report {
	hc.mu.RLock()
	checks := make([]check, len(hc.checks))
	copy(checks, hc.checks)
	hc.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		Checks:    make(map[string]CheckResult, len(checks)),
		Timestamp: time.Now(),
		Uptime:    time.Since(hc.started).Truncate(time.Second).String(),
		Version:   hc.version,
	}

	type namedResult struct {
		check  check
		result CheckResult
	}

	results := make(chan namedResult, len(checks))
	var wg sync.WaitGroup

	for _, c := range checks {
		wg.Add(1)
		go func(c check) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := c.fn(checkCtx)

			result := CheckResult{
				Status:     StatusHealthy,
				DurationMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				result.Status = StatusUnhealthy
				result.Error = err.Error()

				var he *Error
				if errors.As(err, &he) {
					result.Details = he.Details
				}
			}

			results <- namedResult{check: c, result: result}
		}(c)
	}

	wg.Wait()
	close(results)

	for r := range results {
		report.Checks[r.check.name] = r.result

		if r.result.Status != StatusHealthy {
			if r.check.critical {
				report.Status = StatusUnhealthy
			} else if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}

	return report
}

// Names returns the registered check names in order.
func (hc *Checker) Names() []string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	names := make([]string, 0, len(hc.checks))
	for _, c := range hc.checks {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// Handler returns the /healthz handler. It answers 503 when a critical
// check fails and 200 otherwise.
func (hc *Checker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := hc.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		json.NewEncoder(w).Encode(report)
	})
}

// Error is a check failure carrying details for the report.
type Error struct {
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// SessionCapacityCheck fails once the live session count reaches max.
func SessionCapacityCheck(count func() int, max int) CheckFunc {
	return func(ctx context.Context) error {
		n := count()
		if max > 0 && n >= max {
			return &Error{
				Message: "live sessions at capacity",
				Details: map[string]any{"current": n, "max": max},
			}
		}
		return nil
	}
}

// MemoryCheck fails when the heap in use exceeds maxBytes.
func MemoryCheck(maxBytes uint64) CheckFunc {
	return func(ctx context.Context) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		if m.HeapInuse > maxBytes {
			return &Error{
				Message: fmt.Sprintf("heap in use above %d bytes", maxBytes),
				Details: map[string]any{"heap_inuse": m.HeapInuse},
			}
		}
		return nil
	}
}
