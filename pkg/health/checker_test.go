package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func TestCheck_AllPass(t *testing.T) {
	hc := NewChecker("1.0.0")
	hc.AddCheck("ping", ok, time.Second)
	hc.AddCriticalCheck("sessions", SessionCapacityCheck(func() int { return 3 }, 10), time.Second)

	report := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Len(t, report.Checks, 2)
	assert.Equal(t, "1.0.0", report.Version)
	assert.Equal(t, []string{"ping", "sessions"}, hc.Names())
}

func TestCheck_NonCriticalFailureDegrades(t *testing.T) {
	hc := NewChecker("")
	hc.AddCheck("ping", ok, time.Second)
	hc.AddCheck("memory", func(context.Context) error { return errors.New("too much") }, time.Second)

	report := hc.Check(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, "too much", report.Checks["memory"].Error)
}

func TestCheck_CriticalFailure(t *testing.T) {
	hc := NewChecker("")
	hc.AddCriticalCheck("sessions", SessionCapacityCheck(func() int { return 10 }, 10), time.Second)

	report := hc.Check(context.Background())

	require.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, map[string]any{"current": 10, "max": 10}, report.Checks["sessions"].Details)
}

func TestCheck_Timeout(t *testing.T) {
	hc := NewChecker("")
	hc.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 20*time.Millisecond)

	report := hc.Check(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Contains(t, report.Checks["slow"].Error, "deadline")
}

func TestHandler(t *testing.T) {
	hc := NewChecker("dev")
	hc.AddCheck("memory", MemoryCheck(1<<40), time.Second)

	rec := httptest.NewRecorder()
	hc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusHealthy, report.Status)
	assert.NotEmpty(t, report.Uptime)
}

func TestHandler_Unhealthy(t *testing.T) {
	hc := NewChecker("")
	hc.AddCriticalCheck("down", func(context.Context) error { return errors.New("down") }, time.Second)

	rec := httptest.NewRecorder()
	hc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
