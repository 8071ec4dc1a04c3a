package limits

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionLimiter_PerIP(t *testing.T) {
	cl := NewConnectionLimiter(2, 0)

	require.True(t, cl.Acquire("10.0.0.1"))
	require.True(t, cl.Acquire("10.0.0.1"))
	assert.False(t, cl.Acquire("10.0.0.1"))
	assert.True(t, cl.Acquire("10.0.0.2"))

	assert.Equal(t, 2, cl.Count("10.0.0.1"))
	assert.Equal(t, 3, cl.Total())
	assert.Equal(t, int64(1), cl.Blocked())

	cl.Release("10.0.0.1")
	assert.True(t, cl.Acquire("10.0.0.1"))
}

func TestConnectionLimiter_Global(t *testing.T) {
	cl := NewConnectionLimiter(0, 2)

	require.True(t, cl.Acquire("a"))
	require.True(t, cl.Acquire("b"))
	assert.False(t, cl.Acquire("c"))

	cl.Release("a")
	assert.True(t, cl.Acquire("c"))
}

func TestConnectionLimiter_ReleaseUnknown(t *testing.T) {
	cl := NewConnectionLimiter(1, 1)
	cl.Release("nobody")
	assert.Equal(t, 0, cl.Total())
	assert.True(t, cl.Acquire("x"))
}

func TestConnectionLimiter_Concurrent(t *testing.T) {
	cl := NewConnectionLimiter(0, 50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cl.Acquire("ip") {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, granted)
	assert.Equal(t, int64(150), cl.Blocked())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}

func TestEventLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewEventLimiter(2, 3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("s1"), "burst %d", i)
	}
	assert.False(t, l.Allow("s1"))
	assert.True(t, l.Allow("s2"), "keys are independent")

	now = now.Add(500 * time.Millisecond)
	assert.True(t, l.Allow("s1"))
	assert.False(t, l.Allow("s1"))

	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("s1"))
	}
	assert.False(t, l.Allow("s1"), "refill is capped at burst")

	assert.Equal(t, 2, l.Len())
	l.Forget("s1")
	assert.Equal(t, 1, l.Len())
}
