package payment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDelay is how long the demo gateway takes to "process" a payment.
const DefaultDelay = 1500 * time.Millisecond

// DemoGateway always succeeds after a fixed delay unless configured to
// fail. No money moves.
type DemoGateway struct {
	delay   time.Duration
	now     func() time.Time
	newID   func() string
	mu      sync.Mutex
	fails   int
	failure *Error
	calls   int
}

// DemoOption configures a DemoGateway.
type DemoOption func(*DemoGateway)

// WithDelay sets the processing delay.
func WithDelay(d time.Duration) DemoOption {
	return func(g *DemoGateway) {
		g.delay = d
	}
}

// WithFailure makes the next n payments fail with reason. n < 0 fails
// every payment.
func WithFailure(n int, reason string, temporary bool) DemoOption {
	return func(g *DemoGateway) {
		g.fails = n
		g.failure = &Error{Reason: reason, Temporary: temporary}
	}
}

// WithClock overrides the receipt timestamp source.
func WithClock(now func() time.Time) DemoOption {
	return func(g *DemoGateway) {
		g.now = now
	}
}

// NewDemoGateway creates a demo gateway.
func NewDemoGateway(opts ...DemoOption) *DemoGateway {
	g := &DemoGateway{
		delay: DefaultDelay,
		now:   time.Now,
		newID: func() string { return "DEMO-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Delay returns the configured processing delay.
func (g *DemoGateway) Delay() time.Duration {
	return g.delay
}

// Calls returns how many payments were initiated.
func (g *DemoGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// Initiate waits for the delay and returns a receipt.
func (g *DemoGateway) Initiate(ctx context.Context, amount int64, metadata map[string]string) (Receipt, error) {
	if amount <= 0 {
		return Receipt{}, ErrInvalidAmount
	}

	g.mu.Lock()
	g.calls++
	var failure *Error
	if g.failure != nil && g.fails != 0 {
		failure = g.failure
		if g.fails > 0 {
			g.fails--
		}
	}
	g.mu.Unlock()

	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case <-timer.C:
	}

	if failure != nil {
		return Receipt{}, &Error{Reason: failure.Reason, Temporary: failure.Temporary}
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	return Receipt{
		TransactionID: g.newID(),
		Amount:        amount,
		Currency:      CurrencyINR,
		PaidAt:        g.now(),
		Metadata:      meta,
	}, nil
}
