// Package payment defines the payment gateway contract and the demo
// gateway used in place of a real processor.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hamvadakara/hammeet/pkg/retry"
)

// CurrencyINR is the only currency the site charges in.
const CurrencyINR = "INR"

// ErrInvalidAmount is returned for non-positive amounts.
var ErrInvalidAmount = errors.New("payment: amount must be positive")

// Receipt is the outcome of a successful payment.
type Receipt struct {
	TransactionID string
	Amount        int64
	Currency      string
	PaidAt        time.Time
	Metadata      map[string]string
}

// Error is a declined or failed payment.
type Error struct {
	Reason string

	// Temporary failures may succeed when retried.
	Temporary bool
}

func (e *Error) Error() string {
	return "payment failed: " + e.Reason
}

// Reason extracts the user-facing reason from err.
func Reason(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Reason
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	return err.Error()
}

// Gateway initiates payments. Implementations must honor ctx
// cancellation and return ctx.Err() when cancelled.
type Gateway interface {
	Initiate(ctx context.Context, amount int64, metadata map[string]string) (Receipt, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, amount int64, metadata map[string]string) (Receipt, error)

func (f GatewayFunc) Initiate(ctx context.Context, amount int64, metadata map[string]string) (Receipt, error) {
	return f(ctx, amount, metadata)
}

// Charge calls gw, retrying temporary failures under policy.
func Charge(ctx context.Context, gw Gateway, policy retry.Policy, amount int64, metadata map[string]string) (Receipt, error) {
	if amount <= 0 {
		return Receipt{}, ErrInvalidAmount
	}
	policy.RetryIf = IsTemporary
	return retry.Do(ctx, policy, func(ctx context.Context) (Receipt, error) {
		return gw.Initiate(ctx, amount, metadata)
	})
}

// IsTemporary reports whether err is a temporary gateway failure.
func IsTemporary(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Temporary
}

// FormatINR renders an amount in rupees with Indian digit grouping,
// e.g. 100000 → "₹1,00,000".
func FormatINR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		for i, r := range head {
			if i > 0 && (len(head)-i)%2 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(r)
		}
		b.WriteByte(',')
		b.WriteString(tail)
	} else {
		b.WriteString(s)
	}

	if neg {
		return fmt.Sprintf("-₹%s", b.String())
	}
	return "₹" + b.String()
}
