package wizard

import (
	"context"

	"github.com/hamvadakara/hammeet/internal/payment"
	"github.com/hamvadakara/hammeet/pkg/retry"
)

// Runner starts payments for a controller in the background.
type Runner struct {
	Gateway payment.Gateway
	Policy  retry.Policy
}

// Start begins an attempt and charges the gateway on its own goroutine.
// deliver receives the result exactly once, unless the attempt was
// cancelled first; cancelled attempts are not reported. The caller is
// expected to pass the result to Controller.Complete.
func (r Runner) Start(ctx context.Context, c *Controller, deliver func(Result)) (*Attempt, error) {
	attempt, err := c.Pay(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		receipt, err := payment.Charge(attempt.Context(), r.Gateway, r.Policy, attempt.Amount, attempt.Metadata)
		if attempt.Context().Err() != nil {
			return
		}
		deliver(Result{AttemptID: attempt.ID, Receipt: receipt, Err: err})
	}()

	return attempt, nil
}
