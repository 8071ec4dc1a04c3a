package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamvadakara/hammeet/internal/payment"
	"github.com/hamvadakara/hammeet/internal/registration"
	"github.com/hamvadakara/hammeet/pkg/retry"
)

type recorder struct {
	mu          sync.Mutex
	transitions []string
	rejected    int
	outcomes    []string
}

func (r *recorder) Transition(from, to State, trigger Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, from.String()+">"+to.String()+":"+string(trigger))
}

func (r *recorder) Rejected(registration.ValidationErrors) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
}

func (r *recorder) PaymentFinished(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func fill(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.SetField(registration.FieldName, "A"))
	require.NoError(t, c.SetField(registration.FieldCallSign, "B"))
	require.NoError(t, c.SetField(registration.FieldMobile, "9876543210"))
	require.NoError(t, c.SetField(registration.FieldAddress, "C"))
}

func toPayment(t *testing.T, c *Controller) {
	t.Helper()
	fill(t, c)
	errs, err := c.Submit()
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, StatePayment, c.State())
}

func TestController_StartsInForm(t *testing.T) {
	c := New()
	v := c.View()

	assert.Equal(t, StateForm, v.State)
	assert.True(t, v.Form.IsZero())
	assert.Empty(t, v.Errors)
	assert.False(t, v.Processing)
	assert.Equal(t, DefaultFee, v.Fee)
}

func TestController_SubmitInvalidStaysInForm(t *testing.T) {
	rec := &recorder{}
	c := New(WithObserver(rec))
	require.NoError(t, c.SetField(registration.FieldMobile, "123"))

	errs, err := c.Submit()
	require.NoError(t, err)

	assert.Len(t, errs, 4)
	assert.Equal(t, StateForm, c.State())
	assert.Equal(t, "Enter a 10-digit mobile number", c.View().Errors[registration.FieldMobile])
	assert.Equal(t, 1, rec.rejected)
	assert.Empty(t, rec.transitions)
}

func TestController_SubmitValidMovesToPayment(t *testing.T) {
	rec := &recorder{}
	c := New(WithObserver(rec))
	_, _ = c.Submit()

	toPayment(t, c)
	assert.Empty(t, c.View().Errors)
	assert.Equal(t, []string{"form>payment:submit"}, rec.transitions)
}

func TestController_SetFieldOnlyInForm(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.SetField("email", "x"), ErrUnknownField)

	toPayment(t, c)
	assert.ErrorIs(t, c.SetField(registration.FieldName, "Z"), ErrNotEditable)
	assert.Equal(t, "A", c.View().Form.Name)
}

func TestController_PayAndComplete(t *testing.T) {
	rec := &recorder{}
	c := New(WithObserver(rec), WithFee(1500))
	toPayment(t, c)

	attempt, err := c.Pay(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Processing())
	assert.Equal(t, int64(1500), attempt.Amount)
	assert.Equal(t, "B", attempt.Metadata["callSign"])

	_, err = c.Pay(context.Background())
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	receipt := payment.Receipt{TransactionID: "tx-1", Amount: 1500}
	assert.True(t, c.Complete(Result{AttemptID: attempt.ID, Receipt: receipt}))
	assert.ErrorIs(t, attempt.Context().Err(), context.Canceled)

	// A second fire of the same completion changes nothing.
	assert.False(t, c.Complete(Result{AttemptID: attempt.ID, Receipt: receipt}))

	v := c.View()
	assert.Equal(t, StateSuccess, v.State)
	assert.False(t, v.Processing)
	require.NotNil(t, v.Receipt)
	assert.Equal(t, "tx-1", v.Receipt.TransactionID)
	assert.Equal(t, []string{"form>payment:submit", "payment>success:complete"}, rec.transitions)
	assert.Equal(t, []string{OutcomeSuccess}, rec.outcomes)
}

func TestController_CompleteFailureStaysInPayment(t *testing.T) {
	c := New()
	toPayment(t, c)

	attempt, err := c.Pay(context.Background())
	require.NoError(t, err)

	applied := c.Complete(Result{AttemptID: attempt.ID, Err: &payment.Error{Reason: "card declined"}})
	assert.True(t, applied)

	v := c.View()
	assert.Equal(t, StatePayment, v.State)
	assert.False(t, v.Processing)
	assert.Equal(t, "card declined", v.Failure)

	// Paying again clears the failure.
	_, err = c.Pay(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.View().Failure)
}

func TestController_StaleCompletionIgnored(t *testing.T) {
	c := New()
	toPayment(t, c)

	assert.False(t, c.Complete(Result{AttemptID: "nope"}))

	attempt, err := c.Pay(context.Background())
	require.NoError(t, err)
	assert.False(t, c.Complete(Result{AttemptID: "other"}))
	assert.True(t, c.Processing())
	assert.Equal(t, StatePayment, c.State())
	_ = attempt
}

func TestController_BackCancelsAttempt(t *testing.T) {
	c := New()
	toPayment(t, c)

	attempt, err := c.Pay(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Back())
	assert.Equal(t, StateForm, c.State())
	assert.False(t, c.Processing())
	assert.ErrorIs(t, attempt.Context().Err(), context.Canceled)

	// The late completion must not move the user to success.
	assert.False(t, c.Complete(Result{AttemptID: attempt.ID}))
	assert.Equal(t, StateForm, c.State())

	// Form is kept and editable again.
	assert.Equal(t, "A", c.View().Form.Name)
	assert.NoError(t, c.SetField(registration.FieldName, "A2"))
}

func TestController_AbandonOnlyMatchingAttempt(t *testing.T) {
	c := New()
	toPayment(t, c)

	first, err := c.Pay(context.Background())
	require.NoError(t, err)
	require.True(t, c.Abandon(first.ID))
	assert.False(t, c.Processing())
	assert.Equal(t, StatePayment, c.State())
	assert.ErrorIs(t, first.Context().Err(), context.Canceled)

	second, err := c.Pay(context.Background())
	require.NoError(t, err)
	assert.False(t, c.Abandon(first.ID), "an older attempt cannot release a newer one")
	assert.True(t, c.Processing())
	assert.NoError(t, second.Context().Err())
}

func TestController_RegisterAnotherClearsForm(t *testing.T) {
	c := New()
	toPayment(t, c)
	attempt, err := c.Pay(context.Background())
	require.NoError(t, err)
	require.True(t, c.Complete(Result{AttemptID: attempt.ID}))

	require.NoError(t, c.RegisterAnother())

	v := c.View()
	assert.Equal(t, StateForm, v.State)
	assert.Equal(t, registration.Form{Name: "", CallSign: "", Mobile: "", Address: ""}, v.Form)
	assert.Nil(t, v.Receipt)
}

func TestController_ResetClearsFormKeepsErrors(t *testing.T) {
	c := New()
	require.NoError(t, c.SetField(registration.FieldName, "A"))
	require.NoError(t, c.SetField(registration.FieldMobile, "12"))
	_, err := c.Submit()
	require.NoError(t, err)

	require.NoError(t, c.Reset())

	v := c.View()
	assert.True(t, v.Form.IsZero())
	assert.True(t, v.Errors.Has(registration.FieldMobile))
}

func TestController_InvalidTransitions(t *testing.T) {
	c := New()

	_, err := c.Pay(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, c.Back(), ErrInvalidTransition)
	assert.ErrorIs(t, c.RegisterAnother(), ErrInvalidTransition)

	toPayment(t, c)
	_, err = c.Submit()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, c.Reset(), ErrInvalidTransition)
	assert.Equal(t, StatePayment, c.State())
}

func TestRunner_CompletesOnce(t *testing.T) {
	gw := payment.NewDemoGateway(payment.WithDelay(20 * time.Millisecond))
	runner := Runner{Gateway: gw, Policy: retry.NoRetry()}

	c := New()
	toPayment(t, c)

	results := make(chan Result, 2)
	start := time.Now()
	attempt, err := runner.Start(context.Background(), c, func(r Result) { results <- r })
	require.NoError(t, err)

	_, err = runner.Start(context.Background(), c, func(r Result) { results <- r })
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	select {
	case res := <-results:
		assert.Equal(t, attempt.ID, res.AttemptID)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		assert.True(t, c.Complete(res))
		assert.False(t, c.Complete(res))
	case <-time.After(2 * time.Second):
		t.Fatal("payment never completed")
	}

	assert.Equal(t, StateSuccess, c.State())
	assert.Equal(t, 1, gw.Calls())
	select {
	case <-results:
		t.Fatal("unexpected second result")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunner_BackSuppressesDelivery(t *testing.T) {
	runner := Runner{Gateway: payment.NewDemoGateway(payment.WithDelay(time.Hour)), Policy: retry.NoRetry()}

	c := New()
	toPayment(t, c)

	delivered := make(chan Result, 1)
	_, err := runner.Start(context.Background(), c, func(r Result) { delivered <- r })
	require.NoError(t, err)
	require.NoError(t, c.Back())

	select {
	case <-delivered:
		t.Fatal("cancelled attempt was delivered")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, StateForm, c.State())
}

func TestRunner_Failure(t *testing.T) {
	gw := payment.NewDemoGateway(payment.WithDelay(0), payment.WithFailure(-1, "insufficient funds", false))
	runner := Runner{Gateway: gw, Policy: retry.NoRetry()}

	c := New()
	toPayment(t, c)

	delivered := make(chan Result, 1)
	_, err := runner.Start(context.Background(), c, func(r Result) { delivered <- r })
	require.NoError(t, err)

	res := <-delivered
	var perr *payment.Error
	require.True(t, errors.As(res.Err, &perr))
	require.True(t, c.Complete(res))
	assert.Equal(t, "insufficient funds", c.View().Failure)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "form", StateForm.String())
	assert.Equal(t, "payment", StatePayment.String())
	assert.Equal(t, "success", StateSuccess.String())
	assert.Equal(t, "state(9)", State(9).String())
}
