package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamvadakara/hammeet/internal/payment"
	"github.com/hamvadakara/hammeet/internal/registration"
	"github.com/hamvadakara/hammeet/internal/wizard"
	"github.com/hamvadakara/hammeet/pkg/i18n"
	"github.com/hamvadakara/hammeet/pkg/retry"
)

// scripted answers prompts from fixed lists.
type scripted struct {
	forms    []registration.Form
	confirms []bool
	waits    int
	rejected []string
}

func (s *scripted) Details(ctx context.Context, f *registration.Form, validate func(string) func(string) error) error {
	next := s.forms[0]
	s.forms = s.forms[1:]
	for field, value := range next.Values() {
		if err := validate(field)(value); err != nil {
			s.rejected = append(s.rejected, field)
		}
	}
	*f = next
	return nil
}

func (s *scripted) Confirm(ctx context.Context, title, description string) (bool, error) {
	ok := s.confirms[0]
	s.confirms = s.confirms[1:]
	return ok, nil
}

func (s *scripted) Wait(ctx context.Context, title string, fn func(context.Context) error) error {
	s.waits++
	return fn(ctx)
}

var validForm = registration.Form{
	Name:     "Anand",
	CallSign: "vu2abc",
	Mobile:   "9876543210",
	Address:  "Irinave, Vadakara",
}

func newFlow(p prompter, gw payment.Gateway) (*registerFlow, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &registerFlow{
		prompt: p,
		runner: wizard.Runner{Gateway: gw, Policy: retry.NoRetry()},
		tr:     i18n.Default(),
		out:    out,
		title:  "HAM MEET Vadakara 2026",
	}, out
}

func TestRegisterFlow_Success(t *testing.T) {
	p := &scripted{forms: []registration.Form{validForm}, confirms: []bool{true}}
	flow, out := newFlow(p, payment.NewDemoGateway(payment.WithDelay(time.Millisecond)))

	c := wizard.New()
	require.NoError(t, flow.run(context.Background(), c))

	assert.Equal(t, wizard.StateSuccess, c.State())
	assert.Equal(t, 1, p.waits)
	assert.Empty(t, p.rejected)
	assert.Contains(t, out.String(), "VU2ABC")
	assert.Contains(t, out.String(), "₹1,000")
	assert.Contains(t, out.String(), "Transaction ID: DEMO-")
}

func TestRegisterFlow_InvalidThenValid(t *testing.T) {
	bad := validForm
	bad.Mobile = "98765"
	p := &scripted{forms: []registration.Form{bad, validForm}, confirms: []bool{true}}
	flow, out := newFlow(p, payment.NewDemoGateway(payment.WithDelay(time.Millisecond)))

	require.NoError(t, flow.run(context.Background(), wizard.New()))

	assert.Equal(t, []string{registration.FieldMobile}, p.rejected)
	assert.Contains(t, out.String(), "Enter a 10-digit mobile number")
}

func TestRegisterFlow_DeclineReturnsToForm(t *testing.T) {
	p := &scripted{forms: []registration.Form{validForm, validForm}, confirms: []bool{false, true}}
	flow, _ := newFlow(p, payment.NewDemoGateway(payment.WithDelay(time.Millisecond)))

	c := wizard.New()
	require.NoError(t, flow.run(context.Background(), c))
	assert.Equal(t, wizard.StateSuccess, c.State())
	assert.Empty(t, p.forms)
}

func TestRegisterFlow_FailureThenRetry(t *testing.T) {
	gw := payment.NewDemoGateway(
		payment.WithDelay(time.Millisecond),
		payment.WithFailure(1, "card declined", false),
	)
	p := &scripted{forms: []registration.Form{validForm}, confirms: []bool{true, true}}
	flow, out := newFlow(p, gw)

	c := wizard.New()
	require.NoError(t, flow.run(context.Background(), c))

	assert.Equal(t, wizard.StateSuccess, c.State())
	assert.Equal(t, 2, p.waits)
	assert.Contains(t, out.String(), "Payment failed: card declined")
}

func TestRegisterFlow_CancelledWait(t *testing.T) {
	p := &scripted{forms: []registration.Form{validForm}, confirms: []bool{true}}
	flow, _ := newFlow(p, payment.NewDemoGateway(payment.WithDelay(time.Hour)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := wizard.New()
	err := flow.run(ctx, c)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, c.Processing())
}

func TestRenderSummary(t *testing.T) {
	v := wizard.View{
		State:   wizard.StateSuccess,
		Form:    validForm,
		Fee:     1000,
		Receipt: &payment.Receipt{TransactionID: "DEMO-123"},
	}
	s := renderSummary(i18n.Default(), v)

	for _, want := range []string{"Anand", "VU2ABC", "9876543210", "₹1,000", "Transaction ID: DEMO-123", "Call Sign"} {
		assert.Contains(t, s, want)
	}
}
