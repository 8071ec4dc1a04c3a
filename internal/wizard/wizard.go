// Package wizard implements the registration flow: form, payment and
// success, with a cancellable payment attempt.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamvadakara/hammeet/internal/payment"
	"github.com/hamvadakara/hammeet/internal/registration"
)

// State is a wizard step.
type State int

const (
	StateForm State = iota
	StatePayment
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateForm:
		return "form"
	case StatePayment:
		return "payment"
	case StateSuccess:
		return "success"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Trigger names a user or system action.
type Trigger string

const (
	TriggerSubmit          Trigger = "submit"
	TriggerPay             Trigger = "pay"
	TriggerComplete        Trigger = "complete"
	TriggerBack            Trigger = "back"
	TriggerRegisterAnother Trigger = "register_another"
	TriggerReset           Trigger = "reset"
)

// Errors returned for triggers the current state does not accept.
var (
	ErrInvalidTransition = errors.New("wizard: invalid transition")
	ErrPaymentInProgress = errors.New("wizard: payment in progress")
	ErrNotEditable       = errors.New("wizard: form not editable")
	ErrUnknownField      = errors.New("wizard: unknown field")
)

// Observer is notified after every state change and failed submit. It is
// called with the controller locked and must not call back into it.
type Observer interface {
	Transition(from, to State, trigger Trigger)
	Rejected(errs registration.ValidationErrors)
	PaymentFinished(outcome string, elapsed time.Duration)
}

// Payment outcomes reported to Observer.PaymentFinished.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type nopObserver struct{}

func (nopObserver) Transition(State, State, Trigger)       {}
func (nopObserver) Rejected(registration.ValidationErrors) {}
func (nopObserver) PaymentFinished(string, time.Duration)  {}

// DefaultFee is the registration fee in rupees.
const DefaultFee int64 = 1000

// Attempt is one pending payment.
type Attempt struct {
	ID        string
	Amount    int64
	Metadata  map[string]string
	StartedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Context is cancelled when the attempt is abandoned.
func (a *Attempt) Context() context.Context {
	return a.ctx
}

// Result reports how an attempt ended.
type Result struct {
	AttemptID string
	Receipt   payment.Receipt
	Err       error
}

// View is a consistent copy of the controller state.
type View struct {
	State      State
	Form       registration.Form
	Errors     registration.ValidationErrors
	Processing bool
	Receipt    *payment.Receipt
	Failure    string
	Fee        int64
}

// Controller drives one registration session.
type Controller struct {
	mu       sync.Mutex
	state    State
	form     registration.Form
	errors   registration.ValidationErrors
	attempt  *Attempt
	receipt  *payment.Receipt
	failure  string
	fee      int64
	validate func(registration.Form) registration.ValidationErrors
	obs      Observer
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithFee sets the registration fee in rupees.
func WithFee(fee int64) Option {
	return func(c *Controller) {
		c.fee = fee
	}
}

// WithValidator replaces the form validator.
func WithValidator(fn func(registration.Form) registration.ValidationErrors) Option {
	return func(c *Controller) {
		c.validate = fn
	}
}

// WithObserver sets the transition observer.
func WithObserver(obs Observer) Option {
	return func(c *Controller) {
		if obs != nil {
			c.obs = obs
		}
	}
}

// New creates a controller in the form state with an empty form.
func New(opts ...Option) *Controller {
	c := &Controller{
		state:    StateForm,
		errors:   registration.ValidationErrors{},
		fee:      DefaultFee,
		validate: registration.Validate,
		obs:      nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current step.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Processing reports whether a payment attempt is pending.
func (c *Controller) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt != nil
}

// View returns a snapshot of the controller.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make(registration.ValidationErrors, len(c.errors))
	for k, v := range c.errors {
		errs[k] = v
	}
	var receipt *payment.Receipt
	if c.receipt != nil {
		r := *c.receipt
		receipt = &r
	}
	return View{
		State:      c.state,
		Form:       c.form,
		Errors:     errs,
		Processing: c.attempt != nil,
		Receipt:    receipt,
		Failure:    c.failure,
		Fee:        c.fee,
	}
}

// SetField edits the form. Only allowed in the form state.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateForm {
		return ErrNotEditable
	}
	if !c.form.Set(name, value) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Submit validates the form and moves to payment when it is valid. The
// returned errors are also kept for display; they are empty on success.
func (c *Controller) Submit() (registration.ValidationErrors, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateForm {
		return nil, c.invalid(TriggerSubmit)
	}

	errs := c.validate(c.form)
	if errs == nil {
		errs = registration.ValidationErrors{}
	}
	c.errors = errs
	if !errs.Valid() {
		c.obs.Rejected(errs)
		return errs, nil
	}

	c.failure = ""
	c.transition(StatePayment, TriggerSubmit)
	return errs, nil
}

// Pay starts a payment attempt. The caller runs the gateway with the
// attempt's context and reports back through Complete.
func (c *Controller) Pay(parent context.Context) (*Attempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePayment {
		return nil, c.invalid(TriggerPay)
	}
	if c.attempt != nil {
		return nil, ErrPaymentInProgress
	}

	ctx, cancel := context.WithCancel(parent)
	form := c.form.Normalized()
	c.attempt = &Attempt{
		ID:     uuid.NewString(),
		Amount: c.fee,
		Metadata: map[string]string{
			"name":     form.Name,
			"callSign": form.CallSign,
			"mobile":   form.Mobile,
		},
		StartedAt: c.now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	c.failure = ""
	return c.attempt, nil
}

// Complete applies the result of the pending attempt. Results for any
// other attempt are ignored, so a completion takes effect at most once.
// It reports whether the result was applied.
func (c *Controller) Complete(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempt == nil || c.attempt.ID != res.AttemptID || c.state != StatePayment {
		return false
	}
	elapsed := c.now().Sub(c.attempt.StartedAt)
	c.attempt.cancel()
	c.attempt = nil

	if res.Err != nil {
		c.failure = payment.Reason(res.Err)
		c.obs.PaymentFinished(OutcomeFailure, elapsed)
		return true
	}
	c.obs.PaymentFinished(OutcomeSuccess, elapsed)

	r := res.Receipt
	c.receipt = &r
	c.transition(StateSuccess, TriggerComplete)
	return true
}

// Back returns from payment to the form, abandoning any pending attempt.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePayment {
		return c.invalid(TriggerBack)
	}
	c.cancelAttempt()
	c.failure = ""
	c.transition(StateForm, TriggerBack)
	return nil
}

// RegisterAnother starts over after a successful registration.
func (c *Controller) RegisterAnother() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSuccess {
		return c.invalid(TriggerRegisterAnother)
	}
	c.form = registration.Form{}
	c.errors = registration.ValidationErrors{}
	c.receipt = nil
	c.transition(StateForm, TriggerRegisterAnother)
	return nil
}

// Reset clears the form. Displayed errors are left as they are.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateForm {
		return c.invalid(TriggerReset)
	}
	c.form = registration.Form{}
	return nil
}

// Cancel abandons a pending attempt without changing state. It reports
// whether there was one.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelAttempt()
}

// Abandon cancels the pending attempt if it is the one with the given id.
// A newer attempt is left alone.
func (c *Controller) Abandon(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempt == nil || c.attempt.ID != id {
		return false
	}
	return c.cancelAttempt()
}

func (c *Controller) cancelAttempt() bool {
	if c.attempt == nil {
		return false
	}
	c.attempt.cancel()
	c.attempt = nil
	return true
}

func (c *Controller) transition(to State, trigger Trigger) {
	from := c.state
	c.state = to
	c.obs.Transition(from, to, trigger)
}

func (c *Controller) invalid(trigger Trigger) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, c.state)
}
