// Package page implements the registration site as a live component.
package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamvadakara/hammeet/internal/event"
	"github.com/hamvadakara/hammeet/internal/payment"
	"github.com/hamvadakara/hammeet/internal/registration"
	"github.com/hamvadakara/hammeet/internal/wizard"
	"github.com/hamvadakara/hammeet/pkg/core"
	"github.com/hamvadakara/hammeet/pkg/i18n"
	"github.com/hamvadakara/hammeet/pkg/logging"
	"github.com/hamvadakara/hammeet/pkg/retry"
)

// Client events.
const (
	EventChange          = "change"
	EventSubmit          = "submit"
	EventReset           = "reset"
	EventPay             = "pay"
	EventBack            = "back"
	EventRegisterAnother = "register_another"
)

// Assign keys mirroring the wizard view. Render output depends only on
// these, so events that leave them unchanged are not re-rendered.
const (
	AssignState      = "state"
	AssignProcessing = "processing"
	AssignForm       = "form"
	AssignErrors     = "errors"
	AssignFailure    = "failure"
	AssignReceipt    = "receipt"
)

// ErrUnknownEvent is returned for events the page does not handle.
var ErrUnknownEvent = errors.New("page: unknown event")

// ScriptPath is where the client script is served.
const ScriptPath = "/_live/hammeet.js"

// Config holds what every page instance shares.
type Config struct {
	Event    event.Details
	Gateway  payment.Gateway
	Retry    retry.Policy
	Bundle   *i18n.Bundle
	Observer wizard.Observer
	Logger   logging.Logger
	// URL is the canonical page URL for metadata.
	URL string
}

// RegistrationPage is one visitor's view of the site.
type RegistrationPage struct {
	core.BaseComponent

	cfg    Config
	wiz    *wizard.Controller
	runner wizard.Runner
	t      *i18n.Translator
	logger logging.Logger

	life   context.Context
	cancel context.CancelFunc
}

// New returns a factory suitable for Router.Live.
func New(cfg Config) func() core.Component {
	if cfg.Gateway == nil {
		cfg.Gateway = payment.NewDemoGateway()
	}
	if cfg.Bundle == nil {
		cfg.Bundle = i18n.MustBundle()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger{}
	}
	if cfg.Event.Title == "" {
		cfg.Event = event.Default()
	}

	return func() core.Component {
		return &RegistrationPage{cfg: cfg}
	}
}

func (p *RegistrationPage) Name() string { return "registration" }

// Mount starts a fresh registration. The language comes from the "lang"
// query parameter, then the "lang" cookie.
func (p *RegistrationPage) Mount(ctx context.Context, params core.Params, session core.Session) error {
	p.t = p.cfg.Bundle.Translator(params.Get("lang"), session.GetString("cookie:lang"))
	p.logger = logging.LoggerFromContext(ctx)
	if p.logger == nil {
		p.logger = p.cfg.Logger
	}

	t := p.t
	p.wiz = wizard.New(
		wizard.WithFee(p.cfg.Event.Fee),
		wizard.WithObserver(p.cfg.Observer),
		wizard.WithValidator(func(f registration.Form) registration.ValidationErrors {
			return registration.ValidateWith(f, t)
		}),
	)
	p.runner = wizard.Runner{Gateway: p.cfg.Gateway, Policy: p.cfg.Retry}

	// Payments outlive the event that starts them.
	p.life, p.cancel = context.WithCancel(context.WithoutCancel(ctx))
	p.publish()
	return nil
}

// HandleEvent maps client events to wizard triggers. Triggers the current
// state does not accept are logged and ignored; the page simply re-renders.
func (p *RegistrationPage) HandleEvent(ctx context.Context, name string, payload map[string]any) error {
	var err error

	switch name {
	case EventChange:
		err = p.wiz.SetField(stringValue(payload, "name"), stringValue(payload, "value"))

	case EventSubmit:
		err = p.submit(payload)

	case EventReset:
		err = p.wiz.Reset()

	case EventPay:
		err = p.pay()

	case EventBack:
		err = p.wiz.Back()

	case EventRegisterAnother:
		err = p.wiz.RegisterAnother()

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}

	if err != nil {
		p.logger.Debug("event ignored", logging.String("event", name), logging.String("state", p.wiz.State().String()), logging.Err(err))
	}
	p.publish()
	return nil
}

// submit applies any field values carried by the form submission before
// validating.
func (p *RegistrationPage) submit(payload map[string]any) error {
	for _, field := range registration.Rules.Fields() {
		if v, ok := payload[field].(string); ok {
			if err := p.wiz.SetField(field, v); err != nil {
				return err
			}
		}
	}

	errs, err := p.wiz.Submit()
	if err != nil {
		return err
	}
	if !errs.Valid() {
		p.logger.Debug("registration rejected", logging.Int("errors", len(errs)))
	}
	return nil
}

func (p *RegistrationPage) pay() error {
	socket := p.Socket()
	if socket == nil {
		return core.ErrSocketClosed
	}

	wiz := p.wiz
	attempt, err := p.runner.Start(p.life, wiz, func(res wizard.Result) {
		if err := socket.SendInfo(res); err != nil {
			// Nothing will complete this attempt now; release it so Pay is
			// offered again if the page is still around.
			wiz.Abandon(res.AttemptID)
			p.logger.Warn("payment result not delivered", logging.String("attempt", res.AttemptID), logging.Err(err))
		}
	})
	if err != nil {
		return err
	}

	p.logger.Info("payment started", logging.String("attempt", attempt.ID), logging.Int64("amount", attempt.Amount))
	return nil
}

// HandleInfo applies payment results.
func (p *RegistrationPage) HandleInfo(ctx context.Context, msg any) error {
	res, ok := msg.(wizard.Result)
	if !ok {
		return nil
	}
	defer p.publish()

	if !p.wiz.Complete(res) {
		p.logger.Debug("stale payment result dropped", logging.String("attempt", res.AttemptID))
		return nil
	}

	if res.Err != nil {
		p.logger.Warn("payment failed", logging.String("attempt", res.AttemptID), logging.String("reason", payment.Reason(res.Err)))
		return nil
	}
	p.logger.Info("registration confirmed",
		logging.String("attempt", res.AttemptID),
		logging.String("transaction", res.Receipt.TransactionID),
		logging.String("call_sign", res.Receipt.Metadata["callSign"]),
	)
	return nil
}

// Terminate abandons any pending payment.
func (p *RegistrationPage) Terminate(ctx context.Context, reason core.TerminateReason) error {
	if p.wiz != nil && p.wiz.Cancel() {
		p.logger.Debug("pending payment cancelled", logging.String("reason", reason.String()))
	}
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// publish copies the wizard view into assigns.
func (p *RegistrationPage) publish() {
	v := p.wiz.View()
	a := p.Assigns()
	a.Set(AssignState, v.State.String())
	a.Set(AssignProcessing, v.Processing)
	a.Set(AssignForm, v.Form.Values())
	a.Set(AssignErrors, map[string]string(v.Errors))
	a.Set(AssignFailure, v.Failure)
	a.Set(AssignReceipt, v.Receipt)
}

// Wizard exposes the controller for tests and diagnostics.
func (p *RegistrationPage) Wizard() *wizard.Controller {
	return p.wiz
}

func stringValue(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}
