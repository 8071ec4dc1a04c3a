package server

import (
	"sort"
	"time"

	"github.com/hamvadakara/hammeet/internal/registration"
	"github.com/hamvadakara/hammeet/internal/wizard"
	"github.com/hamvadakara/hammeet/pkg/logging"
	"github.com/hamvadakara/hammeet/pkg/metrics"
)

// observer reports wizard activity to metrics and the log.
type observer struct {
	m      *metrics.Metrics
	logger logging.Logger
}

func newObserver(m *metrics.Metrics, logger logging.Logger) wizard.Observer {
	return observer{m: m, logger: logger}
}

func (o observer) Transition(from, to wizard.State, trigger wizard.Trigger) {
	o.m.WizardTransition(from.String(), to.String())
	o.logger.Debug("wizard transition",
		logging.String("from", from.String()),
		logging.String("to", to.String()),
		logging.String("trigger", string(trigger)),
	)
}

func (o observer) Rejected(errs registration.ValidationErrors) {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		o.m.ValidationFailed(field)
		fields = append(fields, field)
	}
	sort.Strings(fields)
	o.logger.Debug("registration rejected", logging.Any("fields", fields))
}

func (o observer) PaymentFinished(outcome string, elapsed time.Duration) {
	o.m.PaymentCompleted(outcome, elapsed)
	o.logger.Info("payment finished",
		logging.String("outcome", outcome),
		logging.Duration("elapsed", elapsed),
	)
}
