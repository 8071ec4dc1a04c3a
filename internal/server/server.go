// Package server assembles the registration site: the live page, its client
// script, health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hamvadakara/hammeet/client"
	"github.com/hamvadakara/hammeet/internal/config"
	"github.com/hamvadakara/hammeet/internal/page"
	"github.com/hamvadakara/hammeet/internal/payment"
	"github.com/hamvadakara/hammeet/pkg/health"
	"github.com/hamvadakara/hammeet/pkg/i18n"
	"github.com/hamvadakara/hammeet/pkg/limits"
	"github.com/hamvadakara/hammeet/pkg/logging"
	"github.com/hamvadakara/hammeet/pkg/metrics"
	"github.com/hamvadakara/hammeet/pkg/router"
	"github.com/hamvadakara/hammeet/pkg/shutdown"
)

// Paths served besides the page.
const (
	PathScripts = "/_live/"
	PathHealth  = "/healthz"
	PathMetrics = "/metrics"
)

// Server is the HTTP front of the site.
type Server struct {
	cfg     config.Config
	logger  logging.Logger
	version string
	gateway payment.Gateway

	metrics *metrics.Metrics
	router  *router.Router
	health  *health.Checker
	http    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithGateway replaces the configured demo gateway.
func WithGateway(gw payment.Gateway) Option {
	return func(s *Server) {
		s.gateway = gw
	}
}

// New wires every route.
func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		logger:  logging.NopLogger{},
		version: "dev",
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gateway == nil {
		s.gateway = cfg.Payment.Gateway()
	}

	rt := cfg.Core()
	ropts := []router.Option{
		router.WithConfig(rt),
		router.WithLogger(s.logger),
		router.WithObserver(s.metrics),
	}
	if cfg.Server.MaxConnsPerIP > 0 || rt.MaxSessions > 0 {
		ropts = append(ropts, router.WithConnectionLimiter(limits.NewConnectionLimiter(cfg.Server.MaxConnsPerIP, rt.MaxSessions)))
	}
	if cfg.Server.EventRate > 0 {
		ropts = append(ropts, router.WithEventLimiter(limits.NewEventLimiter(cfg.Server.EventRate, cfg.Server.EventBurst)))
	}

	r, err := router.New(ropts...)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	s.router = r

	bundle, err := i18n.NewBundle()
	if err != nil {
		return nil, fmt.Errorf("i18n: %w", err)
	}

	s.health = health.NewChecker(s.version)
	s.health.AddCriticalCheck("live_sessions", health.SessionCapacityCheck(r.SessionManager().Count, rt.MaxSessions), time.Second)

	r.Use(router.RequestID())
	r.Use(router.Recovery(s.logger))
	r.Use(router.SecureHeaders())
	r.Use(logging.RequestLogger(s.logger))

	r.Live("/{$}", page.New(page.Config{
		Event:    cfg.Details(),
		Gateway:  s.gateway,
		Retry:    cfg.Payment.Policy(),
		Bundle:   bundle,
		Observer: newObserver(s.metrics, s.logger),
		Logger:   s.logger,
		URL:      cfg.Server.BaseURL,
	}))
	r.Handle(PathScripts, http.StripPrefix(PathScripts, client.Handler()))
	r.Handle(PathHealth, s.health.Handler())
	r.Handle(PathMetrics, s.metrics.Handler())

	s.http = &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the metric set.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// Router returns the live router.
func (s *Server) Router() *router.Router {
	return s.router
}

// Run listens on the configured address until ctx is done or a termination
// signal arrives.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	s.router.StartCleanup(stop)

	sh := shutdown.NewHandler(s.cfg.Timeouts.GracefulShutdown, s.logger)
	sh.Register("http", shutdown.PriorityHTTP, s.http.Shutdown)
	sh.Register("live sessions", shutdown.PriorityLive, s.router.Shutdown)
	sh.Register("session cleanup", shutdown.PriorityLast, func(context.Context) error {
		close(stop)
		return nil
	})

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("listening",
			logging.String("addr", ln.Addr().String()),
			logging.Bool("dev", s.cfg.Server.Dev),
		)
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- sh.Wait(ctx)
	}()

	select {
	case err := <-serveErr:
		sh.Shutdown()
		<-waitErr
		return fmt.Errorf("serve: %w", err)
	case err := <-waitErr:
		return err
	}
}
