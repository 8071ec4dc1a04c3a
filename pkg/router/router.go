// Package router serves live components over HTTP and websocket.
package router

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamvadakara/hammeet/pkg/core"
	"github.com/hamvadakara/hammeet/pkg/limits"
	"github.com/hamvadakara/hammeet/pkg/logging"
	"github.com/hamvadakara/hammeet/pkg/pool"
	"github.com/hamvadakara/hammeet/pkg/protocol"
	"github.com/hamvadakara/hammeet/pkg/transport"
)

// Common router errors.
var (
	ErrNilRenderer = errors.New("component returned nil renderer")
	ErrNotJoined   = errors.New("event received before join")
)

// Observer receives runtime measurements. *metrics.Metrics implements it.
type Observer interface {
	ConnectionOpened()
	ConnectionClosed()
	EventHandled(event string, d time.Duration)
	RecordRender(d time.Duration, diffSize int)
	RecordError(kind string)
}

type nopObserver struct{}

func (nopObserver) ConnectionOpened()                  {}
func (nopObserver) ConnectionClosed()                  {}
func (nopObserver) EventHandled(string, time.Duration) {}
func (nopObserver) RecordRender(time.Duration, int)    {}
func (nopObserver) RecordError(string)                 {}

// Router handles HTTP routing for live components.
type Router struct {
	mux          *http.ServeMux
	liveRoutes   map[string]*LiveRoute
	middleware   []Middleware
	errorHandler ErrorHandler

	config core.Config
	codec  protocol.Codec
	logger logging.Logger
	obs    Observer

	conns  *limits.ConnectionLimiter
	events *limits.EventLimiter

	sessionManager *LiveViewSessionManager
	socketManager  *core.SocketManager

	mu sync.RWMutex
}

// LiveRoute defines a route that renders a live component.
type LiveRoute struct {
	// Path is the URL path pattern.
	Path string

	// Component is the factory function for creating the component.
	Component func() core.Component

	// Middleware are route-specific middleware.
	Middleware []Middleware
}

// Middleware is a function that wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// ErrorHandler handles errors during request processing.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures a Router.
type Option func(*Router)

// WithConfig sets the runtime configuration.
func WithConfig(cfg core.Config) Option {
	return func(r *Router) {
		r.config = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithObserver sets the metrics observer.
func WithObserver(obs Observer) Option {
	return func(r *Router) {
		r.obs = obs
	}
}

// WithConnectionLimiter bounds concurrent live connections.
func WithConnectionLimiter(l *limits.ConnectionLimiter) Option {
	return func(r *Router) {
		r.conns = l
	}
}

// WithEventLimiter rate-limits client events per session.
func WithEventLimiter(l *limits.EventLimiter) Option {
	return func(r *Router) {
		r.events = l
	}
}

// New creates a new router. The configuration must already be valid.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		mux:        http.NewServeMux(),
		liveRoutes: make(map[string]*LiveRoute),
		config:     core.DefaultConfig(),
		logger:     logging.NopLogger{},
		obs:        nopObserver{},
		errorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		},
		socketManager: core.NewSocketManager(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	codec, err := protocol.CodecByName(r.config.Codec)
	if err != nil {
		return nil, err
	}
	r.codec = codec

	r.sessionManager = NewLiveViewSessionManagerWithConfig(&LiveViewSessionManagerConfig{
		MaxSessions: r.config.MaxSessions,
		SessionTTL:  r.config.Timeouts.SessionTTL,
	})

	return r, nil
}

// Use adds middleware to the router. Only routes registered afterwards
// are wrapped.
func (r *Router) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw)
}

// SetErrorHandler sets the error handler.
func (r *Router) SetErrorHandler(handler ErrorHandler) {
	r.errorHandler = handler
}

// SessionManager returns the session manager.
func (r *Router) SessionManager() *LiveViewSessionManager {
	return r.sessionManager
}

// SocketManager returns the socket manager.
func (r *Router) SocketManager() *core.SocketManager {
	return r.socketManager
}

// Live registers a live route.
func (r *Router) Live(path string, component func() core.Component, mw ...Middleware) {
	route := &LiveRoute{
		Path:       path,
		Component:  component,
		Middleware: mw,
	}

	r.mu.Lock()
	r.liveRoutes[path] = route
	r.mu.Unlock()

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.renderLive(w, req, route)
	})
	for i := len(route.Middleware) - 1; i >= 0; i-- {
		h = route.Middleware[i](h)
	}
	r.Handle(path, h)
}

// Handle registers a standard HTTP handler wrapped in the global middleware.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mu.RLock()
	middleware := make([]Middleware, len(r.middleware))
	copy(middleware, r.middleware)
	r.mu.RUnlock()

	h := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}

	r.mux.Handle(pattern, h)
}

// HandleFunc registers a standard HTTP handler function.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Shutdown terminates every live session.
func (r *Router) Shutdown(ctx context.Context) error {
	for _, s := range r.sessionManager.All() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r.terminate(s, core.TerminateShutdown)
	}
	return nil
}

// StartCleanup removes idle sessions until stop is closed.
func (r *Router) StartCleanup(stop <-chan struct{}) {
	if r.config.Timeouts.SessionCleanup <= 0 {
		return
	}
	ticker := time.NewTicker(r.config.Timeouts.SessionCleanup)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, s := range r.sessionManager.Expired() {
					r.logger.Debug("closing idle session", logging.String("socket", s.SocketID))
					r.terminate(s, core.TerminateTimeout)
				}
			case <-stop:
				return
			}
		}
	}()
}

// renderLive renders the initial HTML, or upgrades to a live session.
func (r *Router) renderLive(w http.ResponseWriter, req *http.Request, route *LiveRoute) {
	if isWebSocketRequest(req) {
		r.handleWebSocket(w, req, route.Component())
		return
	}

	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	component := route.Component()
	params := extractParams(req)
	session := extractSession(req)

	ctx, cancel := context.WithTimeout(req.Context(), r.config.Timeouts.ComponentMount)
	defer cancel()

	if err := component.Mount(ctx, params, session); err != nil {
		r.errorHandler(w, req, fmt.Errorf("mount: %w", err))
		return
	}
	defer component.Terminate(context.Background(), core.TerminateNormal)

	renderer := component.Render(ctx)
	if renderer == nil {
		r.errorHandler(w, req, ErrNilRenderer)
		return
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := renderer.Render(ctx, buf); err != nil {
		r.errorHandler(w, req, fmt.Errorf("render: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleWebSocket upgrades the request and starts a live session.
func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request, component core.Component) {
	tcfg := transport.DefaultTransportConfig()
	tcfg.ReadTimeout = r.config.Timeouts.WebSocketRead
	tcfg.WriteTimeout = r.config.Timeouts.WebSocketWrite
	tcfg.MaxMessageSize = r.config.MaxMessageSize
	tcfg.Codec = r.codec

	wsTransport := transport.NewWebSocketTransport(tcfg, &transport.WebSocketConfig{
		AllowedOrigins:  r.config.AllowedOrigins,
		InsecureDevMode: r.config.InsecureDevMode,
	})

	socketID := uuid.NewString()
	logger := r.logger.With(logging.String("socket", socketID))
	wsTransport.SetLogger(logger)

	ip := limits.ClientIP(req)
	if r.conns != nil && !r.conns.Acquire(ip) {
		logger.Warn("connection limit reached", logging.String("ip", ip))
		r.obs.RecordError("conn_limit")
		http.Error(w, "Too Many Connections", http.StatusTooManyRequests)
		return
	}

	if err := wsTransport.Upgrade(w, req); err != nil {
		// Upgrade has already written the HTTP response.
		logger.Warn("websocket upgrade rejected", logging.Err(err), logging.String("origin", req.Header.Get("Origin")))
		r.obs.RecordError("upgrade")
		if r.conns != nil {
			r.conns.Release(ip)
		}
		return
	}

	socket := core.NewSocket(socketID, NewTransportAdapter(wsTransport))
	if bc, ok := component.(interface{ SetSocket(*core.Socket) }); ok {
		bc.SetSocket(socket)
	}

	session := extractSession(req)
	params := extractParams(req)

	lvSession := r.sessionManager.Create(socketID, component, params, session)
	lvSession.Transport = wsTransport
	lvSession.Socket = socket
	if r.conns != nil {
		lvSession.ClientIP = ip
	}

	r.socketManager.Add(socket)
	r.obs.ConnectionOpened()
	logger.Debug("live session opened")

	// The connection outlives the HTTP request, so the session context is
	// rooted at Background and cancelled on disconnect.
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.ContextWithLogger(ctx, logger)
	lvSession.cancel = cancel

	go r.messageLoop(ctx, lvSession)
}

// messageLoop processes client frames and server info messages for one
// session. Component callbacks run only on this goroutine.
func (r *Router) messageLoop(ctx context.Context, session *LiveViewSession) {
	defer r.terminate(session, core.TerminateNormal)

	recvCh := session.Transport.Receive()
	infoCh := session.Socket.Info()
	closeCh := session.Transport.CloseChan()

	for {
		select {
		case msg := <-recvCh:
			session.UpdateActivity()

			switch {
			case msg.IsHeartbeat():
				r.sendReply(session, protocol.OkReply(msg.Ref, msg.Topic, nil))

			case msg.Event == protocol.EventJoin:
				r.handleJoin(ctx, session, msg)

			case msg.Event == protocol.EventLeave:
				return

			case msg.Event == protocol.EventReply:
				// Clients never send replies.

			case r.events != nil && !r.events.Allow(session.SocketID):
				r.obs.RecordError("rate_limit")
				r.sendReply(session, protocol.ErrorReply(msg.Ref, msg.Topic, limits.ErrRateLimited.Error()))

			default:
				start := time.Now()
				if err := r.dispatchEvent(ctx, session, msg); err != nil {
					logging.L(ctx).Debug("event rejected", logging.String("event", msg.Event), logging.Err(err))
					r.obs.RecordError("event")
					r.sendReply(session, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
				} else {
					r.renderAndSendDiff(ctx, session)
				}
				r.obs.EventHandled(msg.Event, time.Since(start))
			}

		case info := <-infoCh:
			session.UpdateActivity()
			if err := session.Component.HandleInfo(ctx, info); err != nil {
				logging.L(ctx).Warn("info handler failed", logging.Err(err))
				r.obs.RecordError("info")
				continue
			}
			r.renderAndSendDiff(ctx, session)

		case <-closeCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleJoin mounts the component and replies with the full render.
func (r *Router) handleJoin(ctx context.Context, session *LiveViewSession, msg protocol.Message) {
	component := session.Component

	session.SetJoinRef(msg.JoinRef)

	if !session.IsMounted() {
		mountCtx, cancel := context.WithTimeout(ctx, r.config.Timeouts.ComponentMount)
		err := component.Mount(mountCtx, session.Params, session.Session)
		cancel()
		if err != nil {
			r.obs.RecordError("mount")
			r.sendReply(session, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
			return
		}
		session.SetMounted(true)
	}

	html, err := r.render(ctx, component)
	if err != nil {
		r.sendReply(session, protocol.ErrorReply(msg.Ref, msg.Topic, err.Error()))
		return
	}

	// Later diffs are computed against what the client now has.
	textSlots, htmlSlots := extractSlotsOptimized(html)
	session.SetSlotHashes(hashSlots(textSlots, htmlSlots))
	if a := core.AssignsOf(component); a != nil {
		a.Flush()
	}

	r.sendReply(session, protocol.OkReply(msg.Ref, msg.Topic, map[string]any{
		"rendered": map[string]any{
			"s": []string{html},
		},
	}))
}

// dispatchEvent hands a client event to the component.
func (r *Router) dispatchEvent(ctx context.Context, session *LiveViewSession, msg protocol.Message) error {
	if !session.IsMounted() {
		return ErrNotJoined
	}

	payload := msg.Payload
	if payload == nil {
		payload = make(map[string]any)
	}

	eventCtx, cancel := context.WithTimeout(ctx, r.config.Timeouts.ComponentEvent)
	defer cancel()

	return session.Component.HandleEvent(eventCtx, msg.Event, payload)
}

func (r *Router) render(ctx context.Context, component core.Component) (string, error) {
	start := time.Now()

	renderer := component.Render(ctx)
	if renderer == nil {
		return "", ErrNilRenderer
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := renderer.Render(ctx, buf); err != nil {
		r.obs.RecordError("render")
		return "", err
	}

	r.obs.RecordRender(time.Since(start), 0)
	return buf.String(), nil
}

// renderAndSendDiff renders the component and pushes the changed slots.
// Components that keep their render state in assigns are not rendered when
// none of it changed.
func (r *Router) renderAndSendDiff(ctx context.Context, session *LiveViewSession) {
	assigns := core.AssignsOf(session.Component)
	if assigns != nil && !assigns.Changed() {
		return
	}

	html, err := r.render(ctx, session.Component)
	if err != nil {
		logging.L(ctx).Error("render failed", logging.Err(err))
		return
	}

	payload := r.buildDiffPayload(session, html)
	if assigns != nil {
		logging.L(ctx).Debug("rendered", logging.Any("changed", assigns.Flush()))
	}

	if payload.IsEmpty() {
		return
	}

	if err := session.Socket.SendDiff(payload); err != nil {
		logging.L(ctx).Debug("diff not delivered", logging.Err(err))
		return
	}
	r.obs.RecordRender(0, payload.Size())
}

// buildDiffPayload compares slot hashes with the previous render.
func (r *Router) buildDiffPayload(session *LiveViewSession, html string) *core.DiffPayload {
	version := session.NextVersion()

	payload := &core.DiffPayload{
		Version:   version,
		Slots:     make(map[string]string),
		HTMLSlots: make(map[string]string),
	}

	textSlots, htmlSlots := extractSlotsOptimized(html)
	if len(textSlots) == 0 && len(htmlSlots) == 0 {
		payload.Full = html
		return payload
	}

	prevHashes := session.GetSlotHashes()
	newHashes := hashSlots(textSlots, htmlSlots)

	for id, content := range textSlots {
		if prev, ok := prevHashes[id]; !ok || prev != newHashes[id] {
			payload.Slots[id] = content
		}
	}
	for id, content := range htmlSlots {
		if prev, ok := prevHashes[id]; !ok || prev != newHashes[id] {
			payload.HTMLSlots[id] = content
		}
	}

	session.SetSlotHashes(newHashes)
	return payload
}

// terminate tears a session down exactly once.
func (r *Router) terminate(session *LiveViewSession, reason core.TerminateReason) {
	session.terminateOnce.Do(func() {
		if session.cancel != nil {
			session.cancel()
		}

		ctx := context.Background()
		if session.IsMounted() {
			if err := session.Component.Terminate(ctx, reason); err != nil {
				r.logger.Debug("terminate failed", logging.String("socket", session.SocketID), logging.Err(err))
			}
		}

		r.sessionManager.Remove(session.ID)
		r.socketManager.Remove(session.SocketID)
		if r.conns != nil && session.ClientIP != "" {
			r.conns.Release(session.ClientIP)
		}
		if r.events != nil {
			r.events.Forget(session.SocketID)
		}
		r.obs.ConnectionClosed()

		// The close handshake can wait on an unresponsive peer, so it runs
		// after every slot this session held has been given back.
		if session.Socket != nil {
			session.Socket.Close()
		}
		r.logger.Debug("live session closed", logging.String("socket", session.SocketID), logging.String("reason", reason.String()))
	})
}

func (r *Router) sendReply(session *LiveViewSession, msg protocol.Message) {
	if err := session.Transport.Send(msg); err != nil {
		r.logger.Debug("reply not delivered", logging.String("socket", session.SocketID), logging.Err(err))
	}
}

// extractSlotsOptimized extracts data-slot content in a single pass.
// Slots whose content contains markup are returned as HTML slots.
func extractSlotsOptimized(html string) (textSlots, htmlSlots map[string]string) {
	textSlots = make(map[string]string)
	htmlSlots = make(map[string]string)

	const marker = `data-slot="`
	markerLen := len(marker)
	htmlLen := len(html)
	pos := 0

	for pos < htmlLen {
		idx := strings.Index(html[pos:], marker)
		if idx == -1 {
			break
		}

		slotStart := pos + idx + markerLen

		slotEnd := strings.IndexByte(html[slotStart:], '"')
		if slotEnd == -1 {
			pos = slotStart
			continue
		}

		slotID := html[slotStart : slotStart+slotEnd]

		tagStart := pos + idx
		for tagStart > 0 && html[tagStart] != '<' {
			tagStart--
		}

		tagNameEnd := tagStart + 1
		for tagNameEnd < htmlLen && html[tagNameEnd] != ' ' && html[tagNameEnd] != '>' && html[tagNameEnd] != '/' {
			tagNameEnd++
		}
		tagName := html[tagStart+1 : tagNameEnd]

		closeAngle := strings.IndexByte(html[slotStart+slotEnd:], '>')
		if closeAngle == -1 {
			pos = slotStart + slotEnd
			continue
		}

		contentStart := slotStart + slotEnd + closeAngle + 1

		openTag := "<" + tagName
		closeTag := "</" + tagName
		openTagLen := len(openTag)
		closeTagLen := len(closeTag)

		depth := 1
		searchPos := contentStart
		contentEnd := -1

		for depth > 0 && searchPos < htmlLen {
			nextOpen := strings.Index(html[searchPos:], openTag)
			nextClose := strings.Index(html[searchPos:], closeTag)

			if nextClose == -1 {
				break
			}

			if nextOpen != -1 {
				nextOpen += searchPos
			} else {
				nextOpen = htmlLen
			}
			nextClose += searchPos

			if nextOpen < nextClose {
				afterOpen := nextOpen + openTagLen
				if afterOpen < htmlLen {
					switch html[afterOpen] {
					case ' ', '>', '/', '\t', '\n':
						depth++
					}
				}
				searchPos = nextOpen + openTagLen
			} else {
				depth--
				if depth == 0 {
					contentEnd = nextClose
				}
				searchPos = nextClose + closeTagLen
			}
		}

		if contentEnd != -1 {
			content := strings.TrimSpace(html[contentStart:contentEnd])
			if strings.ContainsAny(content, "<>") {
				htmlSlots[slotID] = content
			} else {
				textSlots[slotID] = content
			}
		}

		pos = searchPos
	}

	return textSlots, htmlSlots
}

func hashSlots(textSlots, htmlSlots map[string]string) map[string]uint64 {
	hashes := make(map[string]uint64, len(textSlots)+len(htmlSlots))
	for id, content := range textSlots {
		hashes[id] = hashSlotContent(content)
	}
	for id, content := range htmlSlots {
		hashes[id] = hashSlotContent(content)
	}
	return hashes
}

// hashSlotContent computes the FNV-64a hash of a slot.
func hashSlotContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}

// extractSession collects cookie values for Mount.
func extractSession(req *http.Request) core.Session {
	session := make(core.Session)
	for _, cookie := range req.Cookies() {
		session["cookie:"+cookie.Name] = cookie.Value
	}
	return session
}

// extractParams extracts query parameters.
func extractParams(req *http.Request) core.Params {
	params := make(core.Params)
	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

// isWebSocketRequest checks if this is a websocket upgrade request.
func isWebSocketRequest(req *http.Request) bool {
	return strings.Contains(strings.ToLower(req.Header.Get("Upgrade")), "websocket")
}
