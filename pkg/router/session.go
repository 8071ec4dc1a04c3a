package router

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamvadakara/hammeet/pkg/core"
	"github.com/hamvadakara/hammeet/pkg/transport"
)

// LiveViewSession binds a websocket connection to a component instance.
type LiveViewSession struct {
	// ID uniquely identifies the session.
	ID string

	// SocketID is the ID of the associated socket.
	SocketID string

	Component core.Component
	Socket    *core.Socket
	Transport *transport.WebSocketTransport

	Params  core.Params
	Session core.Session

	// JoinRef is the join reference sent by the client.
	JoinRef string

	// Topic is "lv:" + SocketID.
	Topic string

	// ClientIP holds the connection slot taken from the limiter, if any.
	ClientIP string

	CreatedAt    time.Time
	LastActivity time.Time

	// Mounted reports whether the component has been mounted.
	Mounted bool

	// Version orders diffs on the client.
	Version uint64

	slotHashes map[string]uint64
	slotMu     sync.RWMutex

	cancel        context.CancelFunc
	terminateOnce sync.Once

	mu sync.RWMutex
}

// NewLiveViewSession creates a new live session.
func NewLiveViewSession(socketID string, comp core.Component, params core.Params, session core.Session) *LiveViewSession {
	now := time.Now()
	return &LiveViewSession{
		ID:           uuid.NewString(),
		SocketID:     socketID,
		Component:    comp,
		Params:       params,
		Session:      session,
		Topic:        "lv:" + socketID,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// GetSlotHashes returns the slot hashes of the last diff.
func (s *LiveViewSession) GetSlotHashes() map[string]uint64 {
	s.slotMu.RLock()
	defer s.slotMu.RUnlock()
	return s.slotHashes
}

// SetSlotHashes stores the slot hashes of the last diff.
func (s *LiveViewSession) SetSlotHashes(hashes map[string]uint64) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	s.slotHashes = hashes
}

// NextVersion increments and returns the diff version.
func (s *LiveViewSession) NextVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Version++
	return s.Version
}

// UpdateActivity refreshes the last activity timestamp.
func (s *LiveViewSession) UpdateActivity() {
	s.mu.Lock()
	s.LastActivity = time.Now()
	s.mu.Unlock()

	if s.Socket != nil {
		s.Socket.UpdateActivity()
	}
}

// GetLastActivity returns the last activity timestamp.
func (s *LiveViewSession) GetLastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastActivity
}

// SetMounted marks the session as mounted.
func (s *LiveViewSession) SetMounted(mounted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Mounted = mounted
}

// IsMounted reports whether the component is mounted.
func (s *LiveViewSession) IsMounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Mounted
}

// SetJoinRef records the join reference.
func (s *LiveViewSession) SetJoinRef(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.JoinRef = ref
}

// GetJoinRef returns the join reference.
func (s *LiveViewSession) GetJoinRef() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.JoinRef
}

// LiveViewSessionManager tracks active live sessions.
type LiveViewSessionManager struct {
	sessions map[string]*LiveViewSession
	bySocket map[string]*LiveViewSession

	// maxSessions caps the number of sessions (0 = unlimited).
	maxSessions int

	// sessionTTL is how long an idle session is kept.
	sessionTTL time.Duration

	mu sync.RWMutex
}

// LiveViewSessionManagerConfig configures the session manager.
type LiveViewSessionManagerConfig struct {
	MaxSessions int
	SessionTTL  time.Duration
}

// DefaultSessionManagerConfig returns the default configuration.
func DefaultSessionManagerConfig() *LiveViewSessionManagerConfig {
	return &LiveViewSessionManagerConfig{
		MaxSessions: 10000,
		SessionTTL:  30 * time.Minute,
	}
}

// NewLiveViewSessionManager creates a manager with default configuration.
func NewLiveViewSessionManager() *LiveViewSessionManager {
	return NewLiveViewSessionManagerWithConfig(DefaultSessionManagerConfig())
}

// NewLiveViewSessionManagerWithConfig creates a manager.
func NewLiveViewSessionManagerWithConfig(config *LiveViewSessionManagerConfig) *LiveViewSessionManager {
	if config == nil {
		config = DefaultSessionManagerConfig()
	}
	return &LiveViewSessionManager{
		sessions:    make(map[string]*LiveViewSession),
		bySocket:    make(map[string]*LiveViewSession),
		maxSessions: config.MaxSessions,
		sessionTTL:  config.SessionTTL,
	}
}

// Create registers a new session, evicting the least recently active one
// when the manager is full.
func (m *LiveViewSessionManager) Create(socketID string, comp core.Component, params core.Params, session core.Session) *LiveViewSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.evictOldestLocked()
	}

	lvSession := NewLiveViewSession(socketID, comp, params, session)
	m.sessions[lvSession.ID] = lvSession
	m.bySocket[socketID] = lvSession

	return lvSession
}

// Get returns a session by ID.
func (m *LiveViewSessionManager) Get(sessionID string) (*LiveViewSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// GetBySocket returns a session by socket ID.
func (m *LiveViewSessionManager) GetBySocket(socketID string) (*LiveViewSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.bySocket[socketID]
	return s, ok
}

// Remove deletes a session.
func (m *LiveViewSessionManager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		delete(m.bySocket, s.SocketID)
		delete(m.sessions, sessionID)
	}
}

// Count returns the number of active sessions.
func (m *LiveViewSessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// All returns every session.
func (m *LiveViewSessionManager) All() []*LiveViewSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*LiveViewSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	return result
}

// Expired returns sessions idle for longer than the TTL. The caller is
// responsible for terminating them.
func (m *LiveViewSessionManager) Expired() []*LiveViewSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var expired []*LiveViewSession
	for _, s := range m.sessions {
		if now.Sub(s.GetLastActivity()) > m.sessionTTL {
			expired = append(expired, s)
		}
	}
	return expired
}

// evictOldestLocked drops the least recently active session. The evicted
// session's loop notices through its closed socket.
func (m *LiveViewSessionManager) evictOldestLocked() {
	var oldest *LiveViewSession

	for _, s := range m.sessions {
		if oldest == nil || s.GetLastActivity().Before(oldest.GetLastActivity()) {
			oldest = s
		}
	}

	if oldest != nil {
		delete(m.bySocket, oldest.SocketID)
		delete(m.sessions, oldest.ID)
		if oldest.Transport != nil {
			oldest.Transport.Close()
		}
	}
}
