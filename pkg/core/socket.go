package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Common socket errors.
var (
	ErrSocketClosed   = errors.New("socket is closed")
	ErrSendFailed     = errors.New("failed to send message")
	ErrInvalidMessage = errors.New("invalid message format")
)

// infoQueueSize is how many info messages may wait for the session loop
// before SendInfo blocks.
const infoQueueSize = 32

// Socket represents a live connection to a client.
// It provides methods for sending messages, posting server-side info
// messages to the owning component, and tracking connection state.
type Socket struct {
	id string

	connected   bool
	connectedAt time.Time

	// Unix nanoseconds, written from both the read loop and info senders.
	lastActivity atomic.Int64

	transport Transport

	// infoCh carries messages for Component.HandleInfo; the session loop
	// drains it so info and client events are handled one at a time.
	infoCh    chan any
	closeCh   chan struct{}
	closeOnce sync.Once

	mu sync.RWMutex
}

// Transport is the interface for underlying connection transports.
type Transport interface {
	Send(msg Message) error
	Close() error
	IsConnected() bool
}

// Message represents a message sent over the socket.
type Message struct {
	Ref     string         `json:"ref,omitempty"`
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// NewSocket creates a new socket with the given ID and transport.
func NewSocket(id string, transport Transport) *Socket {
	now := time.Now()
	s := &Socket{
		id:          id,
		connected:   true,
		connectedAt: now,
		transport:   transport,
		infoCh:      make(chan any, infoQueueSize),
		closeCh:     make(chan struct{}),
	}
	s.lastActivity.Store(now.UnixNano())
	return s
}

// ID returns the socket's unique identifier.
func (s *Socket) ID() string {
	return s.id
}

// IsConnected returns true if the socket is connected.
func (s *Socket) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected && s.transport != nil && s.transport.IsConnected()
}

// ConnectedAt returns when the socket connected.
func (s *Socket) ConnectedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectedAt
}

// LastActivity returns the time of last activity.
func (s *Socket) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

// UpdateActivity updates the last activity timestamp.
func (s *Socket) UpdateActivity() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// Send sends a message to the client.
// Protected against a race with Close() by verifying transport state.
func (s *Socket) Send(msg Message) error {
	s.mu.RLock()
	connected := s.connected
	transport := s.transport
	s.mu.RUnlock()

	if !connected || transport == nil {
		return ErrSocketClosed
	}
	if !transport.IsConnected() {
		return ErrSocketClosed
	}

	s.lastActivity.Store(time.Now().UnixNano())

	if err := transport.Send(msg); err != nil {
		s.mu.RLock()
		stillConnected := s.connected
		s.mu.RUnlock()
		if !stillConnected {
			return ErrSocketClosed
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	return nil
}

// Push sends an event to the client.
func (s *Socket) Push(event string, payload map[string]any) error {
	return s.Send(Message{
		Topic:   "lv:" + s.id,
		Event:   event,
		Payload: payload,
	})
}

// SendInfo posts msg to the owning component. The message is delivered to
// HandleInfo from the session loop, never concurrently with HandleEvent.
// It waits while the queue is full and gives up only when the socket
// closes, so it must not be called from the session loop itself.
func (s *Socket) SendInfo(msg any) error {
	select {
	case <-s.closeCh:
		return ErrSocketClosed
	default:
	}

	select {
	case s.infoCh <- msg:
		s.UpdateActivity()
		return nil
	case <-s.closeCh:
		return ErrSocketClosed
	}
}

// Info returns the channel of pending info messages.
func (s *Socket) Info() <-chan any {
	return s.infoCh
}

// Done is closed when the socket is closed.
func (s *Socket) Done() <-chan struct{} {
	return s.closeCh
}

// DiffPayload is the diff format sent to clients.
// Text slots (s) replace textContent, HTML slots (h) replace innerHTML and
// Full (f) replaces the whole live root.
type DiffPayload struct {
	Version   uint64            `json:"v"`
	Slots     map[string]string `json:"s,omitempty"`
	HTMLSlots map[string]string `json:"h,omitempty"`
	Full      string            `json:"f,omitempty"`
}

// IsEmpty returns true if the payload has no changes.
func (d *DiffPayload) IsEmpty() bool {
	return len(d.Slots) == 0 &&
		len(d.HTMLSlots) == 0 &&
		d.Full == ""
}

// Size returns the total size of the payload in bytes.
func (d *DiffPayload) Size() int {
	size := 0
	for _, content := range d.Slots {
		size += len(content)
	}
	for _, content := range d.HTMLSlots {
		size += len(content)
	}
	return size + len(d.Full)
}

// SendDiff sends a diff payload to the client.
func (s *Socket) SendDiff(payload *DiffPayload) error {
	if payload == nil || payload.IsEmpty() {
		return nil
	}

	return s.Push("diff", map[string]any{
		"v": payload.Version,
		"s": payload.Slots,
		"h": payload.HTMLSlots,
		"f": payload.Full,
	})
}

// Close closes the socket connection. Pending info messages are dropped.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.connected = false
	transport := s.transport
	s.mu.Unlock()

	s.closeOnce.Do(func() { close(s.closeCh) })

	if transport != nil {
		return transport.Close()
	}
	return nil
}

// SocketManager manages all active sockets.
type SocketManager struct {
	sockets map[string]*Socket
	mu      sync.RWMutex
}

// NewSocketManager creates a new socket manager.
func NewSocketManager() *SocketManager {
	return &SocketManager{
		sockets: make(map[string]*Socket),
	}
}

// Add registers a socket.
func (sm *SocketManager) Add(socket *Socket) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sockets[socket.ID()] = socket
}

// Remove unregisters a socket.
func (sm *SocketManager) Remove(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sockets, id)
}

// Get retrieves a socket by ID.
func (sm *SocketManager) Get(id string) (*Socket, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sockets[id]
	return s, ok
}

// Count returns the number of active sockets.
func (sm *SocketManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sockets)
}

// CloseAll closes every socket and empties the manager.
func (sm *SocketManager) CloseAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for id, s := range sm.sockets {
		s.Close()
		delete(sm.sockets, id)
	}
}
