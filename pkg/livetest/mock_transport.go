package livetest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/hamvadakara/hammeet/pkg/core"
)

// MockTransport implements core.Transport and records what was sent.
type MockTransport struct {
	ID string

	mu      sync.Mutex
	sent    []core.Message
	closed  bool
	sendErr error
}

// NewMockTransport creates a connected mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		ID: "test-socket-" + uuid.NewString()[:8],
	}
}

// Send records a sent message.
func (mt *MockTransport) Send(msg core.Message) error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.sendErr != nil {
		return mt.sendErr
	}
	if mt.closed {
		return core.ErrSocketClosed
	}

	mt.sent = append(mt.sent, msg)
	return nil
}

// Close marks the transport as closed.
func (mt *MockTransport) Close() error {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.closed = true
	return nil
}

// IsConnected reports whether Close has not been called.
func (mt *MockTransport) IsConnected() bool {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return !mt.closed
}

// SetError makes every following Send fail with err. Nil clears it.
func (mt *MockTransport) SetError(err error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.sendErr = err
}

// Sent returns a copy of all sent messages.
func (mt *MockTransport) Sent() []core.Message {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make([]core.Message, len(mt.sent))
	copy(out, mt.sent)
	return out
}

// SentEvent reports whether a message with event was sent.
func (mt *MockTransport) SentEvent(event string) bool {
	for _, msg := range mt.Sent() {
		if msg.Event == event {
			return true
		}
	}
	return false
}
