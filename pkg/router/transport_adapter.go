package router

import (
	"github.com/hamvadakara/hammeet/pkg/core"
	"github.com/hamvadakara/hammeet/pkg/protocol"
	"github.com/hamvadakara/hammeet/pkg/transport"
)

// TransportAdapter lets a core.Socket push through a websocket transport.
type TransportAdapter struct {
	ws *transport.WebSocketTransport
}

// NewTransportAdapter creates a new adapter.
func NewTransportAdapter(ws *transport.WebSocketTransport) *TransportAdapter {
	return &TransportAdapter{ws: ws}
}

// Send converts msg to a protocol frame and queues it.
func (a *TransportAdapter) Send(msg core.Message) error {
	return a.ws.Send(protocol.Message{
		Ref:     msg.Ref,
		Topic:   msg.Topic,
		Event:   msg.Event,
		Payload: msg.Payload,
	})
}

// Close closes the transport.
func (a *TransportAdapter) Close() error {
	return a.ws.Close()
}

// IsConnected reports whether the transport is connected.
func (a *TransportAdapter) IsConnected() bool {
	return a.ws.IsConnected()
}
