// Package protocol defines the websocket wire protocol between the client
// script and live sessions.
package protocol

// Reserved event names.
const (
	EventJoin      = "phx_join"
	EventLeave     = "phx_leave"
	EventReply     = "phx_reply"
	EventHeartbeat = "heartbeat"
	EventDiff      = "diff"
)

// Reply statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Message represents a protocol frame exchanged between client and server.
type Message struct {
	// Ref is a correlation ID for request/response matching
	Ref string `json:"ref,omitempty" msgpack:"ref,omitempty"`

	// JoinRef is the join reference for the channel
	JoinRef string `json:"join_ref,omitempty" msgpack:"join_ref,omitempty"`

	// Topic is the channel this message belongs to (e.g., "lv:socket-id")
	Topic string `json:"topic" msgpack:"topic"`

	// Event is the specific event name (e.g., "submit", "pay")
	Event string `json:"event" msgpack:"event"`

	// Payload contains the message data
	Payload map[string]any `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// GetPayloadString gets a string value from the payload.
func (m *Message) GetPayloadString(key string) string {
	if m.Payload == nil {
		return ""
	}
	if v, ok := m.Payload[key].(string); ok {
		return v
	}
	return ""
}

// IsHeartbeat checks if this is a heartbeat message.
func (m *Message) IsHeartbeat() bool {
	return m.Event == EventHeartbeat || m.Event == "phx_heartbeat"
}

// IsControl reports whether the event is handled by the runtime rather than
// dispatched to a component.
func (m *Message) IsControl() bool {
	switch m.Event {
	case EventJoin, EventLeave, EventReply:
		return true
	}
	return m.IsHeartbeat()
}

// ReplyMessage creates a reply to ref.
func ReplyMessage(ref, topic, status string, response map[string]any) Message {
	return Message{
		Ref:   ref,
		Topic: topic,
		Event: EventReply,
		Payload: map[string]any{
			"status":   status,
			"response": response,
		},
	}
}

// OkReply creates a successful reply.
func OkReply(ref, topic string, response map[string]any) Message {
	return ReplyMessage(ref, topic, StatusOK, response)
}

// ErrorReply creates an error reply.
func ErrorReply(ref, topic, reason string) Message {
	return ReplyMessage(ref, topic, StatusError, map[string]any{"reason": reason})
}
