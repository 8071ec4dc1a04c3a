// Package livetest drives live components in tests without a browser or
// websocket. Info messages posted with Socket.SendInfo are queued on a real
// socket and delivered when the test asks for them, the way the session
// loop would.
package livetest

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hamvadakara/hammeet/pkg/core"
)

// Event is a client event pushed through the harness.
type Event struct {
	Name    string
	Payload map[string]any
}

// View is a mounted component under test.
type View struct {
	t         testing.TB
	component core.Component
	transport *MockTransport
	socket    *core.Socket
	params    core.Params
	session   core.Session
	rendered  string
	events    []Event
}

// MountOption configures the test mount.
type MountOption func(*View)

// WithParams sets mount parameters.
func WithParams(params core.Params) MountOption {
	return func(v *View) {
		v.params = params
	}
}

// WithSession sets session data.
func WithSession(session core.Session) MountOption {
	return func(v *View) {
		v.session = session
	}
}

// Mount attaches a socket backed by a mock transport, mounts the component
// and renders it. The component is terminated when the test ends.
func Mount(t testing.TB, comp core.Component, opts ...MountOption) *View {
	t.Helper()

	transport := NewMockTransport()
	v := &View{
		t:         t,
		component: comp,
		transport: transport,
		socket:    core.NewSocket(transport.ID, transport),
		params:    core.Params{},
		session:   core.Session{},
	}
	for _, opt := range opts {
		opt(v)
	}

	if setter, ok := comp.(interface{ SetSocket(*core.Socket) }); ok {
		setter.SetSocket(v.socket)
	}

	if err := comp.Mount(v.context(), v.params, v.session); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	t.Cleanup(v.Close)

	v.render()
	return v
}

func (v *View) context() context.Context {
	return context.Background()
}

// Push sends an event and re-renders. A handler error fails the test.
func (v *View) Push(name string, payload map[string]any) *View {
	v.t.Helper()

	if err := v.PushErr(name, payload); err != nil {
		v.t.Errorf("HandleEvent(%q) failed: %v", name, err)
	}
	return v
}

// PushErr sends an event and returns the handler error. The view is
// re-rendered only on success, as the session loop does.
func (v *View) PushErr(name string, payload map[string]any) error {
	v.t.Helper()

	if payload == nil {
		payload = map[string]any{}
	}
	v.events = append(v.events, Event{Name: name, Payload: payload})

	if err := v.component.HandleEvent(v.context(), name, payload); err != nil {
		return err
	}
	v.render()
	return nil
}

// Click sends a click event with optional key/value pairs.
func (v *View) Click(event string, kv ...string) *View {
	v.t.Helper()

	payload := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		payload[kv[i]] = kv[i+1]
	}
	return v.Push(event, payload)
}

// Change sends an input change event carrying the field name and value.
func (v *View) Change(event, name, value string) *View {
	v.t.Helper()
	return v.Push(event, map[string]any{"name": name, "value": value})
}

// Submit sends a form submission with the given field values.
func (v *View) Submit(event string, data map[string]string) *View {
	v.t.Helper()

	payload := make(map[string]any, len(data))
	for k, val := range data {
		payload[k] = val
	}
	return v.Push(event, payload)
}

// SendInfo delivers msg to HandleInfo directly and re-renders.
func (v *View) SendInfo(msg any) *View {
	v.t.Helper()

	if err := v.component.HandleInfo(v.context(), msg); err != nil {
		v.t.Errorf("HandleInfo failed: %v", err)
		return v
	}
	v.render()
	return v
}

// AwaitInfo waits for the component to post an info message to its socket,
// delivers it and returns the message. The test fails on timeout.
func (v *View) AwaitInfo(timeout time.Duration) any {
	v.t.Helper()

	select {
	case msg := <-v.socket.Info():
		v.SendInfo(msg)
		return msg
	case <-time.After(timeout):
		v.t.Fatalf("no info message within %s", timeout)
		return nil
	}
}

// AssertNoInfo fails if an info message is posted within wait.
func (v *View) AssertNoInfo(wait time.Duration) *View {
	v.t.Helper()

	select {
	case msg := <-v.socket.Info():
		v.t.Errorf("unexpected info message: %#v", msg)
	case <-time.After(wait):
	}
	return v
}

func (v *View) render() {
	v.t.Helper()

	ctx := v.context()
	renderer := v.component.Render(ctx)
	if renderer == nil {
		v.t.Fatalf("Render returned nil")
	}

	var buf bytes.Buffer
	if err := renderer.Render(ctx, &buf); err != nil {
		v.t.Fatalf("Render failed: %v", err)
	}
	v.rendered = buf.String()
}

// Rendered returns the current rendered HTML.
func (v *View) Rendered() string {
	return v.rendered
}

// Slot returns the inner content of the first element with data-slot=id,
// up to its first closing tag. It is meant for text slots.
func (v *View) Slot(id string) string {
	marker := `data-slot="` + id + `"`
	i := strings.Index(v.rendered, marker)
	if i < 0 {
		return ""
	}
	rest := v.rendered[i:]
	start := strings.IndexByte(rest, '>')
	if start < 0 {
		return ""
	}
	rest = rest[start+1:]
	end := strings.Index(rest, "</")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// AssertText verifies the rendered output contains text.
func (v *View) AssertText(text string) *View {
	v.t.Helper()

	if !strings.Contains(v.rendered, text) {
		v.t.Errorf("Text not found: %q\nRendered HTML:\n%s", text, v.rendered)
	}
	return v
}

// AssertNoText verifies the rendered output does not contain text.
func (v *View) AssertNoText(text string) *View {
	v.t.Helper()

	if strings.Contains(v.rendered, text) {
		v.t.Errorf("Text should not exist: %q", text)
	}
	return v
}

// Events returns all events that were pushed.
func (v *View) Events() []Event {
	return v.events
}

// Socket returns the socket given to the component.
func (v *View) Socket() *core.Socket {
	return v.socket
}

// Transport returns the mock transport behind the socket.
func (v *View) Transport() *MockTransport {
	return v.transport
}

// Component returns the component under test.
func (v *View) Component() core.Component {
	return v.component
}

// Close terminates the component and closes its socket. It is safe to call
// more than once.
func (v *View) Close() {
	if v.socket == nil {
		return
	}
	if err := v.component.Terminate(context.Background(), core.TerminateNormal); err != nil {
		v.t.Errorf("Terminate failed: %v", err)
	}
	v.socket.Close()
	v.socket = nil
}
