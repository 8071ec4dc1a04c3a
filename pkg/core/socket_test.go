package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTransport implements Transport for testing.
type MockTransport struct {
	connected bool
	messages  []Message
	mu        sync.Mutex
}

func NewMockTransport() *MockTransport {
	return &MockTransport{connected: true}
}

func (m *MockTransport) Send(msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrSocketClosed
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockTransport) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Message, len(m.messages))
	copy(result, m.messages)
	return result
}

func TestNewSocket(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())

	assert.Equal(t, "test-id", socket.ID())
	assert.True(t, socket.IsConnected())
}

func TestSocket_Push(t *testing.T) {
	transport := NewMockTransport()
	socket := NewSocket("abc", transport)

	require.NoError(t, socket.Push("flash", map[string]any{"msg": "hi"}))

	msgs := transport.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "lv:abc", msgs[0].Topic)
	assert.Equal(t, "flash", msgs[0].Event)
}

func TestSocket_Send_Closed(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())
	require.NoError(t, socket.Close())

	err := socket.Send(Message{Event: "x"})
	assert.ErrorIs(t, err, ErrSocketClosed)
	assert.False(t, socket.IsConnected())
}

func TestSocket_SendInfo(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())

	require.NoError(t, socket.SendInfo("tick"))

	select {
	case msg := <-socket.Info():
		assert.Equal(t, "tick", msg)
	case <-time.After(time.Second):
		t.Fatal("info message not delivered")
	}
}

func TestSocket_SendInfo_AfterClose(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())
	require.NoError(t, socket.Close())

	assert.ErrorIs(t, socket.SendInfo("late"), ErrSocketClosed)

	select {
	case <-socket.Done():
	default:
		t.Fatal("Done should be closed after Close")
	}
}

func TestSocket_SendInfo_WaitsWhenFull(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())

	for i := 0; i < infoQueueSize; i++ {
		require.NoError(t, socket.SendInfo(i))
	}

	sent := make(chan error, 1)
	go func() { sent <- socket.SendInfo("result") }()

	select {
	case err := <-sent:
		t.Fatalf("SendInfo returned %v while the queue was full", err)
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 0, <-socket.Info())
	select {
	case err := <-sent:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("SendInfo did not resume after the queue drained")
	}

	for i := 1; i < infoQueueSize; i++ {
		<-socket.Info()
	}
	assert.Equal(t, "result", <-socket.Info())
}

func TestSocket_SendInfo_FullQueueReleasedByClose(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())
	for i := 0; i < infoQueueSize; i++ {
		require.NoError(t, socket.SendInfo(i))
	}

	sent := make(chan error, 1)
	go func() { sent <- socket.SendInfo("result") }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, socket.Close())

	select {
	case err := <-sent:
		assert.ErrorIs(t, err, ErrSocketClosed)
	case <-time.After(time.Second):
		t.Fatal("SendInfo still blocked after Close")
	}
}

func TestSocket_Close_Twice(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())
	require.NoError(t, socket.Close())
	require.NoError(t, socket.Close())
}

func TestSocket_LastActivity_Concurrent(t *testing.T) {
	socket := NewSocket("test-id", NewMockTransport())
	before := socket.LastActivity()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			socket.UpdateActivity()
			_ = socket.LastActivity()
		}()
	}
	wg.Wait()

	assert.False(t, socket.LastActivity().Before(before))
}

func TestSocket_SendDiff(t *testing.T) {
	transport := NewMockTransport()
	socket := NewSocket("test-id", transport)

	require.NoError(t, socket.SendDiff(nil))
	require.NoError(t, socket.SendDiff(&DiffPayload{Version: 1}))
	assert.Empty(t, transport.Messages(), "empty diffs are not sent")

	require.NoError(t, socket.SendDiff(&DiffPayload{
		Version: 2,
		Slots:   map[string]string{"step": "payment"},
	}))

	msgs := transport.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "diff", msgs[0].Event)
	assert.Equal(t, uint64(2), msgs[0].Payload["v"])
}

func TestDiffPayload_Size(t *testing.T) {
	d := &DiffPayload{
		Slots:     map[string]string{"a": "abc"},
		HTMLSlots: map[string]string{"b": "<p></p>"},
		Full:      "xy",
	}
	assert.Equal(t, 12, d.Size())
	assert.False(t, d.IsEmpty())
}

func TestSocketManager_Add_Remove(t *testing.T) {
	sm := NewSocketManager()
	s := NewSocket("one", NewMockTransport())

	sm.Add(s)
	assert.Equal(t, 1, sm.Count())

	got, ok := sm.Get("one")
	require.True(t, ok)
	assert.Same(t, s, got)

	sm.Remove("one")
	assert.Equal(t, 0, sm.Count())
}

func TestSocketManager_CloseAll(t *testing.T) {
	sm := NewSocketManager()
	a := NewSocket("a", NewMockTransport())
	sm.Add(a)
	sm.Add(NewSocket("b", NewMockTransport()))

	sm.CloseAll()
	assert.Equal(t, 0, sm.Count())
	assert.False(t, a.IsConnected())
}

func TestAssigns_ChangeTracking(t *testing.T) {
	a := NewAssigns()
	assert.False(t, a.Changed())

	assert.True(t, a.Set("state", "form"))
	assert.True(t, a.Changed())
	assert.Equal(t, []string{"state"}, a.Flush())
	assert.False(t, a.Changed())

	assert.False(t, a.Set("state", "form"), "same value is not a change")
	assert.False(t, a.Changed())

	a.Set("state", "payment")
	a.Set("processing", true)
	assert.Equal(t, []string{"processing", "state"}, a.Flush())
	assert.Equal(t, "payment", a.GetString("state"))
	assert.Equal(t, true, a.Get("processing"))
	assert.Equal(t, 2, a.Len())
}

func TestAssigns_MapValues(t *testing.T) {
	a := NewAssigns()
	a.Set("errors", map[string]string{"name": "Full name is required", "mobile": "x"})
	a.Flush()

	assert.False(t, a.Set("errors", map[string]string{"mobile": "x", "name": "Full name is required"}))
	assert.True(t, a.Set("errors", map[string]string{}))
}

func TestAssigns_UnencodableAlwaysChanges(t *testing.T) {
	a := NewAssigns()
	ch := make(chan int)
	assert.True(t, a.Set("ch", ch))
	a.Flush()
	assert.True(t, a.Set("ch", ch))
}

type assignsComponent struct {
	BaseComponent
}

func (c *assignsComponent) Render(ctx context.Context) Renderer {
	return StringRenderer(c.Assigns().GetString("state"))
}

func TestAssignsOf(t *testing.T) {
	c := &assignsComponent{}
	assert.Nil(t, AssignsOf(c), "a component with no assigns is always rendered")

	c.Assigns().Set("state", "form")
	assert.Same(t, c.Assigns(), AssignsOf(c))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Codec = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownCodec)

	cfg = DefaultConfig()
	cfg.MaxMessageSize = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidMaxMessageSize)
}
