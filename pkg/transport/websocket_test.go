package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamvadakara/hammeet/pkg/protocol"
)

func TestWebSocket_OriginValidation(t *testing.T) {
	tests := []struct {
		name          string
		wsConfig      *WebSocketConfig
		origin        string
		host          string
		expectAllowed bool
	}{
		{
			name:          "same-origin allowed",
			wsConfig:      &WebSocketConfig{},
			origin:        "https://hamvadakara.org",
			host:          "hamvadakara.org",
			expectAllowed: true,
		},
		{
			name:          "no origin allowed",
			wsConfig:      &WebSocketConfig{},
			origin:        "",
			host:          "hamvadakara.org",
			expectAllowed: true,
		},
		{
			name:          "explicit origin allowed",
			wsConfig:      &WebSocketConfig{AllowedOrigins: []string{"https://register.hamvadakara.org"}},
			origin:        "https://register.hamvadakara.org",
			host:          "hamvadakara.org",
			expectAllowed: true,
		},
		{
			name:          "origin not in list blocked",
			wsConfig:      &WebSocketConfig{AllowedOrigins: []string{"https://register.hamvadakara.org"}},
			origin:        "https://attacker.example",
			host:          "hamvadakara.org",
			expectAllowed: false,
		},
		{
			name:          "wildcard allows all",
			wsConfig:      &WebSocketConfig{AllowedOrigins: []string{"*"}},
			origin:        "https://any-site.example",
			host:          "hamvadakara.org",
			expectAllowed: true,
		},
		{
			name:          "insecure dev mode allows all",
			wsConfig:      &WebSocketConfig{InsecureDevMode: true},
			origin:        "https://attacker.example",
			host:          "hamvadakara.org",
			expectAllowed: true,
		},
		{
			name:          "cross-origin blocked by default",
			wsConfig:      &WebSocketConfig{},
			origin:        "https://other-site.example",
			host:          "hamvadakara.org",
			expectAllowed: false,
		},
		{
			name:          "unparseable origin blocked",
			wsConfig:      &WebSocketConfig{},
			origin:        "://bad",
			host:          "hamvadakara.org",
			expectAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewWebSocketTransport(DefaultTransportConfig(), tt.wsConfig)
			assert.Equal(t, tt.expectAllowed, transport.isOriginAllowed(tt.origin, tt.host))
		})
	}
}

func TestWebSocket_RejectsInvalidOrigin(t *testing.T) {
	transport := NewWebSocketTransport(DefaultTransportConfig(), &WebSocketConfig{
		AllowedOrigins: []string{"https://register.hamvadakara.org"},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://attacker.example")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Connection", "Upgrade")
	req.Host = "hamvadakara.org"

	w := httptest.NewRecorder()

	err := transport.Upgrade(w, req)
	assert.ErrorIs(t, err, ErrOriginNotAllowed)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, transport.IsConnected())
}

func TestWebSocket_SendBeforeUpgrade(t *testing.T) {
	transport := NewWebSocketTransport(nil, nil)
	assert.ErrorIs(t, transport.Send(Message{Event: "diff"}), ErrNotConnected)
}

func TestDefaultWebSocketConfig(t *testing.T) {
	config := DefaultWebSocketConfig()
	assert.False(t, config.InsecureDevMode)
	assert.Nil(t, config.AllowedOrigins, "same-origin only by default")
}

func TestBaseTransport_PushMessage(t *testing.T) {
	cfg := DefaultTransportConfig()
	cfg.ReceiveBufferSize = 1
	cfg.Codec = nil
	bt := NewBaseTransport(cfg)
	assert.Equal(t, "json", bt.Config().Codec.Name())

	require.NoError(t, bt.PushMessage(protocol.Message{Event: "submit"}))
	assert.ErrorIs(t, bt.PushMessage(protocol.Message{Event: "pay"}), ErrTransportFull)

	msg := <-bt.Receive()
	assert.Equal(t, "submit", msg.Event)

	require.NoError(t, bt.Close())
	require.NoError(t, bt.Close())
	assert.ErrorIs(t, bt.PushMessage(protocol.Message{Event: "pay"}), ErrConnectionClosed)
}
