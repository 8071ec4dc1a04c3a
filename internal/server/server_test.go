package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamvadakara/hammeet/internal/config"
	"github.com/hamvadakara/hammeet/internal/registration"
	"github.com/hamvadakara/hammeet/pkg/protocol"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	v := config.New()
	v.Set("payment.delay", 10*time.Millisecond)
	v.Set("server.address", "127.0.0.1:0")
	v.Set("timeouts.shutdown", 2*time.Second)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s, err := New(testConfig(t), WithVersion("test"))
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_Page(t *testing.T) {
	_, srv := newTestServer(t)

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "connect-src 'self' ws: wss:")
	assert.Contains(t, body, "HAM MEET Vadakara 2026")
	assert.Contains(t, body, `src="/_live/hammeet.js"`)

	resp, _ = get(t, srv.URL+"/favicon.ico")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Script(t *testing.T) {
	_, srv := newTestServer(t)

	resp, body := get(t, srv.URL+"/_live/hammeet.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "phx_join")
}

func TestServer_Health(t *testing.T) {
	_, srv := newTestServer(t)

	resp, body := get(t, srv.URL+PathHealth)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &report))
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "test", report.Version)
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	ref  int
}

func dial(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(event string, payload map[string]any) {
	c.t.Helper()
	c.ref++
	data, err := json.Marshal(protocol.Message{Ref: fmt.Sprint(c.ref), Topic: "lv:page", Event: event, Payload: payload})
	require.NoError(c.t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(c.t, c.conn.Write(ctx, websocket.MessageText, data))
}

func (c *wsClient) read() protocol.Message {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := c.conn.Read(ctx)
	require.NoError(c.t, err)

	var msg protocol.Message
	require.NoError(c.t, json.Unmarshal(data, &msg))
	return msg
}

func TestServer_RegistrationOverWebsocket(t *testing.T) {
	s, srv := newTestServer(t)
	c := dial(t, srv)

	c.send(protocol.EventJoin, nil)
	reply := c.read()
	require.Equal(t, protocol.StatusOK, reply.Payload["status"])

	c.send("submit", map[string]any{
		registration.FieldName:     "Anand",
		registration.FieldCallSign: "vu2abc",
		registration.FieldMobile:   "9876543210",
		registration.FieldAddress:  "Vadakara, Kerala",
	})
	diff := c.read()
	require.Equal(t, protocol.EventDiff, diff.Event)
	assert.Contains(t, fmt.Sprint(diff.Payload), "₹1,000")

	c.send("pay", nil)
	diff = c.read()
	require.Equal(t, protocol.EventDiff, diff.Event)
	assert.Contains(t, fmt.Sprint(diff.Payload), "Processing...")

	diff = c.read()
	require.Equal(t, protocol.EventDiff, diff.Event)
	assert.Contains(t, fmt.Sprint(diff.Payload), "Transaction ID: DEMO-")

	_, body := get(t, srv.URL+PathMetrics)
	assert.Contains(t, body, `hammeet_payment_attempts_total{result="success"} 1`)
	assert.Contains(t, body, `hammeet_registration_transitions_total{from="form",to="payment"} 1`)
	assert.Contains(t, body, "hammeet_live_connections_active 1")
	assert.Equal(t, 1, s.Router().SessionManager().Count())
}

func TestServer_ValidationMetrics(t *testing.T) {
	_, srv := newTestServer(t)
	c := dial(t, srv)

	c.send(protocol.EventJoin, nil)
	c.read()

	c.send("submit", map[string]any{registration.FieldMobile: "12345"})
	diff := c.read()
	require.Equal(t, protocol.EventDiff, diff.Event)

	_, body := get(t, srv.URL+PathMetrics)
	for _, field := range []string{"name", "callSign", "mobile", "address"} {
		assert.Contains(t, body, fmt.Sprintf(`hammeet_registration_validation_failures_total{field=%q} 1`, field))
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	s, err := New(testConfig(t))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + PathHealth)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}
