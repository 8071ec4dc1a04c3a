package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(WithJSON(), WithOutput(&buf))

	logger.With(String("session", "abc")).Info("registration submitted", Int("errors", 0))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "registration submitted", entry["msg"])
	assert.Equal(t, "abc", entry["session"])
	assert.Equal(t, float64(0), entry["errors"])
}

func TestSlogLogger_TextLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(WithOutput(&buf), WithLevel(slog.LevelWarn))

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("payment failed", String("reason", "declined"))
	assert.Contains(t, buf.String(), "payment failed")
	assert.Contains(t, buf.String(), "declined")
}

func TestLoggerFromContext(t *testing.T) {
	assert.Nil(t, LoggerFromContext(context.Background()))
	assert.Equal(t, DefaultLogger, L(context.Background()))

	ctx := ContextWithLogger(context.Background(), NopLogger{})
	assert.Equal(t, NopLogger{}, L(ctx))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(WithJSON(), WithOutput(&buf), WithLevel(slog.LevelDebug))

	var inner Logger
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = LoggerFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, inner)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"status":418`)
}
