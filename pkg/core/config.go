package core

import (
	"time"
)

// TimeoutConfig configures timeouts for various operations.
type TimeoutConfig struct {
	// ComponentMount is the timeout for component Mount() calls.
	ComponentMount time.Duration

	// ComponentEvent is the timeout for HandleEvent() and HandleInfo() calls.
	ComponentEvent time.Duration

	// WebSocketRead is the read timeout for websocket connections.
	WebSocketRead time.Duration

	// WebSocketWrite is the write timeout for websocket connections.
	WebSocketWrite time.Duration

	// SessionCleanup is the interval for cleaning up inactive sessions.
	SessionCleanup time.Duration

	// SessionTTL is how long an idle session is kept.
	SessionTTL time.Duration

	// GracefulShutdown is the timeout for graceful shutdown.
	GracefulShutdown time.Duration
}

// DefaultTimeoutConfig returns default timeout configuration.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		ComponentMount:   5 * time.Second,
		ComponentEvent:   3 * time.Second,
		WebSocketRead:    60 * time.Second,
		WebSocketWrite:   10 * time.Second,
		SessionCleanup:   5 * time.Minute,
		SessionTTL:       30 * time.Minute,
		GracefulShutdown: 30 * time.Second,
	}
}

// Config combines the live runtime settings.
type Config struct {
	Timeouts TimeoutConfig

	// AllowedOrigins for websocket connections. Empty means same-origin only.
	AllowedOrigins []string

	// InsecureDevMode disables origin checks (ONLY for development!).
	InsecureDevMode bool

	// Codec selects the websocket frame codec: "json" or "msgpack".
	Codec string

	// Resource limits
	MaxMessageSize int64
	MaxSessions    int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeouts:       DefaultTimeoutConfig(),
		Codec:          "json",
		MaxMessageSize: 64 * 1024,
		MaxSessions:    10000,
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.MaxMessageSize <= 0 {
		return ErrInvalidMaxMessageSize
	}
	if c.Codec != "json" && c.Codec != "msgpack" {
		return ErrUnknownCodec
	}
	if c.Timeouts.ComponentEvent <= 0 {
		return ErrInvalidEventTimeout
	}
	return nil
}

// Configuration errors.
var (
	ErrInvalidMaxMessageSize = configError("MaxMessageSize must be positive")
	ErrUnknownCodec          = configError("Codec must be json or msgpack")
	ErrInvalidEventTimeout   = configError("Timeouts.ComponentEvent must be positive")
)

type configError string

func (e configError) Error() string { return string(e) }
