// Package config loads server settings.
// Precedence: flags > HAMMEET_* env > ./hammeet.{yaml,toml} > user config > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hamvadakara/hammeet/internal/event"
	"github.com/hamvadakara/hammeet/internal/payment"
	"github.com/hamvadakara/hammeet/pkg/core"
	"github.com/hamvadakara/hammeet/pkg/retry"
)

const (
	EnvPrefix = "HAMMEET"
	FileName  = "hammeet"
	AppDir    = "hammeet"
)

// Config is the resolved configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Payment  PaymentConfig
	Event    EventConfig
	Timeouts core.TimeoutConfig
}

type ServerConfig struct {
	Address        string
	Dev            bool
	AllowedOrigins []string
	Codec          string
	MaxSessions    int
	MaxConnsPerIP  int
	// EventRate is the sustained events per second one session may send.
	EventRate  float64
	EventBurst int
	// BaseURL is the public URL used in page metadata.
	BaseURL string
}

type LogConfig struct {
	Level  string
	Format string
}

type PaymentConfig struct {
	Delay time.Duration
	Fee   int64
	// FailFirst makes the demo gateway fail the first n charges. Negative fails every charge.
	FailFirst  int
	MaxRetries int
}

// EventConfig overrides parts of the built-in event details.
type EventConfig struct {
	Title string
	Email string
	Phone string
}

// New returns a viper instance with defaults and env binding applied.
func New() *viper.Viper {
	v := viper.New()

	rt := core.DefaultConfig()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.dev", false)
	v.SetDefault("server.allowed-origins", []string{})
	v.SetDefault("server.codec", rt.Codec)
	v.SetDefault("server.max-sessions", rt.MaxSessions)
	v.SetDefault("server.max-conns-per-ip", 20)
	v.SetDefault("server.event-rate", 20.0)
	v.SetDefault("server.event-burst", 40)
	v.SetDefault("server.base-url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("payment.delay", 1500*time.Millisecond)
	v.SetDefault("payment.fee", event.Default().Fee)
	v.SetDefault("payment.fail-first", 0)
	v.SetDefault("payment.max-retries", 0)

	v.SetDefault("event.title", "")
	v.SetDefault("event.email", "")
	v.SetDefault("event.phone", "")

	v.SetDefault("timeouts.mount", rt.Timeouts.ComponentMount)
	v.SetDefault("timeouts.event", rt.Timeouts.ComponentEvent)
	v.SetDefault("timeouts.ws-read", rt.Timeouts.WebSocketRead)
	v.SetDefault("timeouts.ws-write", rt.Timeouts.WebSocketWrite)
	v.SetDefault("timeouts.session-cleanup", rt.Timeouts.SessionCleanup)
	v.SetDefault("timeouts.session-ttl", rt.Timeouts.SessionTTL)
	v.SetDefault("timeouts.shutdown", rt.Timeouts.GracefulShutdown)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadFiles loads an explicit config file, or searches the user config
// directory and then the working directory. Missing files are not an error.
func ReadFiles(v *viper.Viper, explicit string) error {
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", explicit, err)
		}
		return nil
	}

	v.SetConfigName(FileName)
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppDir))
	}
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return fmt.Errorf("read user config: %w", err)
	}

	local := viper.New()
	local.SetConfigName(FileName)
	local.AddConfigPath(".")
	if err := local.ReadInConfig(); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("read local config: %w", err)
	}
	if err := v.MergeConfigMap(local.AllSettings()); err != nil {
		return fmt.Errorf("merge local config: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// Flags maps command-line flag names to config keys.
var Flags = map[string]string{
	"addr":          "server.address",
	"dev":           "server.dev",
	"codec":         "server.codec",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"payment-delay": "payment.delay",
	"fee":           "payment.fee",
	"fail-first":    "payment.fail-first",
}

// BindFlags binds every known flag present in flags.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range Flags {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load resolves and validates the configuration.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Address:        v.GetString("server.address"),
			Dev:            v.GetBool("server.dev"),
			AllowedOrigins: v.GetStringSlice("server.allowed-origins"),
			Codec:          v.GetString("server.codec"),
			MaxSessions:    v.GetInt("server.max-sessions"),
			MaxConnsPerIP:  v.GetInt("server.max-conns-per-ip"),
			EventRate:      v.GetFloat64("server.event-rate"),
			EventBurst:     v.GetInt("server.event-burst"),
			BaseURL:        v.GetString("server.base-url"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Payment: PaymentConfig{
			Delay:      v.GetDuration("payment.delay"),
			Fee:        v.GetInt64("payment.fee"),
			FailFirst:  v.GetInt("payment.fail-first"),
			MaxRetries: v.GetInt("payment.max-retries"),
		},
		Event: EventConfig{
			Title: v.GetString("event.title"),
			Email: v.GetString("event.email"),
			Phone: v.GetString("event.phone"),
		},
		Timeouts: core.TimeoutConfig{
			ComponentMount:   v.GetDuration("timeouts.mount"),
			ComponentEvent:   v.GetDuration("timeouts.event"),
			WebSocketRead:    v.GetDuration("timeouts.ws-read"),
			WebSocketWrite:   v.GetDuration("timeouts.ws-write"),
			SessionCleanup:   v.GetDuration("timeouts.session-cleanup"),
			SessionTTL:       v.GetDuration("timeouts.session-ttl"),
			GracefulShutdown: v.GetDuration("timeouts.shutdown"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is empty"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	if c.Server.EventRate > 0 && c.Server.EventBurst < 1 {
		errs = append(errs, errors.New("server.event-burst must be at least 1"))
	}
	if c.Payment.Delay < 0 {
		errs = append(errs, errors.New("payment.delay must not be negative"))
	}
	if c.Payment.Fee <= 0 {
		errs = append(errs, errors.New("payment.fee must be positive"))
	}
	if c.Payment.MaxRetries < 0 {
		errs = append(errs, errors.New("payment.max-retries must not be negative"))
	}
	if err := c.Core().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Gateway returns the demo payment gateway.
func (p PaymentConfig) Gateway() *payment.DemoGateway {
	opts := []payment.DemoOption{payment.WithDelay(p.Delay)}
	if p.FailFirst != 0 {
		opts = append(opts, payment.WithFailure(p.FailFirst, "card declined", true))
	}
	return payment.NewDemoGateway(opts...)
}

// Policy returns the retry policy for charges.
func (p PaymentConfig) Policy() retry.Policy {
	if p.MaxRetries == 0 {
		return retry.NoRetry()
	}
	pol := retry.DefaultPolicy()
	pol.MaxRetries = p.MaxRetries
	return pol
}

// Core returns the live runtime configuration.
func (c Config) Core() core.Config {
	rt := core.DefaultConfig()
	rt.Timeouts = c.Timeouts
	rt.AllowedOrigins = c.Server.AllowedOrigins
	rt.InsecureDevMode = c.Server.Dev
	rt.Codec = c.Server.Codec
	if c.Server.MaxSessions > 0 {
		rt.MaxSessions = c.Server.MaxSessions
	}
	return rt
}

// Details returns the event details with configured overrides applied.
func (c Config) Details() event.Details {
	d := event.Default()
	if c.Event.Title != "" {
		d.Title = c.Event.Title
	}
	if c.Event.Email != "" {
		d.Email = c.Event.Email
	}
	if c.Event.Phone != "" {
		d.Phone = c.Event.Phone
	}
	if c.Payment.Fee > 0 {
		d.Fee = c.Payment.Fee
	}
	return d
}
