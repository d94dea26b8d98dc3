package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the client credentials plus the knobs for CLI output and the callback listener.
type Config struct {
	User           string          `koanf:"user"`
	Password       string          `koanf:"password"`
	Environment    string          `koanf:"environment"`
	BaseURL        string          `koanf:"baseURL"`
	TimeoutSeconds int             `koanf:"timeoutSeconds"`
	RateLimit      RateLimitConfig `koanf:"rateLimit"`
	Logging        LoggingConfig   `koanf:"logging"`
	Output         OutputConfig    `koanf:"output"`
	Callback       CallbackConfig  `koanf:"callback"`
}

// RateLimitConfig paces outbound calls. Zero disables pacing.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requestsPerSecond"`
	Burst             int     `koanf:"burst"`
}

// LoggingConfig expresses log level and format.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// OutputConfig controls how the CLI renders results.
type OutputConfig struct {
	Format          string `koanf:"format"`
	TemplatesFolder string `koanf:"templatesFolder"`
}

// CallbackConfig configures the callback listener started by `serve`.
type CallbackConfig struct {
	Listen    ListenConfig            `koanf:"listen"`
	Store     StoreConfig             `koanf:"store"`
	RateLimit CallbackRateLimitConfig `koanf:"rateLimit"`
}

// ListenConfig instructs the HTTP listener about bind address and port.
type ListenConfig struct {
	Address string `koanf:"address"`
	Port    int    `koanf:"port"`
}

// StoreConfig selects the callback event store.
type StoreConfig struct {
	Backend          string       `koanf:"backend"`
	RetentionSeconds int          `koanf:"retentionSeconds"`
	Valkey           ValkeyConfig `koanf:"valkey"`
}

type ValkeyConfig struct {
	Address  string          `koanf:"address"`
	Username string          `koanf:"username"`
	Password string          `koanf:"password"`
	DB       int             `koanf:"db"`
	TLS      ValkeyTLSConfig `koanf:"tls"`
}

type ValkeyTLSConfig struct {
	Enabled bool   `koanf:"enabled"`
	CAFile  string `koanf:"caFile"`
}

// CallbackRateLimitConfig bounds callbacks per source address. Zero disables the limiter.
type CallbackRateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requestsPerSecond"`
	Burst             int     `koanf:"burst"`
	IdleSeconds       int     `koanf:"idleSeconds"`
}

// Timeout converts TimeoutSeconds into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Retention converts RetentionSeconds into a duration.
func (c StoreConfig) Retention() time.Duration {
	return time.Duration(c.RetentionSeconds) * time.Second
}

// IdleTTL converts IdleSeconds into a duration.
func (c CallbackRateLimitConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleSeconds) * time.Second
}

// Validate rejects values the client or listener could not run with. Credentials are
// checked by the client itself since offline commands do not need them.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config: timeoutSeconds invalid: %d", c.TimeoutSeconds)
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("config: rateLimit invalid: %v/%d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level unsupported: %s", c.Logging.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "json", "text":
	default:
		return fmt.Errorf("config: logging.format unsupported: %s", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Output.Format)) {
	case "", "json", "yaml", "template":
	default:
		return fmt.Errorf("config: output.format unsupported: %s", c.Output.Format)
	}
	if c.Callback.Listen.Port <= 0 || c.Callback.Listen.Port > 65535 {
		return fmt.Errorf("config: callback.listen.port invalid: %d", c.Callback.Listen.Port)
	}
	if c.Callback.Store.RetentionSeconds < 0 {
		return fmt.Errorf("config: callback.store.retentionSeconds invalid: %d", c.Callback.Store.RetentionSeconds)
	}
	backend := strings.TrimSpace(strings.ToLower(c.Callback.Store.Backend))
	switch backend {
	case "", "memory":
	case "valkey":
		if strings.TrimSpace(c.Callback.Store.Valkey.Address) == "" {
			return errors.New("config: callback.store.valkey.address required for valkey backend")
		}
	default:
		return fmt.Errorf("config: callback.store.backend unsupported: %s", c.Callback.Store.Backend)
	}
	rl := c.Callback.RateLimit
	if rl.RequestsPerSecond < 0 || rl.Burst < 0 || rl.IdleSeconds < 0 {
		return fmt.Errorf("config: callback.rateLimit invalid: %v/%d/%d", rl.RequestsPerSecond, rl.Burst, rl.IdleSeconds)
	}
	return nil
}

// DefaultConfig returns the baseline values every other layer overrides.
func DefaultConfig() Config {
	return Config{
		Environment:    "prod",
		TimeoutSeconds: 30,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Output: OutputConfig{
			Format:          "json",
			TemplatesFolder: "./templates",
		},
		Callback: CallbackConfig{
			Listen: ListenConfig{
				Address: "0.0.0.0",
				Port:    8080,
			},
			Store: StoreConfig{
				Backend:          "memory",
				RetentionSeconds: 86400,
			},
			RateLimit: CallbackRateLimitConfig{
				RequestsPerSecond: 5,
				Burst:             20,
				IdleSeconds:       600,
			},
		},
	}
}
