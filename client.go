package clicksign

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gisce/clicksign/internal/transport"
)

// Service endpoints per environment.
const (
	ProductionURL = "https://api.clickandsign.eu/cs/v1"
	SandboxURL    = "https://api-test.clickandsign.eu/cs/v1"

	EnvironmentProduction = "prod"
)

// Config holds the explicit client settings. Credential sourcing from files or the
// environment is the caller's concern.
type Config struct {
	User     string
	Password string
	// Environment selects the endpoint: "prod" (default) or anything else for the sandbox.
	Environment string
	// BaseURL overrides the endpoint chosen by Environment.
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces outbound calls when positive.
	RequestsPerSecond float64
	Burst             int
}

// Validate reports the first missing or malformed setting as a *ConfigurationError.
func (c Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return &ConfigurationError{Field: "user", Reason: "required"}
	}
	if strings.TrimSpace(c.Password) == "" {
		return &ConfigurationError{Field: "password", Reason: "required"}
	}
	if raw := strings.TrimSpace(c.BaseURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ConfigurationError{Field: "base_url", Reason: "must be an absolute http(s) url"}
		}
	}
	if c.Timeout < 0 {
		return &ConfigurationError{Field: "timeout", Reason: "must not be negative"}
	}
	if c.RequestsPerSecond < 0 {
		return &ConfigurationError{Field: "requests_per_second", Reason: "must not be negative"}
	}
	return nil
}

// Endpoint returns the base URL selected by BaseURL or Environment.
func (c Config) Endpoint() string {
	if raw := strings.TrimSpace(c.BaseURL); raw != "" {
		return raw
	}
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	if env == "" || env == EnvironmentProduction {
		return ProductionURL
	}
	return SandboxURL
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	transport  Transport
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
}

// WithTransport replaces the bundled HTTP transport.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithHTTPClient sets the client used by the bundled HTTP transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver receives one notification per facade call.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Client is the entry point to the Click&Sign service. It is safe for concurrent use
// when its transport is.
type Client struct {
	Signature     *SignatureService
	Configuration *ConfigurationService
}

// New validates cfg and builds a client. No network activity happens here.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	if o.transport == nil {
		topts := transport.Options{
			BaseURL:           cfg.Endpoint(),
			User:              cfg.User,
			Password:          cfg.Password,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
			Logger:            o.logger,
		}
		if o.httpClient != nil {
			topts.Client = o.httpClient
		}
		t, err := transport.New(topts)
		if err != nil {
			return nil, &ConfigurationError{Field: "base_url", Reason: err.Error()}
		}
		o.transport = t
	}

	c := &caller{
		transport: o.transport,
		observer:  o.observer,
		logger:    o.logger.With(slog.String("component", "clicksign")),
	}
	return &Client{
		Signature:     &SignatureService{caller: c},
		Configuration: &ConfigurationService{caller: c},
	}, nil
}
