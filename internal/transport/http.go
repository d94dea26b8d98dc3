package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
	maxMessageLen  = 256
)

// RequestIDHeader carries the identifier generated for every call.
const RequestIDHeader = "X-Request-ID"

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options configures an HTTP transport.
type Options struct {
	BaseURL  string
	User     string
	Password string
	// Client defaults to an *http.Client with Timeout.
	Client  Doer
	Timeout time.Duration
	// RequestsPerSecond paces outbound calls; zero disables pacing.
	RequestsPerSecond float64
	Burst             int
	Logger            *slog.Logger
}

// HTTP posts authenticated JSON requests to the service and reshapes every answer into
// the API response envelope {code, error, result, message}.
type HTTP struct {
	base     *url.URL
	user     string
	password string
	client   Doer
	limiter  *rate.Limiter
	logger   *slog.Logger
	newID    func() string
}

// New validates opts and builds the transport.
func New(opts Options) (*HTTP, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("transport: base url required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("transport: base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("transport: base url %q must use http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("transport: base url %q has no host", raw)
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &HTTP{
		base:     base,
		user:     opts.User,
		password: opts.Password,
		client:   client,
		limiter:  limiter,
		logger:   logger.With(slog.String("component", "transport")),
		newID:    func() string { return uuid.New().String() },
	}, nil
}

// Endpoint returns the URL a resource is posted to.
func (h *HTTP) Endpoint(resource string) string {
	return h.base.JoinPath(resource + "/").String()
}

// Call posts payload to resource. Transport failures are returned as errors; any answer
// from the service, successful or not, is returned as an envelope.
func (h *HTTP) Call(ctx context.Context, resource string, payload map[string]any) (map[string]any, error) {
	resource = strings.TrimSpace(resource)
	if resource == "" {
		return nil, errors.New("transport: resource required")
	}
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("transport: %s: rate limit: %w", resource, err)
		}
	}

	requestID := h.newID()
	body, err := json.Marshal(h.requestBody(resource, payload))
	if err != nil {
		return nil, fmt.Errorf("transport: %s: encode request: %w", resource, err)
	}

	endpoint := h.Endpoint(resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("transport: %s: build request: %w", resource, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: %s: request: %w", resource, err)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	closeErr := resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("transport: %s: read: %w", resource, err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("transport: %s: close: %w", resource, closeErr)
	}

	envelope, err := buildEnvelope(resp, raw)
	if err != nil {
		return nil, fmt.Errorf("transport: %s: %w", resource, err)
	}
	h.logger.Debug("service call completed",
		slog.String("resource", resource),
		slog.String("request_id", requestID),
		slog.Int("http_status", resp.StatusCode),
		slog.Any("code", envelope["code"]),
		slog.Bool("error", envelope["error"].(bool)),
		slog.Duration("latency", time.Since(start)),
	)
	return envelope, nil
}

func (h *HTTP) requestBody(resource string, payload map[string]any) map[string]any {
	body := make(map[string]any, len(payload)+3)
	for k, v := range payload {
		body[k] = v
	}
	body["request"] = strings.ToUpper(resource)
	body["user"] = h.user
	body["password"] = h.password
	return body
}

func buildEnvelope(resp *http.Response, raw []byte) (map[string]any, error) {
	result := map[string]any{}
	trimmed := bytes.TrimSpace(raw)
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	isJSON := strings.Contains(contentType, "json") || bytes.HasPrefix(trimmed, []byte("{"))
	if len(trimmed) > 0 && isJSON {
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		decoder.UseNumber()
		var decoded any
		if err := decoder.Decode(&decoded); err != nil {
			if resp.StatusCode < http.StatusBadRequest {
				return nil, fmt.Errorf("json decode: %w", err)
			}
		} else if m, ok := normalizeJSONNumbers(decoded).(map[string]any); ok {
			result = m
		} else if resp.StatusCode < http.StatusBadRequest {
			return nil, fmt.Errorf("json decode: expected an object, got %T", decoded)
		}
	} else if resp.StatusCode < http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected content type %q", contentType)
	}

	code := int64(resp.StatusCode)
	if n, ok := result["code"].(int64); ok {
		code = n
	}
	message := http.StatusText(resp.StatusCode)
	if status, ok := result["status"].(string); ok && strings.TrimSpace(status) != "" {
		message = status
	} else if len(result) == 0 && len(trimmed) > 0 {
		message = truncate(string(trimmed), maxMessageLen)
	}

	return map[string]any{
		"code":    code,
		"error":   resp.StatusCode >= http.StatusBadRequest || code != http.StatusOK,
		"result":  result,
		"message": message,
	}, nil
}

// normalizeJSONNumbers recursively converts json.Number values to int64 or float64.
func normalizeJSONNumbers(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalizeJSONNumbers(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalizeJSONNumbers(val)
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	default:
		return v
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
