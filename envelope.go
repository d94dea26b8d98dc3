package clicksign

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gisce/clicksign/schema"
	"github.com/gisce/clicksign/view"
)

// caller runs one facade call: transport, envelope check, result validation.
type caller struct {
	transport Transport
	observer  Observer
	logger    *slog.Logger
}

type call struct {
	resource string
	// id names the looked-up resource in not-found errors.
	id      string
	payload map[string]any
	result  *schema.Schema
}

func (c *caller) do(ctx context.Context, req call) (view.View, error) {
	start := time.Now()
	outcome, code := OutcomeOK, 0
	defer func() {
		c.observer.ObserveCall(req.resource, outcome, code, time.Since(start))
	}()

	raw, err := c.transport.Call(ctx, req.resource, req.payload)
	if err != nil {
		outcome = OutcomeTransportError
		c.logger.Warn("service call failed", slog.String("resource", req.resource), slog.String("error", err.Error()))
		return view.View{}, fmt.Errorf("clicksign: %s: %w", req.resource, err)
	}

	envelope, err := APIResponseSchema.Validate(raw)
	if err != nil {
		outcome = OutcomeInvalidResponse
		return view.View{}, validationError(req.resource+" envelope", err)
	}
	env := view.New(envelope)
	code = int(env.Int("code"))
	result := env.Get("result")

	if env.Bool("error") {
		message := env.String("message")
		if message == "" {
			message = result.String("status")
		}
		if code == http.StatusNotFound || result.Int("code") == http.StatusNotFound {
			outcome = OutcomeNotFound
			return view.View{}, &NotFoundError{Resource: req.resource, ID: req.id, Message: message}
		}
		outcome = OutcomeRemoteError
		c.logger.Warn("service reported an error",
			slog.String("resource", req.resource),
			slog.Int("code", code),
			slog.String("message", message),
		)
		return view.View{}, &RemoteError{Resource: req.resource, Code: int64(code), Message: message}
	}

	normalized, err := req.result.Validate(result.Map())
	if err != nil {
		outcome = OutcomeInvalidResponse
		c.logger.Warn("service response rejected", slog.String("resource", req.resource), slog.String("error", err.Error()))
		return view.View{}, validationError(req.resource+" response", err)
	}
	c.logger.Debug("service call succeeded", slog.String("resource", req.resource), slog.Int("code", code))
	return view.New(normalized), nil
}

// rejectInput reports a request that failed validation before reaching the transport.
func (c *caller) rejectInput(resource, payload string, err error) error {
	c.observer.ObserveCall(resource, OutcomeInvalidRequest, 0, 0)
	return validationError(payload, err)
}
