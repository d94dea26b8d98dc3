package clicksign

import (
	"context"
	"time"
)

// Resource names understood by the service.
const (
	ResourceStartSignature  = "start_signature"
	ResourceSignatoryStatus = "get_signatory_status"
	ResourceDocument        = "get_document"
	ResourceConfigList      = "get_config_list"
	ResourceConfig          = "get_config"
)

// Transport performs one authenticated call against the service and returns the API
// response envelope ({code, error, result, message}) as a loosely typed mapping.
// Implementations must be safe for concurrent use if the Client is shared.
type Transport interface {
	Call(ctx context.Context, resource string, payload map[string]any) (map[string]any, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, resource string, payload map[string]any) (map[string]any, error)

// Call implements Transport.
func (f TransportFunc) Call(ctx context.Context, resource string, payload map[string]any) (map[string]any, error) {
	return f(ctx, resource, payload)
}

// Call outcomes reported to an Observer.
const (
	OutcomeOK              = "ok"
	OutcomeInvalidRequest  = "invalid_request"
	OutcomeInvalidResponse = "invalid_response"
	OutcomeNotFound        = "not_found"
	OutcomeRemoteError     = "remote_error"
	OutcomeTransportError  = "transport_error"
)

// Observer receives one notification per facade call.
type Observer interface {
	ObserveCall(resource, outcome string, code int, duration time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(string, string, int, time.Duration) {}
