package clicksign

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gisce/clicksign/schema"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("clicksign: validation failed")
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("clicksign: not found")
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("clicksign: invalid configuration")
	// ErrRemote matches every *RemoteError.
	ErrRemote = errors.New("clicksign: remote error")
)

// ValidationError reports a payload that does not conform to its schema. The caller can
// fix the input and retry.
type ValidationError struct {
	// Payload names what was being validated, e.g. "signature request" or
	// "get_config response".
	Payload string
	Errors  *schema.Errors
}

func (e *ValidationError) Error() string {
	if e.Errors == nil {
		return fmt.Sprintf("clicksign: invalid %s", e.Payload)
	}
	return fmt.Sprintf("clicksign: invalid %s: %s", e.Payload, e.Errors.Error())
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Unwrap exposes the field errors.
func (e *ValidationError) Unwrap() error {
	if e.Errors == nil {
		return nil
	}
	return e.Errors
}

// Fields lists the failing field paths.
func (e *ValidationError) Fields() []string { return e.Errors.Fields() }

// NotFoundError reports that the service has no resource matching the request.
type NotFoundError struct {
	Resource string
	ID       string
	Message  string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("clicksign: %s: %s not found", e.Resource, e.ID)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConfigurationError is returned by New when the client cannot be built.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("clicksign: config %s: %s", e.Field, e.Reason)
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// RemoteError reports a failure returned by the service other than a missing resource.
type RemoteError struct {
	Resource string
	Code     int64
	Message  string
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("clicksign: %s failed with code %d", e.Resource, e.Code)
	if strings.TrimSpace(e.Message) != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is matches ErrRemote.
func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

func validationError(payload string, err error) error {
	var fieldErrs *schema.Errors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Payload: payload, Errors: fieldErrs}
	}
	return fmt.Errorf("clicksign: validate %s: %w", payload, err)
}
