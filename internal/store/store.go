package store

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// ErrInvalidEvent is returned when an event cannot be keyed.
var ErrInvalidEvent = errors.New("store: signatory id required")

// Event is the last callback notification received for a signatory.
type Event struct {
	SignatureID int64     `json:"signatureId"`
	SignatoryID int64     `json:"signatoryId"`
	ContractID  string    `json:"contractId"`
	Status      string    `json:"status"`
	StatusDate  string    `json:"statusDate"`
	ReceivedAt  time.Time `json:"receivedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// EventStore keeps the latest event per signatory until it expires.
type EventStore interface {
	Record(ctx context.Context, event Event) error
	Latest(ctx context.Context, signatoryID int64) (Event, bool, error)
	Size(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

const keyPrefix = "clicksign:signatory:"

func eventKey(signatoryID int64) string {
	return keyPrefix + strconv.FormatInt(signatoryID, 10)
}

// stamp fills ReceivedAt and ExpiresAt from now and the retention.
func stamp(event Event, retention time.Duration) (Event, error) {
	if event.SignatoryID == 0 {
		return Event{}, ErrInvalidEvent
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}
	if event.ExpiresAt.IsZero() || event.ExpiresAt.Before(event.ReceivedAt) {
		event.ExpiresAt = event.ReceivedAt.Add(retention)
	}
	return event, nil
}
