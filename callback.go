package clicksign

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gisce/clicksign/view"
)

// CallbackStatus is a signature lifecycle state reported by a callback notification.
type CallbackStatus string

const (
	StatusNew                     CallbackStatus = "new"
	StatusReady                   CallbackStatus = "ready"
	StatusSigned                  CallbackStatus = "signed"
	StatusExpired                 CallbackStatus = "expired"
	StatusFailed                  CallbackStatus = "failed"
	StatusCancelled               CallbackStatus = "cancelled"
	StatusOTPMaxRetries           CallbackStatus = "otp_max_retries"
	StatusSeverallyLevelCompleted CallbackStatus = "severally_level_completed"
	StatusEvidenceGenerated       CallbackStatus = "evidence_generated"
)

// CallbackStatuses lists every status accepted by CallbackSchema.
var CallbackStatuses = []CallbackStatus{
	StatusNew,
	StatusReady,
	StatusSigned,
	StatusExpired,
	StatusFailed,
	StatusCancelled,
	StatusOTPMaxRetries,
	StatusSeverallyLevelCompleted,
	StatusEvidenceGenerated,
}

func statusNames() []string {
	out := make([]string, len(CallbackStatuses))
	for i, s := range CallbackStatuses {
		out[i] = string(s)
	}
	return out
}

// Final reports whether the signatory's outcome is settled. A signed signatory can still
// receive evidence_generated once the signature evidence is ready.
func (s CallbackStatus) Final() bool {
	switch s {
	case StatusSigned, StatusExpired, StatusFailed, StatusCancelled, StatusOTPMaxRetries, StatusEvidenceGenerated:
		return true
	}
	return false
}

// Callback is a validated notification pushed by the service.
type Callback struct {
	SignatureID int64
	SignatoryID int64
	ContractID  string
	Status      CallbackStatus
	StatusDate  string
	View        view.View
}

// ParseCallback validates raw against CallbackSchema.
func ParseCallback(raw map[string]any) (*Callback, error) {
	normalized, err := CallbackSchema.Validate(raw)
	if err != nil {
		return nil, validationError("callback", err)
	}
	v := view.New(normalized)
	return &Callback{
		SignatureID: v.Int("signature_id"),
		SignatoryID: v.Int("signatory_id"),
		ContractID:  v.String("contract_id"),
		Status:      CallbackStatus(v.String("status")),
		StatusDate:  v.String("status_date"),
		View:        v,
	}, nil
}

// DecodeCallback reads a JSON object from r and validates it with ParseCallback.
func DecodeCallback(r io.Reader) (*Callback, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("clicksign: decode callback: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("clicksign: decode callback: expected a JSON object")
	}
	return ParseCallback(raw)
}
