package clicksign

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func callbackPayload(status string) map[string]any {
	return map[string]any{
		"signature_id": int64(901),
		"signatory_id": int64(4412),
		"contract_id":  "ContractID",
		"status":       status,
		"status_date":  "2024-03-01T10:00:00+0100",
	}
}

func TestParseCallbackSigned(t *testing.T) {
	cb, err := ParseCallback(callbackPayload("signed"))
	require.NoError(t, err)
	require.Equal(t, StatusSigned, cb.Status)
	require.Equal(t, int64(901), cb.SignatureID)
	require.Equal(t, int64(4412), cb.SignatoryID)
	require.Equal(t, "ContractID", cb.ContractID)
	require.True(t, cb.Status.Final())
	require.Equal(t, "signed", cb.View.String("status"))
}

func TestParseCallbackRejectsUnknownStatus(t *testing.T) {
	_, err := ParseCallback(callbackPayload("bogus"))
	errs := fieldErrors(t, err)
	require.Equal(t, []string{"status"}, errs.Fields())
	require.Contains(t, errs.Get("status")[0], "must be one of")
}

func TestParseCallbackAcceptsEveryStatus(t *testing.T) {
	for _, status := range CallbackStatuses {
		_, err := ParseCallback(callbackPayload(string(status)))
		require.NoError(t, err, status)
	}
	require.False(t, StatusReady.Final())
}

func TestCallbackStatusFinal(t *testing.T) {
	tests := []struct {
		status CallbackStatus
		final  bool
	}{
		{StatusNew, false},
		{StatusReady, false},
		{StatusSeverallyLevelCompleted, false},
		{StatusSigned, true},
		{StatusEvidenceGenerated, true},
		{StatusExpired, true},
		{StatusFailed, true},
		{StatusCancelled, true},
		{StatusOTPMaxRetries, true},
		{CallbackStatus("bogus"), false},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			require.Equal(t, tc.final, tc.status.Final())
		})
	}
}

func TestParseCallbackMissingFields(t *testing.T) {
	_, err := ParseCallback(map[string]any{"status": "new"})
	errs := fieldErrors(t, err)
	require.Equal(t, []string{"contract_id", "signatory_id", "signature_id", "status_date"}, errs.Fields())
}

func TestDecodeCallback(t *testing.T) {
	cb, err := DecodeCallback(strings.NewReader(`{
		"signature_id": 901,
		"signatory_id": 4412,
		"contract_id": "ContractID",
		"status": "evidence_generated",
		"status_date": "2024-03-01T10:00:00+0100"
	}`))
	require.NoError(t, err)
	require.Equal(t, StatusEvidenceGenerated, cb.Status)
	require.Equal(t, int64(4412), cb.SignatoryID)

	_, err = DecodeCallback(strings.NewReader(`{"signatory_id": 1.5}`))
	errs := fieldErrors(t, err)
	require.True(t, errs.Has("signatory_id"))

	_, err = DecodeCallback(strings.NewReader(`[1]`))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrValidation)

	_, err = DecodeCallback(strings.NewReader(`null`))
	require.Error(t, err)
}
