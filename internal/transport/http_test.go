package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path      string
	method    string
	requestID string
	body      map[string]any
}

func newTestServer(t *testing.T, status int, contentType, body string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.method = r.Method
		rec.requestID = r.Header.Get(RequestIDHeader)
		payload, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(payload, &rec.body))
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestCallSendsWireBody(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, "application/json",
		`{"code":200,"status":"Success","request":"GET_SIGNATORY_STATUS","request_id":4411,
		  "signatory_details":{"signatory_id":42,"signatory_status":"signed"}}`)

	tr, err := New(Options{BaseURL: srv.URL + "/cs/v1", User: "alice", Password: "secret"})
	require.NoError(t, err)
	tr.newID = func() string { return "req-1" }

	envelope, err := tr.Call(context.Background(), "get_signatory_status", map[string]any{"signatory_id": int64(42)})
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, rec.method)
	require.Equal(t, "/cs/v1/get_signatory_status/", rec.path)
	require.Equal(t, "req-1", rec.requestID)
	require.Equal(t, "GET_SIGNATORY_STATUS", rec.body["request"])
	require.Equal(t, "alice", rec.body["user"])
	require.Equal(t, "secret", rec.body["password"])
	require.EqualValues(t, 42, rec.body["signatory_id"])

	require.Equal(t, int64(200), envelope["code"])
	require.Equal(t, false, envelope["error"])
	require.Equal(t, "Success", envelope["message"])
	result := envelope["result"].(map[string]any)
	require.Equal(t, int64(4411), result["request_id"])
	details := result["signatory_details"].(map[string]any)
	require.Equal(t, int64(42), details["signatory_id"])
}

func TestCallPayloadCannotOverrideCredentials(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, "application/json", `{"code":200,"status":"Success","request":"GET_CONFIG_LIST"}`)
	tr, err := New(Options{BaseURL: srv.URL, User: "alice", Password: "secret"})
	require.NoError(t, err)

	_, err = tr.Call(context.Background(), "get_config_list", map[string]any{"user": "mallory", "request": "OTHER"})
	require.NoError(t, err)
	require.Equal(t, "alice", rec.body["user"])
	require.Equal(t, "GET_CONFIG_LIST", rec.body["request"])
}

func TestCallEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantCode    int64
		wantMessage string
	}{
		{
			name:        "service code in body",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"code":404,"status":"Signatory not found","request":"GET_SIGNATORY_STATUS"}`,
			wantCode:    404,
			wantMessage: "Signatory not found",
		},
		{
			name:        "http error with json body",
			status:      http.StatusUnauthorized,
			contentType: "application/json",
			body:        `{"code":401,"status":"Invalid credentials"}`,
			wantCode:    401,
			wantMessage: "Invalid credentials",
		},
		{
			name:        "http error with text body",
			status:      http.StatusBadGateway,
			contentType: "text/html",
			body:        "upstream down",
			wantCode:    502,
			wantMessage: "upstream down",
		},
		{
			name:        "http error without body",
			status:      http.StatusInternalServerError,
			wantCode:    500,
			wantMessage: "Internal Server Error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tc.status, tc.contentType, tc.body)
			tr, err := New(Options{BaseURL: srv.URL, User: "u", Password: "p"})
			require.NoError(t, err)

			envelope, err := tr.Call(context.Background(), "get_signatory_status", nil)
			require.NoError(t, err)
			require.Equal(t, true, envelope["error"])
			require.Equal(t, tc.wantCode, envelope["code"])
			require.Equal(t, tc.wantMessage, envelope["message"])
			require.IsType(t, map[string]any{}, envelope["result"])
		})
	}
}

func TestCallRejectsUndecodableSuccess(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "application/json", `{"code":`)
	tr, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = tr.Call(context.Background(), "get_config", map[string]any{"config_id": int64(1)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "transport: get_config: json decode")
}

type failingDoer struct{ err error }

func (f failingDoer) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestCallWrapsClientErrors(t *testing.T) {
	boom := errors.New("connection refused")
	tr, err := New(Options{BaseURL: "https://api.example.test/cs/v1", Client: failingDoer{err: boom}})
	require.NoError(t, err)

	_, err = tr.Call(context.Background(), "get_config_list", nil)
	require.ErrorIs(t, err, boom)
}

func TestCallHonoursContextWhilePaced(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "application/json", `{"code":200,"status":"Success","request":"GET_CONFIG_LIST"}`)
	tr, err := New(Options{BaseURL: srv.URL, RequestsPerSecond: 0.001, Burst: 1})
	require.NoError(t, err)

	_, err = tr.Call(context.Background(), "get_config_list", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = tr.Call(ctx, "get_config_list", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate limit")
}

func TestNewValidatesBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.test", "https://", "::bad"} {
		_, err := New(Options{BaseURL: raw})
		require.Error(t, err, raw)
		require.True(t, strings.HasPrefix(err.Error(), "transport:"))
	}
}

func TestEndpointJoinsResource(t *testing.T) {
	tr, err := New(Options{BaseURL: "https://api.example.test/cs/v1/"})
	require.NoError(t, err)
	require.Equal(t, "https://api.example.test/cs/v1/start_signature/", tr.Endpoint("start_signature"))
}
