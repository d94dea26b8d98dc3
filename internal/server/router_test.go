package server

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

type stubListener struct {
	callbackCalls int
	healthCalls   int
	signatoryIDs  []string
	errorStatuses []int
	errorMessages []string
}

func (s *stubListener) ServeCallback(w http.ResponseWriter, _ *http.Request) {
	s.callbackCalls++
	w.WriteHeader(http.StatusOK)
}

func (s *stubListener) ServeSignatory(w http.ResponseWriter, _ *http.Request, id string) {
	s.signatoryIDs = append(s.signatoryIDs, id)
	w.WriteHeader(http.StatusOK)
}

func (s *stubListener) ServeHealth(w http.ResponseWriter, _ *http.Request) {
	s.healthCalls++
	w.WriteHeader(http.StatusOK)
}

func (s *stubListener) WriteError(w http.ResponseWriter, status int, message string) {
	s.errorStatuses = append(s.errorStatuses, status)
	s.errorMessages = append(s.errorMessages, message)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

func TestParseRoute(t *testing.T) {
	cases := map[string]struct {
		path  string
		route string
		id    string
		ok    bool
	}{
		"callback":          {path: "/callback", route: "callback", ok: true},
		"callback slash":    {path: "/callback/", route: "callback", ok: true},
		"health":            {path: "/health", route: "healthz", ok: true},
		"healthz":           {path: "/healthz", route: "healthz", ok: true},
		"signatory":         {path: "/signatories/4412", route: "signatories", id: "4412", ok: true},
		"signatory upper":   {path: "/Signatories/4412", route: "signatories", id: "4412", ok: true},
		"signatories alone": {path: "/signatories", ok: false},
		"double slash":      {path: "//signatories//4412", ok: false},
		"unknown":           {path: "/unknown", ok: false},
		"too deep":          {path: "/signatories/1/events", ok: false},
		"empty path":        {path: "/", ok: false},
		"blank path":        {path: "", ok: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			route, id, ok := parseRoute(tc.path)
			if route != tc.route || id != tc.id || ok != tc.ok {
				t.Fatalf("parseRoute(%q) = (%q, %q, %t), want (%q, %q, %t)",
					tc.path, route, id, ok, tc.route, tc.id, tc.ok)
			}
		})
	}
}

func TestNewListenerHandlerNilListener(t *testing.T) {
	handler := NewListenerHandler(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/callback", http.NoBody)

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 when listener unavailable, got %d", rec.Code)
	}
}

func TestListenerHandlerDispatchesRoutes(t *testing.T) {
	stub := &stubListener{}
	handler := NewListenerHandler(stub)

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantAllow  string
	}{
		{method: http.MethodPost, path: "/callback", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/callback", wantStatus: http.StatusMethodNotAllowed, wantAllow: "POST"},
		{method: http.MethodGet, path: "/signatories/4412", wantStatus: http.StatusOK},
		{method: http.MethodDelete, path: "/signatories/4412", wantStatus: http.StatusMethodNotAllowed, wantAllow: "GET, HEAD"},
		{method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
		{method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{method: http.MethodPost, path: "/healthz", wantStatus: http.StatusMethodNotAllowed, wantAllow: "GET, HEAD"},
		{method: http.MethodGet, path: "/missing", wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, http.NoBody))
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Allow"); got != tc.wantAllow {
				t.Fatalf("expected Allow %q, got %q", tc.wantAllow, got)
			}
		})
	}

	if stub.callbackCalls != 1 {
		t.Fatalf("expected 1 callback call, got %d", stub.callbackCalls)
	}
	if stub.healthCalls != 2 {
		t.Fatalf("expected 2 health calls, got %d", stub.healthCalls)
	}
	if !reflect.DeepEqual(stub.signatoryIDs, []string{"4412"}) {
		t.Fatalf("unexpected signatory ids %v", stub.signatoryIDs)
	}
	wantStatuses := []int{
		http.StatusMethodNotAllowed,
		http.StatusMethodNotAllowed,
		http.StatusMethodNotAllowed,
		http.StatusNotFound,
	}
	if !reflect.DeepEqual(stub.errorStatuses, wantStatuses) {
		t.Fatalf("unexpected error statuses %v", stub.errorStatuses)
	}
}
