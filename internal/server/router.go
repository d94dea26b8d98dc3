package server

import (
	"net/http"
	"strings"
)

// ListenerHTTP defines the surface the router needs from the callback listener.
type ListenerHTTP interface {
	ServeCallback(http.ResponseWriter, *http.Request)
	ServeSignatory(http.ResponseWriter, *http.Request, string)
	ServeHealth(http.ResponseWriter, *http.Request)
	WriteError(http.ResponseWriter, int, string)
}

// NewListenerHandler owns URL dispatch for the callback listener so the listener itself
// stays free of routing logic.
func NewListenerHandler(l ListenerHTTP) http.Handler {
	if l == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "listener unavailable", http.StatusServiceUnavailable)
		})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, id, ok := parseRoute(r.URL.Path)
		if !ok {
			l.WriteError(w, http.StatusNotFound, "not found")
			return
		}

		switch route {
		case "callback":
			if r.Method != http.MethodPost {
				methodNotAllowed(w, l, http.MethodPost)
				return
			}
			l.ServeCallback(w, r)
		case "signatories":
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				methodNotAllowed(w, l, http.MethodGet, http.MethodHead)
				return
			}
			l.ServeSignatory(w, r, id)
		case "healthz":
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				methodNotAllowed(w, l, http.MethodGet, http.MethodHead)
				return
			}
			l.ServeHealth(w, r)
		default:
			l.WriteError(w, http.StatusNotFound, "not found")
		}
	})
}

func methodNotAllowed(w http.ResponseWriter, l ListenerHTTP, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	l.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func parseRoute(path string) (string, string, bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "", "", false
	}
	parts := strings.Split(trimmed, "/")
	switch len(parts) {
	case 1:
		route := strings.ToLower(parts[0])
		switch route {
		case "callback":
			return route, "", true
		case "health", "healthz":
			return "healthz", "", true
		}
	case 2:
		if strings.ToLower(parts[0]) == "signatories" && parts[1] != "" {
			return "signatories", parts[1], true
		}
	}
	return "", "", false
}
