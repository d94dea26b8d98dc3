package callback

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gisce/clicksign"
	"github.com/gisce/clicksign/internal/metrics"
	"github.com/gisce/clicksign/internal/ratelimit"
	"github.com/gisce/clicksign/internal/store"
)

const maxCallbackBytes = 1 << 20

// StatusFetcher asks the service for a signatory's status. *clicksign.SignatureService
// satisfies it.
type StatusFetcher interface {
	Status(ctx context.Context, signatoryID int64) (*clicksign.SignatoryStatus, error)
}

// Options configures a Listener. Store is required; everything else is optional.
// When Fetcher is set, signatory lookups that miss the store are answered by the service.
type Options struct {
	Store   store.EventStore
	Limiter *ratelimit.MapLimiter
	Metrics *metrics.Recorder
	Fetcher StatusFetcher
	Logger  *slog.Logger
	Now     func() time.Time
}

// Listener receives callback notifications pushed by the service, validates them and
// keeps the latest one per signatory.
type Listener struct {
	store   store.EventStore
	limiter *ratelimit.MapLimiter
	metrics *metrics.Recorder
	fetcher StatusFetcher
	logger  *slog.Logger
	now     func() time.Time
}

// New builds a Listener.
func New(opts Options) (*Listener, error) {
	if opts.Store == nil {
		return nil, errors.New("callback: event store required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Listener{
		store:   opts.Store,
		limiter: opts.Limiter,
		metrics: opts.Metrics,
		fetcher: opts.Fetcher,
		logger:  logger.With(slog.String("component", "callback")),
		now:     now,
	}, nil
}

// ServeCallback handles POST /callback.
func (l *Listener) ServeCallback(w http.ResponseWriter, r *http.Request) {
	source := remoteHost(r.RemoteAddr)
	if !l.limiter.Allow(source, l.now()) {
		l.metrics.ObserveCallback("", metrics.CallbackRateLimited)
		w.Header().Set("Retry-After", "1")
		l.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	cb, err := clicksign.DecodeCallback(io.LimitReader(r.Body, maxCallbackBytes))
	if err != nil {
		l.metrics.ObserveCallback("", metrics.CallbackInvalid)
		l.logger.Info("callback rejected", slog.String("source", source), slog.String("error", err.Error()))
		var invalid *clicksign.ValidationError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "invalid callback",
				"fields": invalid.Errors.Map(),
			}, l.logger)
			return
		}
		l.WriteError(w, http.StatusBadRequest, "callback body must be a JSON object")
		return
	}

	event := store.Event{
		SignatureID: cb.SignatureID,
		SignatoryID: cb.SignatoryID,
		ContractID:  cb.ContractID,
		Status:      string(cb.Status),
		StatusDate:  cb.StatusDate,
		ReceivedAt:  l.now().UTC(),
	}
	start := time.Now()
	if err := l.store.Record(r.Context(), event); err != nil {
		if errors.Is(err, store.ErrInvalidEvent) {
			l.metrics.ObserveCallback(string(cb.Status), metrics.CallbackInvalid)
			l.logger.Info("callback rejected", slog.String("source", source), slog.String("error", err.Error()))
			l.WriteError(w, http.StatusBadRequest, "callback cannot be recorded: "+err.Error())
			return
		}
		l.metrics.ObserveStoreRecord(metrics.StoreResultError, time.Since(start))
		l.metrics.ObserveCallback(string(cb.Status), metrics.CallbackStoreFailed)
		l.logger.Error("callback store failed", slog.Int64("signatory_id", cb.SignatoryID), slog.Any("error", err))
		l.WriteError(w, http.StatusServiceUnavailable, "callback could not be recorded")
		return
	}
	l.metrics.ObserveStoreRecord(metrics.StoreResultStored, time.Since(start))
	l.metrics.ObserveCallback(string(cb.Status), metrics.CallbackAccepted)
	l.logger.Info("callback recorded",
		slog.Int64("signature_id", cb.SignatureID),
		slog.Int64("signatory_id", cb.SignatoryID),
		slog.String("status", string(cb.Status)),
	)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"}, l.logger)
}

// ServeSignatory handles GET /signatories/{id}.
func (l *Listener) ServeSignatory(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		l.WriteError(w, http.StatusBadRequest, "signatory id must be an integer")
		return
	}
	start := time.Now()
	event, ok, err := l.store.Latest(r.Context(), id)
	if err != nil {
		l.metrics.ObserveStoreLookup(metrics.StoreResultError, time.Since(start))
		l.logger.Error("callback lookup failed", slog.Int64("signatory_id", id), slog.Any("error", err))
		l.WriteError(w, http.StatusServiceUnavailable, "event store unavailable")
		return
	}
	if !ok {
		l.metrics.ObserveStoreLookup(metrics.StoreResultMiss, time.Since(start))
		if l.fetcher != nil {
			l.serveRemoteStatus(w, r, id)
			return
		}
		l.WriteError(w, http.StatusNotFound, "no callback recorded for signatory "+strconv.FormatInt(id, 10))
		return
	}
	l.metrics.ObserveStoreLookup(metrics.StoreResultHit, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"event":  event,
		"final":  clicksign.CallbackStatus(event.Status).Final(),
		"source": "callback",
	}, l.logger)
}

func (l *Listener) serveRemoteStatus(w http.ResponseWriter, r *http.Request, id int64) {
	status, err := l.fetcher.Status(r.Context(), id)
	switch {
	case errors.Is(err, clicksign.ErrNotFound):
		l.WriteError(w, http.StatusNotFound, "signatory "+strconv.FormatInt(id, 10)+" not found")
		return
	case err != nil:
		l.logger.Error("signatory status query failed", slog.Int64("signatory_id", id), slog.Any("error", err))
		l.WriteError(w, http.StatusBadGateway, "signatory status unavailable")
		return
	}
	event := store.Event{
		SignatoryID: id,
		Status:      status.Status,
		StatusDate:  status.StatusDate,
		ReceivedAt:  l.now().UTC(),
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"event":  event,
		"final":  clicksign.CallbackStatus(event.Status).Final(),
		"source": "service",
	}, l.logger)
}

// ServeHealth handles GET /healthz.
func (l *Listener) ServeHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	size, err := l.store.Size(r.Context())
	if err != nil {
		l.logger.Error("event store size query failed", slog.Any("error", err))
		status = "degraded"
		size = 0
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"events":     size,
		"observedAt": l.now().UTC(),
	}, l.logger)
}

// WriteError renders a JSON error body.
func (l *Listener) WriteError(w http.ResponseWriter, status int, message string) {
	if status <= 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{"error": message}, l.logger)
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("response encode failed", slog.Any("error", err))
	}
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
