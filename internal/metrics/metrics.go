package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StoreOperation identifies the event store method being instrumented.
type StoreOperation string

const (
	StoreOperationRecord StoreOperation = "record"
	StoreOperationLookup StoreOperation = "lookup"
)

// StoreResult captures the result of an event store call.
type StoreResult string

const (
	StoreResultStored StoreResult = "stored"
	StoreResultHit    StoreResult = "hit"
	StoreResultMiss   StoreResult = "miss"
	StoreResultError  StoreResult = "error"
)

// CallbackResult captures how the listener handled a callback notification.
type CallbackResult string

const (
	CallbackAccepted    CallbackResult = "accepted"
	CallbackInvalid     CallbackResult = "invalid"
	CallbackRateLimited CallbackResult = "rate_limited"
	CallbackStoreFailed CallbackResult = "store_failed"
)

// Recorder publishes Prometheus metrics for service calls and the callback listener.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec

	callbacks *prometheus.CounterVec

	storeOperations *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
}

// NewRecorder constructs a Prometheus-backed Recorder. When reg is nil a dedicated
// registry is created so multiple recorders can coexist without conflicting with
// the global default registerer.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clicksign",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total Click&Sign service calls by resource and outcome.",
	}, []string{"resource", "outcome", "status_code"})

	apiLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "clicksign",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for Click&Sign service calls.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"resource", "outcome"})

	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clicksign",
		Subsystem: "callback",
		Name:      "notifications_total",
		Help:      "Callback notifications received by the listener.",
	}, []string{"status", "result"})

	storeOperations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "clicksign",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Callback event store operations.",
	}, []string{"operation", "result"})

	storeLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "clicksign",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Latency distribution for callback event store operations.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	}, []string{"operation", "result"})

	reg.MustRegister(apiRequests, apiLatency, callbacks, storeOperations, storeLatency)

	return &Recorder{
		gatherer:        reg,
		handler:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		apiRequests:     apiRequests,
		apiLatency:      apiLatency,
		callbacks:       callbacks,
		storeOperations: storeOperations,
		storeLatency:    storeLatency,
	}
}

// Handler exposes the Prometheus HTTP handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying Prometheus gatherer.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveCall records one facade call; it satisfies clicksign.Observer.
func (r *Recorder) ObserveCall(resource, outcome string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	resourceLabel := normalizeLabel(resource)
	outcomeLabel := normalizeLabel(outcome)
	statusLabel := strconv.Itoa(statusCode)
	if statusCode <= 0 {
		statusLabel = "unknown"
	}
	r.apiRequests.WithLabelValues(resourceLabel, outcomeLabel, statusLabel).Inc()
	r.apiLatency.WithLabelValues(resourceLabel, outcomeLabel).Observe(duration.Seconds())
}

// ObserveCallback records a callback notification handled by the listener. status is
// empty when the payload could not be validated.
func (r *Recorder) ObserveCallback(status string, result CallbackResult) {
	if r == nil {
		return
	}
	r.callbacks.WithLabelValues(normalizeLabel(status), normalizeLabel(string(result))).Inc()
}

// ObserveStoreRecord records an event store write.
func (r *Recorder) ObserveStoreRecord(result StoreResult, duration time.Duration) {
	if r == nil {
		return
	}
	if result == "" {
		result = StoreResultError
	}
	r.observeStore(StoreOperationRecord, result, duration)
}

// ObserveStoreLookup records an event store read.
func (r *Recorder) ObserveStoreLookup(result StoreResult, duration time.Duration) {
	if r == nil {
		return
	}
	if result == "" {
		result = StoreResultMiss
	}
	r.observeStore(StoreOperationLookup, result, duration)
}

func (r *Recorder) observeStore(operation StoreOperation, result StoreResult, duration time.Duration) {
	opLabel := string(operation)
	resLabel := normalizeLabel(string(result))
	r.storeOperations.WithLabelValues(opLabel, resLabel).Inc()
	r.storeLatency.WithLabelValues(opLabel, resLabel).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
