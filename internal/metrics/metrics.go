package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "areahood_client",
			Name:      "api_requests_total",
			Help:      "Requests sent to the Area Hood API by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "areahood_client",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of Area Hood API requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	rentalTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "areahood_client",
			Name:      "rental_transitions_total",
			Help:      "Escrow transitions triggered from the client by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	requestDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "areahood_client",
			Name:      "rental_request_decisions_total",
			Help:      "Lender decisions on rental requests.",
		},
		[]string{"decision", "outcome"},
	)

	payments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "areahood_client",
			Name:      "payments_total",
			Help:      "Payment handoffs by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(apiRequests, apiDuration, rentalTransitions, requestDecisions, payments)
	})
}

// ObserveAPI matches api.Observer.
func ObserveAPI(method, path string, status int, elapsed time.Duration) {
	route := Route(path)
	apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	apiDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func IncRentalTransition(action string, err error) {
	rentalTransitions.WithLabelValues(action, outcome(err)).Inc()
}

func IncRequestDecision(decision string, err error) {
	requestDecisions.WithLabelValues(decision, outcome(err)).Inc()
}

func IncPayment(stage string, err error) {
	payments.WithLabelValues(stage, outcome(err)).Inc()
}

// Route collapses record ids in a path so label cardinality stays bounded.
func Route(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.ContainsAny(p, "0123456789") {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
