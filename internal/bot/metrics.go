package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the Telegram side of the client. API and escrow counters
// live in the metrics package.
type Metrics struct {
	MessagesProcessed    prometheus.Counter
	CallbacksProcessed   prometheus.Counter
	CommandsProcessed    prometheus.Counter
	CommandDuration      *prometheus.HistogramVec
	LoginsTotal          *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
}

// NewMetrics registers the bot metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MessagesProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "areahood_bot_messages_processed_total",
			Help: "Total number of processed messages",
		}),

		CallbacksProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "areahood_bot_callbacks_processed_total",
			Help: "Total number of processed inline button presses",
		}),

		CommandsProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "areahood_bot_commands_processed_total",
			Help: "Total number of processed commands",
		}),

		CommandDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "areahood_bot_command_duration_seconds",
			Help:    "Duration of command processing",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),

		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "areahood_bot_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),

		ErrorsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "areahood_bot_errors_total",
			Help: "Total number of errors shown to users",
		}),

		UpdateProcessingTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "areahood_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
