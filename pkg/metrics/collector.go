package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates received labeled by kind and status",
		},
		[]string{"kind", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	stepTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "step_transitions_total",
			Help: "Total number of conversation step transitions",
		},
		[]string{"from", "to"},
	)
	ordersSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_submitted_total",
			Help: "Total number of payment proofs forwarded to the operator",
		},
		[]string{"kind"},
	)
	orderDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_decisions_total",
			Help: "Total number of operator verdicts on pending orders",
		},
		[]string{"outcome"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of sessions held in memory",
		},
	)
	pendingOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_orders",
			Help: "Current number of orders awaiting an operator verdict",
		},
	)
)

// RecordUpdate increments update counters and records handling duration.
func RecordUpdate(kind, status string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(kind, status).Inc()
	updateDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordStepTransition tracks conversation step changes.
func RecordStepTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stepTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordOrderSubmitted counts proofs handed to the operator by order kind.
func RecordOrderSubmitted(kind string) {
	if kind == "" {
		kind = "unknown"
	}

	ordersSubmittedTotal.WithLabelValues(kind).Inc()
}

// RecordOrderDecision counts operator verdicts.
func RecordOrderDecision(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}

	orderDecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// Counter reports an in-memory element count.
type Counter interface {
	Len() int
}

// GaugeCollector periodically samples session and pending-order counts.
type GaugeCollector struct {
	sessions Counter
	orders   Counter
	interval time.Duration
}

// NewGaugeCollector builds a collector over the session store and order table.
func NewGaugeCollector(sessions, orders Counter) *GaugeCollector {
	return &GaugeCollector{
		sessions: sessions,
		orders:   orders,
		interval: 10 * time.Second,
	}
}

// Run samples the gauges on a fixed interval until ctx is cancelled.
func (c *GaugeCollector) Run(ctx context.Context) {
	if c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		c.collect()

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *GaugeCollector) collect() {
	if c.sessions != nil {
		activeSessions.Set(float64(c.sessions.Len()))
	}
	if c.orders != nil {
		pendingOrders.Set(float64(c.orders.Len()))
	}
}
