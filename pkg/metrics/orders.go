package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records settlement and gateway activity counters.
type OrderMetrics struct {
	settlements     *prometheus.CounterVec
	webhooks        *prometheus.CounterVec
	gatewayCalls    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_settlements_total",
		Help: "Settlement decisions by action and outcome.",
	}, []string{"action", "outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_webhooks_total",
		Help: "Payment gateway callbacks by normalized status.",
	}, []string{"status"})
	gatewayCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_calls_total",
		Help: "Outbound payment gateway calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_call_duration_seconds",
		Help:    "Duration of outbound payment gateway calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(settlements, webhooks, gatewayCalls, gatewayDuration)
	return &OrderMetrics{
		settlements:     settlements,
		webhooks:        webhooks,
		gatewayCalls:    gatewayCalls,
		gatewayDuration: gatewayDuration,
	}
}

// IncSettlement counts one settlement decision.
func (m *OrderMetrics) IncSettlement(action, outcome string) {
	if m == nil || m.settlements == nil {
		return
	}
	m.settlements.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

// IncWebhook counts one gateway callback by normalized payment status.
func (m *OrderMetrics) IncWebhook(status string) {
	if m == nil || m.webhooks == nil {
		return
	}
	m.webhooks.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveGatewayCall records one outbound gateway call.
func (m *OrderMetrics) ObserveGatewayCall(operation, outcome string, duration time.Duration) {
	if m == nil || m.gatewayCalls == nil {
		return
	}
	op := normalizeLabel(operation)
	m.gatewayCalls.WithLabelValues(op, normalizeLabel(outcome)).Inc()
	m.gatewayDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
