package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "talentbridge"

// BillingMetrics exports reconciliation, webhook and gateway counters.
type BillingMetrics struct {
	reconcile *prometheus.CounterVec
	webhook   *prometheus.CounterVec
	gateway   *prometheus.HistogramVec
}

// NewBillingMetrics registers the billing collectors on reg.
func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	m := &BillingMetrics{
		reconcile: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "reconcile_total",
			Help:      "Reconciliation attempts by outcome.",
		}, []string{"outcome"}),
		webhook: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "webhook_total",
			Help:      "Gateway webhook deliveries by result status.",
		}, []string{"status"}),
		gateway: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "gateway_request_seconds",
			Help:      "Latency of outbound payment gateway requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}, []string{"operation", "result"}),
	}
	reg.MustRegister(m.reconcile, m.webhook, m.gateway)
	return m
}

func (m *BillingMetrics) ReconcileOutcome(outcome string) {
	m.reconcile.WithLabelValues(outcome).Inc()
}

func (m *BillingMetrics) WebhookResult(status string) {
	m.webhook.WithLabelValues(status).Inc()
}

func (m *BillingMetrics) GatewayRequest(operation, result string, elapsed time.Duration) {
	m.gateway.WithLabelValues(operation, result).Observe(elapsed.Seconds())
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
