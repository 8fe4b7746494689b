package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// GatewayMetrics covers the purchase/refund sagas, the compensation worker
// and the per-downstream circuit breakers.
type GatewayMetrics struct {
	purchasesStarted   prometheus.Counter
	purchasesCompleted prometheus.Counter
	purchasesFailed    prometheus.Counter
	refunds            prometheus.Counter

	compensationRetries prometheus.Counter
	compensationPending prometheus.Gauge

	// 0 = closed, 1 = half-open, 2 = open
	breakerState *prometheus.GaugeVec
}

func NewGatewayMetrics() *GatewayMetrics {
	return newGatewayMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newGatewayMetricsWithRegisterer(registerer prometheus.Registerer) *GatewayMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &GatewayMetrics{
		purchasesStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "gateway_purchases_started_total",
			Help: "Total number of purchase sagas started",
		}),
		purchasesCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "gateway_purchases_completed_total",
			Help: "Total number of purchase sagas completed successfully",
		}),
		purchasesFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "gateway_purchases_failed_total",
			Help: "Total number of purchase sagas failed",
		}),
		refunds: registerCounter(registerer, prometheus.CounterOpts{
			Name: "gateway_refunds_total",
			Help: "Total number of completed ticket refunds",
		}),
		compensationRetries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "gateway_compensation_retries_total",
			Help: "Total number of compensation retry attempts",
		}),
		compensationPending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "gateway_compensation_pending",
			Help: "Number of compensation tasks waiting to succeed",
		}),
		breakerState: registerGaugeVec(registerer, prometheus.GaugeOpts{
			Name: "gateway_breaker_state",
			Help: "Circuit breaker state per downstream (0 closed, 1 half-open, 2 open)",
		}, []string{"service"}),
	}
}

func (m *GatewayMetrics) RecordPurchaseStarted() {
	if m != nil {
		m.purchasesStarted.Inc()
	}
}

func (m *GatewayMetrics) RecordPurchaseCompleted() {
	if m != nil {
		m.purchasesCompleted.Inc()
	}
}

func (m *GatewayMetrics) RecordPurchaseFailed() {
	if m != nil {
		m.purchasesFailed.Inc()
	}
}

func (m *GatewayMetrics) RecordRefund() {
	if m != nil {
		m.refunds.Inc()
	}
}

func (m *GatewayMetrics) RecordCompensationRetry() {
	if m != nil {
		m.compensationRetries.Inc()
	}
}

func (m *GatewayMetrics) SetCompensationPending(n int) {
	if m != nil {
		m.compensationPending.Set(float64(n))
	}
}

func (m *GatewayMetrics) SetBreakerState(service string, state float64) {
	if m != nil {
		m.breakerState.WithLabelValues(service).Set(state)
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerGaugeVec(registerer prometheus.Registerer, opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	collector := prometheus.NewGaugeVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.GaugeVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge vec %q: %v", opts.Name, err))
	}
	return collector
}
