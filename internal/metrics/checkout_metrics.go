package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики конвейера оформления заказа и webhook.
type CheckoutMetrics struct {
	// Счётчики checkout-конвейера
	checkoutStarted   prometheus.Counter
	checkoutCompleted prometheus.Counter
	checkoutFailed    prometheus.Counter
	ordersRolledBack  prometheus.Counter

	// Счётчики webhook-обработки
	webhookReceived  prometheus.Counter
	webhookRejected  prometheus.Counter
	webhookProcessed *prometheus.CounterVec

	// Гистограммы времени выполнения
	checkoutDuration prometheus.Histogram
	webhookDuration  prometheus.Histogram

	// Счётчики событий
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter
}

// NewCheckoutMetrics создаёт метрики на default registerer.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		checkoutStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_started_total",
			Help: "Total number of checkout attempts started",
		}),
		checkoutCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_completed_total",
			Help: "Total number of checkouts that produced an order",
		}),
		checkoutFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_failed_total",
			Help: "Total number of checkouts rejected or failed",
		}),
		ordersRolledBack: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_orders_rolled_back_total",
			Help: "Total number of order headers deleted by the compensating rollback",
		}),
		webhookReceived: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_webhook_received_total",
			Help: "Total number of gateway webhook notifications received",
		}),
		webhookRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_webhook_rejected_total",
			Help: "Total number of webhook notifications rejected by signature verification",
		}),
		webhookProcessed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "checkout_webhook_processed_total",
			Help: "Total number of processed webhook notifications grouped by gateway status",
		}, []string{"status"}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of checkout pipeline executions in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		webhookDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "checkout_webhook_duration_seconds",
			Help:    "Duration of webhook processing in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "checkout_outbox_events_total",
			Help: "Total number of events enqueued to the transactional outbox",
		}),
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

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCheckoutStarted увеличивает счётчик начатых checkout.
func (m *CheckoutMetrics) RecordCheckoutStarted() {
	m.checkoutStarted.Inc()
}

// RecordCheckoutCompleted увеличивает счётчик успешных checkout.
func (m *CheckoutMetrics) RecordCheckoutCompleted() {
	m.checkoutCompleted.Inc()
}

// RecordCheckoutFailed увеличивает счётчик неудачных checkout.
func (m *CheckoutMetrics) RecordCheckoutFailed() {
	m.checkoutFailed.Inc()
}

// RecordOrderRolledBack увеличивает счётчик компенсирующих откатов.
func (m *CheckoutMetrics) RecordOrderRolledBack() {
	m.ordersRolledBack.Inc()
}

// RecordWebhookReceived увеличивает счётчик полученных уведомлений.
func (m *CheckoutMetrics) RecordWebhookReceived() {
	m.webhookReceived.Inc()
}

// RecordWebhookRejected увеличивает счётчик отклонённых по подписи уведомлений.
func (m *CheckoutMetrics) RecordWebhookRejected() {
	m.webhookRejected.Inc()
}

// RecordWebhookProcessed увеличивает счётчик обработанных уведомлений.
func (m *CheckoutMetrics) RecordWebhookProcessed(gatewayStatus string) {
	m.webhookProcessed.WithLabelValues(gatewayStatus).Inc()
}

// RecordCheckoutDuration записывает время выполнения checkout-конвейера.
func (m *CheckoutMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordWebhookDuration записывает время обработки уведомления.
func (m *CheckoutMetrics) RecordWebhookDuration(duration time.Duration) {
	m.webhookDuration.Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *CheckoutMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *CheckoutMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
