package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Операции жизненного цикла заказа для label'ов метрик.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// OrderMetrics содержит метрики операций над заказами.
type OrderMetrics struct {
	// Счётчики успешных операций
	ordersCreated prometheus.Counter
	ordersUpdated prometheus.Counter
	ordersDeleted prometheus.Counter

	// Счётчик отказов по операции и причине
	operationFailures *prometheus.CounterVec

	// Гистограмма времени выполнения по операции
	operationDuration *prometheus.HistogramVec

	// Счётчики позиций, затронутых согласованием
	itemsReconciled *prometheus.CounterVec

	// Счётчик событий, поставленных в outbox
	outboxEnqueued prometheus.Counter
}

// NewOrderMetrics создаёт метрики на default-регистраторе Prometheus.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersUpdated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_updated_total",
			Help: "Total number of orders updated",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_deleted_total",
			Help: "Total number of orders deleted",
		}),
		operationFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_operation_failures_total",
			Help: "Total number of failed order operations grouped by operation and reason",
		}, []string{"operation", "reason"}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orders_operation_duration_seconds",
			Help:    "Duration of order operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		itemsReconciled: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_items_reconciled_total",
			Help: "Total number of line items touched by reconciliation grouped by action",
		}, []string{"action"}),
		outboxEnqueued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_outbox_enqueued_total",
			Help: "Total number of order events enqueued into transactional outbox",
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

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordCreated() {
	m.ordersCreated.Inc()
}

// RecordUpdated увеличивает счётчик обновлённых заказов.
func (m *OrderMetrics) RecordUpdated() {
	m.ordersUpdated.Inc()
}

// RecordDeleted увеличивает счётчик удалённых заказов.
func (m *OrderMetrics) RecordDeleted() {
	m.ordersDeleted.Inc()
}

// RecordFailure фиксирует отказ операции с причиной.
func (m *OrderMetrics) RecordFailure(operation, reason string) {
	m.operationFailures.WithLabelValues(operation, reason).Inc()
}

// RecordDuration записывает время выполнения операции.
func (m *OrderMetrics) RecordDuration(operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordReconciled фиксирует число позиций по каждому действию diff.
func (m *OrderMetrics) RecordReconciled(removed, updated, created int) {
	m.itemsReconciled.WithLabelValues("remove").Add(float64(removed))
	m.itemsReconciled.WithLabelValues("update").Add(float64(updated))
	m.itemsReconciled.WithLabelValues("create").Add(float64(created))
}

// RecordOutboxEnqueued увеличивает счётчик событий, поставленных в outbox.
func (m *OrderMetrics) RecordOutboxEnqueued() {
	m.outboxEnqueued.Inc()
}
