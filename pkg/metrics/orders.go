package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/stallpos/pkg/enums"
)

// OrderMetrics counts order lifecycle events. It satisfies the store's
// recorder interface.
type OrderMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	persistFail prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders placed.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order status changes by target status.",
	}, []string{"status"})
	persistFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_persist_failures_total",
		Help: "State document writes that failed.",
	})
	reg.MustRegister(created, transitions, persistFail)
	return &OrderMetrics{
		created:     created,
		transitions: transitions,
		persistFail: persistFail,
	}
}

func (m *OrderMetrics) OrderCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

func (m *OrderMetrics) OrderTransitioned(status enums.OrderStatus) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status.String())).Inc()
}

func (m *OrderMetrics) PersistFailed() {
	if m == nil || m.persistFail == nil {
		return
	}
	m.persistFail.Inc()
}
