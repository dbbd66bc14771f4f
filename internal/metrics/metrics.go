package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// TillMetrics records till activity. A nil *TillMetrics records nothing.
type TillMetrics struct {
	salesConfirmed  *prometheus.CounterVec
	salesAmount     *prometheus.CounterVec
	cartRejections  *prometheus.CounterVec
	sessionsOpened  prometheus.Counter
	sessionsClosed  prometheus.Counter
	closeDifference prometheus.Histogram
	cashMovements   *prometheus.CounterVec
	suspendedCarts  prometheus.Counter
}

// New registers till metrics on registerer. A nil registerer uses a
// private registry, which keeps tests independent.
func New(registerer prometheus.Registerer, env string) *TillMetrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	if env == "" {
		env = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": "pos-till",
		"env":     env,
	}

	m := &TillMetrics{
		salesConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pos_sales_confirmed_total",
			Help:        "Confirmed sales by payment method.",
			ConstLabels: constLabels,
		}, []string{"method"}),
		salesAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pos_sales_amount_total",
			Help:        "Sum of confirmed sale totals by payment method.",
			ConstLabels: constLabels,
		}, []string{"method"}),
		cartRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pos_checkout_rejections_total",
			Help:        "Checkout attempts rejected before reaching the ledger.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pos_cash_sessions_opened_total",
			Help:        "Cash sessions opened.",
			ConstLabels: constLabels,
		}),
		sessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pos_cash_sessions_closed_total",
			Help:        "Cash sessions closed.",
			ConstLabels: constLabels,
		}),
		closeDifference: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "pos_cash_close_difference",
			Help:        "Counted minus expected cash at session close.",
			Buckets:     []float64{-1000, -100, -10, -1, 0, 1, 10, 100, 1000},
			ConstLabels: constLabels,
		}),
		cashMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pos_cash_movements_total",
			Help:        "Manual cash movements by type.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		suspendedCarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pos_carts_suspended_total",
			Help:        "Carts suspended for later.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(
		m.salesConfirmed,
		m.salesAmount,
		m.cartRejections,
		m.sessionsOpened,
		m.sessionsClosed,
		m.closeDifference,
		m.cashMovements,
		m.suspendedCarts,
	)
	return m
}

// Nop returns metrics bound to a throwaway registry.
func Nop() *TillMetrics {
	return New(nil, "test")
}

func (m *TillMetrics) SaleConfirmed(method string, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.salesConfirmed.WithLabelValues(method).Inc()
	m.salesAmount.WithLabelValues(method).Add(total.InexactFloat64())
}

func (m *TillMetrics) CheckoutRejected(reason string) {
	if m == nil {
		return
	}
	m.cartRejections.WithLabelValues(reason).Inc()
}

func (m *TillMetrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
}

func (m *TillMetrics) SessionClosed(difference decimal.Decimal) {
	if m == nil {
		return
	}
	m.sessionsClosed.Inc()
	m.closeDifference.Observe(difference.InexactFloat64())
}

func (m *TillMetrics) CashMovement(kind string) {
	if m == nil {
		return
	}
	m.cashMovements.WithLabelValues(kind).Inc()
}

func (m *TillMetrics) CartSuspended() {
	if m == nil {
		return
	}
	m.suspendedCarts.Inc()
}
