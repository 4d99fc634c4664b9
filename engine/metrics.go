package engine

import "github.com/prometheus/client_golang/prometheus"

// Engine metrics, registered in init() and served by the /metrics
// handler the CLI starts.

var (
	mtxOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotrader_orders_total",
			Help: "Orders submitted to the gateway",
		},
		[]string{"side"},
	)

	mtxSkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotrader_order_skips_total",
			Help: "Signals that produced no order, by reason",
		},
		[]string{"reason"},
	)

	mtxFills = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotrader_fills_total",
			Help: "Order fills applied to the position ledger",
		},
		[]string{"side"},
	)

	mtxCancels = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autotrader_cancels_total",
			Help: "Stale pending buys cancelled by the expiry sweep",
		},
	)

	mtxOrphans = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autotrader_orphan_closes_total",
			Help: "Sell fills with no matching open trade",
		},
	)
)

func init() {
	prometheus.MustRegister(mtxOrders, mtxSkips, mtxFills, mtxCancels, mtxOrphans)
}

// skip reasons; these become the "reason" label and the log field.
const (
	skipBuyPending     = "buy_pending"
	skipAlreadyHeld    = "already_held"
	skipSellPending    = "sell_pending"
	skipBoughtToday    = "bought_today"
	skipNoPrevClose    = "no_prev_close"
	skipBudgetExceeded = "budget_exceeded"
	skipGatewayError   = "gateway_error"
	skipNothingToSell  = "nothing_to_sell"
)
