package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/position"
	"github.com/rustyeddy/autotrader/risk"
)

// Reconciler rebuilds the position ledger from the broker's
// authoritative snapshots after login and before any signal is acted
// on. The ordering matters: an instrument whose pending order or
// holding has not been loaded yet would otherwise be double-bought on
// restart.
type Reconciler struct {
	account string
	gw      broker.Gateway
	ledger  *position.Ledger
	policy  risk.Policy
	log     zerolog.Logger
}

func NewReconciler(account string, gw broker.Gateway, ledger *position.Ledger, policy risk.Policy, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		account: account,
		gw:      gw,
		ledger:  ledger,
		policy:  policy,
		log:     log.With().Str("component", "reconciler").Logger(),
	}
}

// Run executes both snapshot queries in order. Any failure is a
// ReconciliationError and the caller must not begin trading.
func (r *Reconciler) Run(ctx context.Context) error {
	orders, err := r.gw.OutstandingOrders(ctx, r.account)
	if err != nil {
		return &ReconciliationError{Step: "outstanding orders", Err: err}
	}

	restored := 0
	for _, o := range orders {
		// Open sell orders are not tracked beyond submission.
		if o.Side != broker.Buy {
			continue
		}
		r.ledger.RestoreBuyPending(o.Code, o.OrderID)
		restored++
	}
	r.log.Info().Int("count", restored).Msg("outstanding buy orders restored")

	holdings, err := r.gw.Holdings(ctx, r.account)
	if err != nil {
		return &ReconciliationError{Step: "holdings", Err: err}
	}

	held := 0
	for _, h := range holdings {
		if h.Quantity <= 0 {
			continue
		}
		if rec, ok := r.ledger.Get(h.Code); ok && rec.State == position.BuyPending {
			continue
		}
		// Holdings predating this run have no true original target;
		// synthesize the basis from the previous close so slippage
		// reporting stays defined.
		basis := float64(h.AvgPrice)
		if prev, err := r.gw.PreviousClose(ctx, h.Code); err == nil && prev > 0 {
			basis = float64(prev) * (1 + r.policy.TargetPct)
		}
		code := h.Code
		qty := h.Quantity
		avg := h.AvgPrice
		r.ledger.Upsert(code, func(rec *position.Record) {
			rec.State = position.Held
			rec.PendingOrderID = ""
			rec.HeldQuantity = qty
			rec.EntryBasis = basis
			rec.FillPrice = avg
		})
		held++
	}
	r.log.Info().Int("count", held).Msg("holdings restored")

	return nil
}
