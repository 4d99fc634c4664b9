package engine

import (
	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/position"
	"github.com/rustyeddy/autotrader/risk"
)

// Reporter periodically summarizes the ledger: held positions with
// their entry slippage, pending orders, and the watch set.
type Reporter struct {
	ledger *position.Ledger
	router *Router
	log    zerolog.Logger
}

func NewReporter(ledger *position.Ledger, router *Router, log zerolog.Logger) *Reporter {
	return &Reporter{
		ledger: ledger,
		router: router,
		log:    log.With().Str("component", "reporter").Logger(),
	}
}

// Report emits one summary log per held position plus a totals line.
func (r *Reporter) Report() {
	var held, buyPending, sellPending int

	for _, rec := range r.ledger.Snapshot() {
		switch rec.State {
		case position.Held:
			held++
			slipPct := risk.Slippage(rec.FillPrice, rec.EntryBasis) * 100
			r.log.Info().
				Str("code", string(rec.Code)).
				Int64("quantity", rec.HeldQuantity).
				Int64("fill_price", int64(rec.FillPrice)).
				Float64("basis", rec.EntryBasis).
				Float64("slippage_pct", slipPct).
				Msg("holding")
		case position.BuyPending:
			buyPending++
		case position.SellPending:
			sellPending++
		}
	}

	r.log.Info().
		Int("held", held).
		Int("buy_pending", buyPending).
		Int("sell_pending", sellPending).
		Int("watched", len(r.router.Watched())).
		Msg("position summary")
}
