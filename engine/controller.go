package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/position"
	"github.com/rustyeddy/autotrader/risk"
)

// Controller drives the per-instrument order state machine:
// NONE -> BUY_PENDING -> HELD -> SELL_PENDING -> closed. It is the
// single writer of the position ledger alongside the startup
// reconciler, and only ever runs on the dispatcher goroutine.
//
// Partial fills are treated as full: the first fill notice moves the
// position to HELD, matching the terminal's simplified fill feed.
type Controller struct {
	account string
	gw      broker.Gateway
	ledger  *position.Ledger
	journal journal.Journal
	policy  risk.Policy
	log     zerolog.Logger
	now     func() time.Time
}

func NewController(account string, gw broker.Gateway, ledger *position.Ledger, j journal.Journal, policy risk.Policy, log zerolog.Logger) *Controller {
	return &Controller{
		account: account,
		gw:      gw,
		ledger:  ledger,
		journal: j,
		policy:  policy,
		log:     log.With().Str("component", "controller").Logger(),
		now:     time.Now,
	}
}

// Buy handles a buy signal for code: guard, size, submit a limit buy.
// Every skip is logged with the reason; nothing here aborts the event
// stream.
func (c *Controller) Buy(ctx context.Context, code market.Code, condition string) {
	name := c.gw.MasterName(code)
	log := c.log.With().Str("code", string(code)).Str("name", name).Str("condition", condition).Logger()

	if rec, ok := c.ledger.Get(code); ok {
		switch rec.State {
		case position.BuyPending:
			c.skip(log, skipBuyPending, "buy order already pending")
			return
		case position.Held:
			c.skip(log, skipAlreadyHeld, "already holding")
			return
		case position.SellPending:
			c.skip(log, skipSellPending, "sell order pending")
			return
		}
	}
	if c.ledger.BoughtToday(code) {
		c.skip(log, skipBoughtToday, "already bought this session")
		return
	}

	prevClose, err := c.gw.PreviousClose(ctx, code)
	if err != nil || prevClose <= 0 {
		c.skip(log, skipNoPrevClose, "previous close unavailable")
		return
	}

	sz, err := c.policy.SizeBuy(prevClose)
	if err != nil {
		reason := skipNoPrevClose
		if errors.Is(err, risk.ErrBudgetExceeded) {
			reason = skipBudgetExceeded
		}
		c.skip(log, reason, err.Error())
		return
	}

	orderID, err := c.gw.SubmitOrder(ctx, broker.OrderRequest{
		Account:  c.account,
		Code:     code,
		Side:     broker.Buy,
		Quantity: sz.Quantity,
		Price:    sz.Target,
	})
	if err != nil {
		gerr := &GatewayError{Op: "submit buy", Code: code, Err: err}
		log.Error().Str("reason", skipGatewayError).Msg(gerr.Error())
		mtxSkips.WithLabelValues(skipGatewayError).Inc()
		return
	}

	c.ledger.MarkBuyPending(code, orderID, sz.Basis, sz.Quantity)
	mtxOrders.WithLabelValues(string(broker.Buy)).Inc()
	log.Info().
		Int64("prev_close", prevClose).
		Int64("target", int64(sz.Target)).
		Int64("quantity", sz.Quantity).
		Str("order_id", orderID).
		Msg("limit buy submitted")
}

// Sell handles a sell signal for code: market sell of the full held
// quantity, unless same-day protection or the state machine says no.
func (c *Controller) Sell(ctx context.Context, code market.Code, condition string) {
	name := c.gw.MasterName(code)
	log := c.log.With().Str("code", string(code)).Str("name", name).Str("condition", condition).Logger()

	if c.ledger.BoughtToday(code) {
		c.skip(log, skipBoughtToday, "bought this session, same-day sell suppressed")
		return
	}

	rec, ok := c.ledger.Get(code)
	if !ok || rec.State != position.Held || rec.HeldQuantity <= 0 {
		c.skip(log, skipNothingToSell, "nothing to sell")
		return
	}

	orderID, err := c.gw.SubmitOrder(ctx, broker.OrderRequest{
		Account:  c.account,
		Code:     code,
		Side:     broker.Sell,
		Quantity: rec.HeldQuantity,
		Price:    0, // market
	})
	if err != nil {
		gerr := &GatewayError{Op: "submit sell", Code: code, Err: err}
		log.Error().Str("reason", skipGatewayError).Msg(gerr.Error())
		mtxSkips.WithLabelValues(skipGatewayError).Inc()
		return
	}

	c.ledger.MarkSellPending(code, orderID)
	mtxOrders.WithLabelValues(string(broker.Sell)).Inc()
	log.Info().Int64("quantity", rec.HeldQuantity).Str("order_id", orderID).Msg("market sell submitted")
}

// HandleOrderEvent applies a broker ack or fill to the ledger and
// journal. Duplicate or out-of-order events are no-ops.
func (c *Controller) HandleOrderEvent(ctx context.Context, ev broker.OrderEvent) {
	_ = ctx
	log := c.log.With().
		Str("code", string(ev.Code)).
		Str("side", string(ev.Side)).
		Str("status", string(ev.Status)).
		Str("order_id", ev.OrderID).
		Logger()

	rec, ok := c.ledger.Get(ev.Code)

	switch {
	case ev.Side == broker.Buy && ev.Status == broker.Accepted:
		if !ok || rec.State != position.BuyPending {
			log.Debug().Msg("buy ack for untracked order")
			return
		}
		c.ledger.SetPendingOrderID(ev.Code, ev.OrderID)
		log.Info().Msg("buy order accepted")

	case ev.Side == broker.Buy && ev.Status == broker.Filled:
		if !ok || rec.State != position.BuyPending {
			log.Debug().Msg("buy fill for untracked order")
			return
		}
		qty := ev.FillQuantity
		if qty == 0 {
			qty = rec.PendingQuantity
		}
		slipPct := risk.Slippage(ev.FillPrice, rec.EntryBasis) * 100

		if err := c.journal.OpenTrade(journal.TradeRecord{
			Code:        ev.Code,
			Name:        c.gw.MasterName(ev.Code),
			Quantity:    qty,
			Basis:       rec.EntryBasis,
			BuyPrice:    ev.FillPrice,
			SlippagePct: slipPct,
			OpenTime:    c.now(),
		}); err != nil {
			log.Error().Err(err).Msg("journal open trade")
		}

		c.ledger.MarkHeld(ev.Code, qty, ev.FillPrice)
		mtxFills.WithLabelValues(string(broker.Buy)).Inc()
		log.Info().
			Int64("fill_price", int64(ev.FillPrice)).
			Int64("quantity", qty).
			Float64("slippage_pct", slipPct).
			Msg("buy filled")

	case ev.Side == broker.Sell && ev.Status == broker.Filled:
		if !ok || rec.State != position.SellPending {
			log.Debug().Msg("sell fill for untracked order")
			return
		}
		closed, err := c.journal.CloseTrade(ev.Code, ev.FillPrice, c.now(), "sell signal")
		switch {
		case errors.Is(err, journal.ErrNoOpenTrade):
			log.Warn().Msg("orphaned close: sell fill without open trade")
			mtxOrphans.Inc()
			if oerr := c.journal.RecordOrphan(ev.Code, ev.FillPrice, c.now()); oerr != nil {
				log.Error().Err(oerr).Msg("journal orphan close")
			}
		case err != nil:
			log.Error().Err(err).Msg("journal close trade")
		default:
			log.Info().
				Int64("sell_price", int64(ev.FillPrice)).
				Int("holding_days", closed.HoldingDays).
				Float64("return_pct", closed.ReturnPct).
				Msg("position closed")
		}

		c.ledger.Remove(ev.Code)
		mtxFills.WithLabelValues(string(broker.Sell)).Inc()

	default:
		log.Debug().Msg("order event ignored")
	}
}

// HandleBalance applies an out-of-band holdings notice. An untracked
// instrument showing up with quantity means the account holds it; it
// becomes HELD so a later sell signal can act on it.
func (c *Controller) HandleBalance(ev broker.BalanceEvent) {
	if ev.Quantity <= 0 {
		return
	}
	rec, ok := c.ledger.Get(ev.Code)
	if ok && rec.State != position.Held {
		return // pending legs resolve through order events
	}
	c.ledger.MarkHeld(ev.Code, ev.Quantity, rec.FillPrice)
	if !ok {
		c.log.Info().Str("code", string(ev.Code)).Int64("quantity", ev.Quantity).Msg("holding discovered from balance notice")
	}
}

func (c *Controller) skip(log zerolog.Logger, reason, msg string) {
	mtxSkips.WithLabelValues(reason).Inc()
	log.Info().Str("reason", reason).Msg("skip: " + msg)
}
