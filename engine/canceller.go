package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/position"
)

// Canceller sweeps the ledger near session close and cancels stale
// pending buys that will not fill today.
//
// The pending entry is cleared as soon as the cancel is submitted,
// without waiting for the cancel ack. That keeps the next sweep from
// resubmitting the cancel; a fill racing the cancel resolves through
// the normal order-event path as an untracked fill.
type Canceller struct {
	account    string
	gw         broker.Gateway
	ledger     *position.Ledger
	log        zerolog.Logger
	fromMinute int // cancel window start, minutes past local midnight
	toMinute   int // session close
}

func NewCanceller(account string, gw broker.Gateway, ledger *position.Ledger, fromMinute, toMinute int, log zerolog.Logger) *Canceller {
	return &Canceller{
		account:    account,
		gw:         gw,
		ledger:     ledger,
		log:        log.With().Str("component", "canceller").Logger(),
		fromMinute: fromMinute,
		toMinute:   toMinute,
	}
}

// Sweep cancels every pending buy if now is inside the closing window.
// It returns the number of cancels submitted.
func (c *Canceller) Sweep(ctx context.Context, now time.Time) int {
	minute := now.Hour()*60 + now.Minute()
	if minute < c.fromMinute || minute >= c.toMinute {
		return 0
	}

	pending := c.ledger.InState(position.BuyPending)
	if len(pending) == 0 {
		return 0
	}

	c.log.Info().Int("count", len(pending)).Msg("session close approaching, cancelling pending buys")

	cancelled := 0
	for _, rec := range pending {
		if err := c.gw.CancelOrder(ctx, c.account, rec.Code, rec.PendingOrderID); err != nil {
			gerr := &GatewayError{Op: "cancel", Code: rec.Code, Err: err}
			// Entry stays; the next sweep retries the cancel.
			c.log.Error().Str("order_id", rec.PendingOrderID).Msg(gerr.Error())
			continue
		}
		c.ledger.ClearPending(rec.Code)
		mtxCancels.Inc()
		cancelled++
		c.log.Info().Str("code", string(rec.Code)).Str("order_id", rec.PendingOrderID).Msg("pending buy cancelled")
	}
	return cancelled
}
