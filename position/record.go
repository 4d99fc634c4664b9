// Package position is the in-memory, single-writer table of
// per-instrument trading state. It is rebuilt from broker snapshots at
// startup; there is no backing store.
package position

import "github.com/rustyeddy/autotrader/market"

// State is the per-instrument lifecycle state. An instrument is in
// exactly one state at a time.
type State int

const (
	None State = iota
	BuyPending
	Held
	SellPending
)

func (s State) String() string {
	switch s {
	case None:
		return "NONE"
	case BuyPending:
		return "BUY_PENDING"
	case Held:
		return "HELD"
	case SellPending:
		return "SELL_PENDING"
	default:
		return "UNKNOWN"
	}
}

// Record is the tracked state for one instrument. Same-day-buy
// protection lives on the Ledger, not here: it must outlive the record
// when a position closes or a pending buy is cancelled.
type Record struct {
	Code            market.Code
	State           State
	PendingOrderID  string       // set while BuyPending or SellPending
	PendingQuantity int64        // quantity on the submitted buy; fallback when a fill omits it
	HeldQuantity    int64        // authoritative once a fill or balance snapshot confirms it
	EntryBasis      float64      // intended target before tick adjustment, kept for slippage
	FillPrice       market.Price // actual buy fill
}
