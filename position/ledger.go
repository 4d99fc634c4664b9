package position

import (
	"sort"
	"sync"

	"github.com/rustyeddy/autotrader/market"
)

// Ledger maps instrument codes to their Record. Writers are the order
// lifecycle controller and the startup reconciler; everyone else reads
// through Get/Snapshot copies.
type Ledger struct {
	mu     sync.RWMutex
	recs   map[market.Code]*Record
	bought map[market.Code]bool // codes bought this session; only a restart clears it
}

func NewLedger() *Ledger {
	return &Ledger{
		recs:   make(map[market.Code]*Record),
		bought: make(map[market.Code]bool),
	}
}

// BoughtToday reports whether a buy order was submitted for code in
// this session. Sell signals for such codes are suppressed for the
// rest of the session (same-day round-trip protection).
func (l *Ledger) BoughtToday(code market.Code) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bought[code]
}

// Get returns a copy of the record for code.
func (l *Ledger) Get(code market.Code) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.recs[code]
	if !ok {
		return Record{Code: code}, false
	}
	return *r, true
}

// Upsert applies fn to the record for code, creating it on first
// reference.
func (l *Ledger) Upsert(code market.Code, fn func(*Record)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.recs[code]
	if !ok {
		r = &Record{Code: code}
		l.recs[code] = r
	}
	fn(r)
}

// Remove drops the record for code entirely. BoughtToday protection is
// carried separately by the caller when it must outlive the record.
func (l *Ledger) Remove(code market.Code) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.recs, code)
}

// Snapshot returns copies of all records, ordered by code.
func (l *Ledger) Snapshot() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, 0, len(l.recs))
	for _, r := range l.recs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// InState returns copies of all records currently in state s.
func (l *Ledger) InState(s State) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, 0)
	for _, r := range l.recs {
		if r.State == s {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// MarkBuyPending records a limit buy submitted this session. The order
// ID may be empty until the broker ack arrives.
func (l *Ledger) MarkBuyPending(code market.Code, orderID string, basis float64, qty int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.recs[code]
	if !ok {
		r = &Record{Code: code}
		l.recs[code] = r
	}
	r.State = BuyPending
	r.PendingOrderID = orderID
	r.PendingQuantity = qty
	r.EntryBasis = basis
	l.bought[code] = true
}

// RestoreBuyPending rebuilds a pending buy found in the broker's
// outstanding-order snapshot. Orders submitted by an earlier process
// run do not trip the same-day protection, matching the snapshot-based
// restart semantics.
func (l *Ledger) RestoreBuyPending(code market.Code, orderID string) {
	l.Upsert(code, func(r *Record) {
		r.State = BuyPending
		r.PendingOrderID = orderID
	})
}

// SetPendingOrderID updates the broker order ID on an ack without
// touching the rest of the record.
func (l *Ledger) SetPendingOrderID(code market.Code, orderID string) {
	l.Upsert(code, func(r *Record) {
		r.PendingOrderID = orderID
	})
}

// MarkHeld confirms a holding. Setting the held quantity always clears
// the pending order ID: a position is never pending and confirmed held
// for the same order leg.
func (l *Ledger) MarkHeld(code market.Code, qty int64, fill market.Price) {
	l.Upsert(code, func(r *Record) {
		r.State = Held
		r.PendingOrderID = ""
		r.HeldQuantity = qty
		if fill > 0 {
			r.FillPrice = fill
		}
	})
}

// MarkSellPending records a submitted market sell for the full held
// quantity.
func (l *Ledger) MarkSellPending(code market.Code, orderID string) {
	l.Upsert(code, func(r *Record) {
		r.State = SellPending
		r.PendingOrderID = orderID
	})
}

// ClearPending resolves a pending buy that will not fill (cancelled at
// session close). The record reverts to untracked.
func (l *Ledger) ClearPending(code market.Code) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.recs[code]
	if !ok || r.State != BuyPending {
		return
	}
	delete(l.recs, code)
}
