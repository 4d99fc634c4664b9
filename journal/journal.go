// Package journal is the trade ledger: one open row per buy, closed in
// place by the matching sell. CSV and SQLite backends are provided;
// the engine depends only on the Journal interface, so any persistent
// store can substitute.
package journal

import (
	"errors"
	"time"

	"github.com/rustyeddy/autotrader/market"
)

// ErrNoOpenTrade is returned by CloseTrade when no open row exists for
// the instrument. The caller records the sell as an orphaned close
// rather than dropping it.
var ErrNoOpenTrade = errors.New("journal: no open trade for instrument")

// Status of a trade row.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
	StatusOrphan Status = "ORPHAN" // sell fill with no matching open row
)

// TradeRecord is one round trip. Basis is the intended entry price
// before tick adjustment; SlippagePct measures the buy fill against
// it.
type TradeRecord struct {
	TradeID     string
	Code        market.Code
	Name        string
	Quantity    int64
	Basis       float64
	BuyPrice    market.Price
	SlippagePct float64
	OpenTime    time.Time
	SellPrice   market.Price
	CloseTime   time.Time
	HoldingDays int
	ReturnPct   float64
	Status      Status
	Reason      string
}

// Journal records trade rows. At most one open row exists per
// instrument at a time.
type Journal interface {
	// OpenTrade appends an open row for a buy fill.
	OpenTrade(rec TradeRecord) error

	// CloseTrade locates the most recent open row for code and closes
	// it: sell price, close time, business-day holding period and
	// return percent. ErrNoOpenTrade when nothing is open.
	CloseTrade(code market.Code, sellPrice market.Price, at time.Time, reason string) (TradeRecord, error)

	// RecordOrphan records a sell fill that matched no open row.
	RecordOrphan(code market.Code, sellPrice market.Price, at time.Time) error

	Close() error
}

// closeFields fills the close side of an open row.
func closeFields(rec *TradeRecord, sellPrice market.Price, at time.Time, reason string) {
	rec.SellPrice = sellPrice
	rec.CloseTime = at
	rec.HoldingDays = market.BusinessDays(rec.OpenTime, at)
	if rec.BuyPrice > 0 {
		rec.ReturnPct = (float64(sellPrice) - float64(rec.BuyPrice)) / float64(rec.BuyPrice) * 100
	}
	rec.Status = StatusClosed
	rec.Reason = reason
}

// orphanRecord builds the standalone anomaly row for an unmatched sell.
func orphanRecord(tradeID string, code market.Code, sellPrice market.Price, at time.Time) TradeRecord {
	return TradeRecord{
		TradeID:   tradeID,
		Code:      code,
		SellPrice: sellPrice,
		CloseTime: at,
		Status:    StatusOrphan,
		Reason:    "sell fill without open trade",
	}
}
