package risk

import (
	"time"

	"github.com/rustyeddy/autotrader/market"
)

// Slippage is the fractional deviation between the intended entry
// basis and the actual fill, e.g. fill 103,800 against basis 103,698
// is ~0.00098.
func Slippage(fill market.Price, basis float64) float64 {
	if basis == 0 {
		return 0
	}
	return (float64(fill) - basis) / basis
}

// ReturnPct is the round-trip return in percent: (sell-buy)/buy * 100.
func ReturnPct(sell, buy market.Price) float64 {
	if buy == 0 {
		return 0
	}
	return (float64(sell) - float64(buy)) / float64(buy) * 100
}

// HoldingDays counts business days between entry and exit.
func HoldingDays(open, close time.Time) int {
	return market.BusinessDays(open, close)
}
