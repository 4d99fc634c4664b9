package market

import (
	"errors"
	"math"
)

// ErrInvalidPrice is returned when a non-positive price reaches the
// tick normalizer. It is fatal to the single order attempt, not the
// process.
var ErrInvalidPrice = errors.New("market: price must be positive")

// TickSize returns the minimum legal price increment for the price
// band that contains price (KOSPI/KOSDAQ unified grid).
func TickSize(price float64) Price {
	switch {
	case price < 2_000:
		return 1
	case price < 5_000:
		return 5
	case price < 20_000:
		return 10
	case price < 50_000:
		return 50
	case price < 200_000:
		return 100
	case price < 500_000:
		return 500
	default:
		return 1_000
	}
}

// Normalize maps a raw price onto the exchange-legal tick grid by
// rounding to the nearest tick, e.g. 103,698 -> 103,700. Idempotent:
// a price already on the grid comes back unchanged.
func Normalize(raw float64) (Price, error) {
	if !(raw > 0) || math.IsInf(raw, 1) {
		return 0, ErrInvalidPrice
	}
	unit := TickSize(raw)
	return Price(math.Round(raw/float64(unit))) * unit, nil
}
