// Package risk sizes orders under a fixed notional budget and provides
// the slippage/return arithmetic used by the journal.
package risk

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/autotrader/market"
)

// ErrBudgetExceeded means sizing produced a zero quantity: one share at
// the target price already costs more than the per-trade budget. The
// order is skipped, not retried.
var ErrBudgetExceeded = errors.New("risk: target price exceeds per-trade budget")

const (
	DefaultBudget    market.Price = 1_000_000
	DefaultTargetPct              = 0.05
)

// Policy computes the target price and quantity for a new buy. Sells
// are not sized here: the full held quantity from the position ledger
// is always sold.
type Policy struct {
	Budget    market.Price // per-trade notional budget in won
	TargetPct float64      // premium over previous close, e.g. 0.05
}

func DefaultPolicy() Policy {
	return Policy{Budget: DefaultBudget, TargetPct: DefaultTargetPct}
}

// Sizing is the result of SizeBuy.
type Sizing struct {
	Basis    float64      // intended target before tick adjustment
	Target   market.Price // tick-legal limit price
	Quantity int64
}

// SizeBuy derives the limit price and quantity from the previous
// close: basis = prevClose * (1+TargetPct), target = basis normalized
// to the tick grid, quantity = floor(Budget / target).
func (p Policy) SizeBuy(prevClose market.Price) (Sizing, error) {
	if prevClose <= 0 {
		return Sizing{}, fmt.Errorf("size buy: previous close %d: %w", prevClose, market.ErrInvalidPrice)
	}

	basis := float64(prevClose) * (1 + p.TargetPct)
	target, err := market.Normalize(basis)
	if err != nil {
		return Sizing{}, fmt.Errorf("size buy: %w", err)
	}

	qty := int64(p.Budget) / int64(target)
	if qty == 0 {
		return Sizing{}, fmt.Errorf("size buy: target %d, budget %d: %w", target, p.Budget, ErrBudgetExceeded)
	}

	return Sizing{Basis: basis, Target: target, Quantity: qty}, nil
}
