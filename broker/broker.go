// Package broker defines the Gateway capability the trading engine
// consumes: session login, account snapshots, order submission and the
// inbound event feed. Implementations live in broker/bridge (terminal
// websocket bridge) and broker/sim (scripted in-memory gateway).
package broker

import (
	"context"

	"github.com/rustyeddy/autotrader/market"
)

// Side of an order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Gateway abstracts the brokerage terminal. All order submission is
// at-most-once: a failed call is reported, never retried by the
// gateway itself.
type Gateway interface {
	// Login establishes the broker session. No other call is valid
	// before Login returns nil.
	Login(ctx context.Context) error

	// OutstandingOrders returns the account's open (unfilled) orders.
	OutstandingOrders(ctx context.Context, account string) ([]OpenOrder, error)

	// Holdings returns the account's current balance positions.
	Holdings(ctx context.Context, account string) ([]Holding, error)

	// PreviousClose returns the instrument's previous session close.
	PreviousClose(ctx context.Context, code market.Code) (market.Price, error)

	// MasterName returns the instrument's display name, or "" when
	// unknown. Used for log lines only.
	MasterName(code market.Code) string

	// SubmitOrder places an order and returns the broker order ID.
	// Price 0 means a market order.
	SubmitOrder(ctx context.Context, req OrderRequest) (string, error)

	// CancelOrder cancels an outstanding order by its broker ID.
	CancelOrder(ctx context.Context, account string, code market.Code, orderID string) error

	// Events is the serialized inbound feed: screening signals, order
	// acks/fills, balance notices, server messages. The channel closes
	// when the session ends.
	Events() <-chan Event

	Close() error
}

// OpenOrder is one row of the outstanding-order snapshot.
type OpenOrder struct {
	Code    market.Code
	OrderID string
	Side    Side
}

// Holding is one row of the account balance snapshot.
type Holding struct {
	Code     market.Code
	Quantity int64
	AvgPrice market.Price
}

// OrderRequest is a single order submission.
type OrderRequest struct {
	Account  string
	Code     market.Code
	Side     Side
	Quantity int64
	Price    market.Price // 0 = market
}
