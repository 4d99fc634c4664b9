package broker

import "github.com/rustyeddy/autotrader/market"

// Event is one item on the inbound feed. The engine consumes events
// strictly one at a time in arrival order.
type Event interface {
	event()
}

// SignalKind distinguishes an instrument entering or leaving a
// screening condition's result set.
type SignalKind string

const (
	Enter SignalKind = "ENTER"
	Exit  SignalKind = "EXIT"
)

// SignalEvent is a real-time screening hit: code entered or exited the
// named condition.
type SignalEvent struct {
	Code      market.Code
	Condition string
	Kind      SignalKind
}

// ScanEvent is the initial full result of a condition scan, delivered
// once when the subscription starts.
type ScanEvent struct {
	Condition string
	Codes     []market.Code
}

// OrderStatus of an order event.
type OrderStatus string

const (
	Accepted OrderStatus = "ACCEPTED"
	Filled   OrderStatus = "FILLED"
)

// OrderEvent reports an order ack or fill. FillPrice and FillQuantity
// are set when Status is Filled.
type OrderEvent struct {
	Code         market.Code
	OrderID      string
	Side         Side
	Status       OrderStatus
	FillPrice    market.Price
	FillQuantity int64
}

// BalanceEvent is an out-of-band holdings notice for one instrument.
type BalanceEvent struct {
	Code     market.Code
	Quantity int64
}

// MessageEvent carries a server text message, typically an order
// reject reason.
type MessageEvent struct {
	Text string
}

func (SignalEvent) event()  {}
func (ScanEvent) event()    {}
func (OrderEvent) event()   {}
func (BalanceEvent) event() {}
func (MessageEvent) event() {}
