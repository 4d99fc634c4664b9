package bridge

import (
	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/market"
)

// Request ops understood by the bridge.
const (
	opLogin      = "login"
	opOpenOrders = "open_orders"
	opHoldings   = "holdings"
	opPrevClose  = "prev_close"
	opMasterName = "master_name"
	opSubmit     = "submit"
	opCancel     = "cancel"
)

// Event kinds pushed by the bridge.
const (
	evSignal  = "signal"
	evScan    = "scan"
	evOrder   = "order"
	evBalance = "balance"
	evMessage = "message"
)

// frame is the single wire shape, requests and replies and pushed
// events alike. A frame with an ID is a request or its reply; a frame
// with an Event is a push.
type frame struct {
	ID    string `json:"id,omitempty"`
	Op    string `json:"op,omitempty"`
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
	Event string `json:"event,omitempty"`

	Account  string `json:"account,omitempty"`
	Code     string `json:"code,omitempty"`
	Side     string `json:"side,omitempty"`
	Quantity int64  `json:"quantity,omitempty"`
	Price    int64  `json:"price,omitempty"`
	OrderID  string `json:"order_id,omitempty"`
	Name     string `json:"name,omitempty"`

	Orders   []wireOrder   `json:"orders,omitempty"`
	Holdings []wireHolding `json:"holdings,omitempty"`

	Condition string   `json:"condition,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	Codes     []string `json:"codes,omitempty"`
	Status    string   `json:"status,omitempty"`
	FillPrice int64    `json:"fill_price,omitempty"`
	FillQty   int64    `json:"fill_quantity,omitempty"`
	Text      string   `json:"text,omitempty"`
}

type wireOrder struct {
	Code    string `json:"code"`
	OrderID string `json:"order_id"`
	Side    string `json:"side"`
}

type wireHolding struct {
	Code     string `json:"code"`
	Quantity int64  `json:"quantity"`
	AvgPrice int64  `json:"avg_price"`
}

// toEvent converts a pushed frame into the engine's event type.
func (f frame) toEvent() (broker.Event, bool) {
	switch f.Event {
	case evSignal:
		return broker.SignalEvent{
			Code:      market.Code(f.Code),
			Condition: f.Condition,
			Kind:      broker.SignalKind(f.Kind),
		}, true
	case evScan:
		codes := make([]market.Code, 0, len(f.Codes))
		for _, c := range f.Codes {
			codes = append(codes, market.Code(c))
		}
		return broker.ScanEvent{Condition: f.Condition, Codes: codes}, true
	case evOrder:
		return broker.OrderEvent{
			Code:         market.Code(f.Code),
			OrderID:      f.OrderID,
			Side:         broker.Side(f.Side),
			Status:       broker.OrderStatus(f.Status),
			FillPrice:    market.Price(f.FillPrice),
			FillQuantity: f.FillQty,
		}, true
	case evBalance:
		return broker.BalanceEvent{Code: market.Code(f.Code), Quantity: f.Quantity}, true
	case evMessage:
		return broker.MessageEvent{Text: f.Text}, true
	default:
		return nil, false
	}
}
