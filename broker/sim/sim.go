// Package sim is a scripted in-memory Gateway. It serves canned
// account snapshots and reference prices, assigns ULID order IDs, and
// can auto-fill submitted orders so a full signal-to-journal cycle
// runs without a brokerage terminal.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/internal/id"
	"github.com/rustyeddy/autotrader/market"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrSessionOver   = errors.New("session over")
)

type Gateway struct {
	mu sync.Mutex

	prevClose map[market.Code]market.Price
	marks     map[market.Code]market.Price // current price, used to fill market orders
	names     map[market.Code]string
	holdings  map[market.Code]broker.Holding
	open      map[string]broker.OpenOrder

	autoFill bool
	slip     market.Price // added to the limit price on auto-filled buys

	events chan broker.Event
	ended  bool
}

func New() *Gateway {
	return &Gateway{
		prevClose: make(map[market.Code]market.Price),
		marks:     make(map[market.Code]market.Price),
		names:     make(map[market.Code]string),
		holdings:  make(map[market.Code]broker.Holding),
		open:      make(map[string]broker.OpenOrder),
		events:    make(chan broker.Event, 256),
	}
}

// AutoFill makes every submitted order fill immediately: buys at the
// limit price plus slip ticks' worth of price, sells at the current
// mark (previous close when no mark is set).
func (g *Gateway) AutoFill(slip market.Price) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.autoFill = true
	g.slip = slip
	return g
}

// SetInstrument seeds the reference data one buy decision needs.
func (g *Gateway) SetInstrument(code market.Code, name string, prevClose market.Price) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.names[code] = name
	g.prevClose[code] = prevClose
	return g
}

// SetMark sets the current price used to fill market sells.
func (g *Gateway) SetMark(code market.Code, price market.Price) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.marks[code] = price
	return g
}

// SeedHolding places a position in the account snapshot, as if bought
// in an earlier session.
func (g *Gateway) SeedHolding(code market.Code, quantity int64, avgPrice market.Price) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.holdings[code] = broker.Holding{Code: code, Quantity: quantity, AvgPrice: avgPrice}
	return g
}

// SeedOpenOrder places an unfilled order in the outstanding snapshot.
func (g *Gateway) SeedOpenOrder(code market.Code, side broker.Side) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	oid := id.New()
	g.open[oid] = broker.OpenOrder{Code: code, OrderID: oid, Side: side}
	return g
}

// Emit scripts one inbound event, e.g. a screening signal.
func (g *Gateway) Emit(ev broker.Event) {
	g.events <- ev
}

// EndSession closes the event feed; Run drains and returns.
func (g *Gateway) EndSession() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.ended {
		g.ended = true
		close(g.events)
	}
}

func (g *Gateway) Login(ctx context.Context) error { return nil }

func (g *Gateway) OutstandingOrders(ctx context.Context, account string) ([]broker.OpenOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]broker.OpenOrder, 0, len(g.open))
	for _, o := range g.open {
		out = append(out, o)
	}
	return out, nil
}

func (g *Gateway) Holdings(ctx context.Context, account string) ([]broker.Holding, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]broker.Holding, 0, len(g.holdings))
	for _, h := range g.holdings {
		out = append(out, h)
	}
	return out, nil
}

func (g *Gateway) PreviousClose(ctx context.Context, code market.Code) (market.Price, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.prevClose[code]
	if !ok {
		return 0, fmt.Errorf("no previous close for %q", code)
	}
	return p, nil
}

func (g *Gateway) MasterName(code market.Code) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.names[code]
}

func (g *Gateway) SubmitOrder(ctx context.Context, req broker.OrderRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ended {
		return "", ErrSessionOver
	}

	oid := id.New()
	g.open[oid] = broker.OpenOrder{Code: req.Code, OrderID: oid, Side: req.Side}

	if g.autoFill {
		g.fillLocked(oid, req)
	}
	return oid, nil
}

func (g *Gateway) fillLocked(oid string, req broker.OrderRequest) {
	fill := req.Price
	if req.Side == broker.Buy {
		fill += g.slip
	}
	if fill == 0 { // market order
		fill = g.marks[req.Code]
		if fill == 0 {
			fill = g.prevClose[req.Code]
		}
	}

	delete(g.open, oid)
	if req.Side == broker.Buy {
		h := g.holdings[req.Code]
		h.Code = req.Code
		h.Quantity += req.Quantity
		h.AvgPrice = fill
		g.holdings[req.Code] = h
	} else {
		delete(g.holdings, req.Code)
	}

	g.events <- broker.OrderEvent{Code: req.Code, OrderID: oid, Side: req.Side, Status: broker.Accepted}
	g.events <- broker.OrderEvent{
		Code: req.Code, OrderID: oid, Side: req.Side, Status: broker.Filled,
		FillPrice: fill, FillQuantity: req.Quantity,
	}
}

func (g *Gateway) CancelOrder(ctx context.Context, account string, code market.Code, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.open[orderID]; !ok {
		return fmt.Errorf("cancel %q: %w", orderID, ErrOrderNotFound)
	}
	delete(g.open, orderID)
	return nil
}

func (g *Gateway) Events() <-chan broker.Event { return g.events }

func (g *Gateway) Close() error {
	g.EndSession()
	return nil
}
