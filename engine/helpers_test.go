package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/market"
)

// fakeGateway records every call and serves canned snapshots.
type fakeGateway struct {
	mu sync.Mutex

	loginErr       error
	outstanding    []broker.OpenOrder
	outstandingErr error
	holdings       []broker.Holding
	holdingsErr    error
	prevClose      map[market.Code]market.Price
	submitErr      error
	cancelErr      error

	orders  []broker.OrderRequest
	cancels []string
	nextID  int

	events chan broker.Event
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		prevClose: make(map[market.Code]market.Price),
		events:    make(chan broker.Event, 64),
	}
}

func (g *fakeGateway) Login(ctx context.Context) error { return g.loginErr }

func (g *fakeGateway) OutstandingOrders(ctx context.Context, account string) ([]broker.OpenOrder, error) {
	return g.outstanding, g.outstandingErr
}

func (g *fakeGateway) Holdings(ctx context.Context, account string) ([]broker.Holding, error) {
	return g.holdings, g.holdingsErr
}

func (g *fakeGateway) PreviousClose(ctx context.Context, code market.Code) (market.Price, error) {
	p, ok := g.prevClose[code]
	if !ok {
		return 0, fmt.Errorf("no previous close for %s", code)
	}
	return p, nil
}

func (g *fakeGateway) MasterName(code market.Code) string { return "Stock " + string(code) }

func (g *fakeGateway) SubmitOrder(ctx context.Context, req broker.OrderRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.submitErr != nil {
		return "", g.submitErr
	}
	g.nextID++
	g.orders = append(g.orders, req)
	return fmt.Sprintf("ORD-%d", g.nextID), nil
}

func (g *fakeGateway) CancelOrder(ctx context.Context, account string, code market.Code, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancels = append(g.cancels, orderID)
	return nil
}

func (g *fakeGateway) Events() <-chan broker.Event { return g.events }
func (g *fakeGateway) Close() error                { return nil }

func (g *fakeGateway) submitted() []broker.OrderRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]broker.OrderRequest, len(g.orders))
	copy(out, g.orders)
	return out
}

func (g *fakeGateway) cancelled() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.cancels))
	copy(out, g.cancels)
	return out
}

// memJournal is an in-memory Journal with the same one-open-row-per-
// instrument contract as the real backends.
type memJournal struct {
	mu      sync.Mutex
	open    map[market.Code]journal.TradeRecord
	closed  []journal.TradeRecord
	orphans []market.Code
}

func newMemJournal() *memJournal {
	return &memJournal{open: make(map[market.Code]journal.TradeRecord)}
}

func (m *memJournal) OpenTrade(rec journal.TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Status = journal.StatusOpen
	m.open[rec.Code] = rec
	return nil
}

func (m *memJournal) CloseTrade(code market.Code, sellPrice market.Price, at time.Time, reason string) (journal.TradeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.open[code]
	if !ok {
		return journal.TradeRecord{}, journal.ErrNoOpenTrade
	}
	delete(m.open, code)

	rec.SellPrice = sellPrice
	rec.CloseTime = at
	rec.HoldingDays = market.BusinessDays(rec.OpenTime, at)
	if rec.BuyPrice > 0 {
		rec.ReturnPct = (float64(sellPrice) - float64(rec.BuyPrice)) / float64(rec.BuyPrice) * 100
	}
	rec.Status = journal.StatusClosed
	rec.Reason = reason
	m.closed = append(m.closed, rec)
	return rec, nil
}

func (m *memJournal) RecordOrphan(code market.Code, sellPrice market.Price, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orphans = append(m.orphans, code)
	return nil
}

func (m *memJournal) Close() error { return nil }

func tradeOpenedAt(code market.Code, buy market.Price, at time.Time) journal.TradeRecord {
	return journal.TradeRecord{
		Code:     code,
		Name:     "Stock " + string(code),
		Quantity: 9,
		Basis:    float64(buy),
		BuyPrice: buy,
		OpenTime: at,
	}
}

func (m *memJournal) openCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}
