package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/market"
	"github.com/rustyeddy/autotrader/position"
	"github.com/rustyeddy/autotrader/risk"
)

func newTestEngine(gw *fakeGateway) (*Engine, *position.Ledger, *memJournal) {
	ledger := position.NewLedger()
	j := newMemJournal()
	e := New(Params{
		Account:          "8112345611",
		Gateway:          gw,
		Ledger:           ledger,
		Journal:          j,
		Policy:           risk.DefaultPolicy(),
		BuyCondition:     "surge-basic",
		SellCondition:    "surge-exit",
		CancelFromMinute: 15*60 + 20,
		CloseMinute:      15*60 + 30,
		SweepEvery:       time.Hour,
		ReportEvery:      time.Hour,
		Logger:           zerolog.Nop(),
	})
	return e, ledger, j
}

func runEngine(t *testing.T, e *Engine, ctx context.Context) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	return done
}

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
		return nil
	}
}

func TestRunLoginFailure(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.loginErr = errors.New("credentials rejected")
	e, _, _ := newTestEngine(gw)

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "login")
}

func TestRunFailClosedOnReconciliation(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.holdingsErr = errors.New("tr timeout")
	gw.events <- broker.SignalEvent{Code: "005930", Condition: "surge-basic", Kind: broker.Enter}
	e, _, _ := newTestEngine(gw)

	err := e.Run(context.Background())
	var rerr *ReconciliationError
	require.ErrorAs(t, err, &rerr)
	assert.Empty(t, gw.submitted(), "no order may go out before reconciliation succeeds")
}

func TestRunFullTradeCycle(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.prevClose["005930"] = 98_760
	e, ledger, j := newTestEngine(gw)

	// Yesterday's entry: held and journaled, eligible for a sell today.
	ledger.MarkHeld("000660", 9, 103_800)
	require.NoError(t, j.OpenTrade(tradeOpenedAt("000660", 103_800, time.Now().AddDate(0, 0, -4))))

	gw.events <- broker.ScanEvent{Condition: "surge-basic", Codes: []market.Code{"005930"}}
	gw.events <- broker.OrderEvent{Code: "005930", OrderID: "ORD-1", Side: broker.Buy, Status: broker.Accepted}
	gw.events <- broker.OrderEvent{Code: "005930", OrderID: "ORD-1", Side: broker.Buy, Status: broker.Filled, FillPrice: 103_800, FillQuantity: 9}
	gw.events <- broker.SignalEvent{Code: "000660", Condition: "surge-exit", Kind: broker.Enter}
	gw.events <- broker.OrderEvent{Code: "000660", OrderID: "ORD-2", Side: broker.Sell, Status: broker.Filled, FillPrice: 106_000}
	gw.events <- broker.MessageEvent{Text: "server notice"}
	close(gw.events)

	require.NoError(t, waitErr(t, runEngine(t, e, context.Background())))

	orders := gw.submitted()
	require.Len(t, orders, 2)
	assert.Equal(t, broker.Buy, orders[0].Side)
	assert.Equal(t, broker.Sell, orders[1].Side)

	rec, ok := ledger.Get("005930")
	require.True(t, ok)
	assert.Equal(t, position.Held, rec.State)
	_, ok = ledger.Get("000660")
	assert.False(t, ok)

	assert.Equal(t, 1, j.openCount())
	require.Len(t, j.closed, 1)
	assert.Equal(t, "000660", string(j.closed[0].Code))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	e, _, _ := newTestEngine(gw)

	ctx, cancel := context.WithCancel(context.Background())
	done := runEngine(t, e, ctx)
	cancel()

	assert.ErrorIs(t, waitErr(t, done), context.Canceled)
}

func TestSweepOneShot(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	e, ledger, _ := newTestEngine(gw)
	ledger.MarkBuyPending("005930", "0001111", 103_698, 9)

	e.now = func() time.Time { return time.Date(2026, 2, 23, 15, 25, 0, 0, time.Local) }
	assert.Equal(t, 1, e.Sweep(context.Background()))
	assert.Equal(t, []string{"0001111"}, gw.cancelled())
}
