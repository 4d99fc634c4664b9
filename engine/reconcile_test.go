package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/position"
	"github.com/rustyeddy/autotrader/risk"
)

func TestReconcileRestoresOrdersAndHoldings(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.outstanding = []broker.OpenOrder{
		{Code: "005930", OrderID: "0001111", Side: broker.Buy},
		{Code: "035720", OrderID: "0002222", Side: broker.Sell}, // untracked
	}
	gw.holdings = []broker.Holding{
		{Code: "000660", Quantity: 12, AvgPrice: 48_500},
		{Code: "012330", Quantity: 0, AvgPrice: 210_000}, // gone
	}
	gw.prevClose["000660"] = 50_000

	ledger := position.NewLedger()
	r := NewReconciler("8112345611", gw, ledger, risk.DefaultPolicy(), zerolog.Nop())
	require.NoError(t, r.Run(context.Background()))

	rec, ok := ledger.Get("005930")
	require.True(t, ok)
	assert.Equal(t, position.BuyPending, rec.State)
	assert.Equal(t, "0001111", rec.PendingOrderID)
	assert.False(t, ledger.BoughtToday("005930"), "restored orders predate this session")

	_, ok = ledger.Get("035720")
	assert.False(t, ok, "open sells are not tracked")

	rec, ok = ledger.Get("000660")
	require.True(t, ok)
	assert.Equal(t, position.Held, rec.State)
	assert.Equal(t, int64(12), rec.HeldQuantity)
	assert.InDelta(t, 52_500, rec.EntryBasis, 1e-6, "basis synthesized from previous close")

	_, ok = ledger.Get("012330")
	assert.False(t, ok)
}

func TestReconcileHoldingBasisFallsBackToAvgPrice(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.holdings = []broker.Holding{{Code: "000660", Quantity: 5, AvgPrice: 48_500}}

	ledger := position.NewLedger()
	r := NewReconciler("8112345611", gw, ledger, risk.DefaultPolicy(), zerolog.Nop())
	require.NoError(t, r.Run(context.Background()))

	rec, _ := ledger.Get("000660")
	assert.InDelta(t, 48_500, rec.EntryBasis, 1e-6)
}

func TestReconcilePendingBuyWinsOverHolding(t *testing.T) {
	t.Parallel()

	gw := newFakeGateway()
	gw.outstanding = []broker.OpenOrder{{Code: "005930", OrderID: "0001111", Side: broker.Buy}}
	gw.holdings = []broker.Holding{{Code: "005930", Quantity: 3, AvgPrice: 100_000}}

	ledger := position.NewLedger()
	r := NewReconciler("8112345611", gw, ledger, risk.DefaultPolicy(), zerolog.Nop())
	require.NoError(t, r.Run(context.Background()))

	rec, _ := ledger.Get("005930")
	assert.Equal(t, position.BuyPending, rec.State)
}

func TestReconcileFailClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mut  func(*fakeGateway)
		step string
	}{
		{"outstanding_orders", func(g *fakeGateway) { g.outstandingErr = errors.New("tr timeout") }, "outstanding orders"},
		{"holdings", func(g *fakeGateway) { g.holdingsErr = errors.New("tr timeout") }, "holdings"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gw := newFakeGateway()
			tt.mut(gw)
			r := NewReconciler("8112345611", gw, position.NewLedger(), risk.DefaultPolicy(), zerolog.Nop())

			err := r.Run(context.Background())
			var rerr *ReconciliationError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.step, rerr.Step)
		})
	}
}
