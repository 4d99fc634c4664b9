package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/autotrader/broker"
)

func TestSnapshots(t *testing.T) {
	t.Parallel()

	g := New().
		SetInstrument("005930", "Samsung Electronics", 98_760).
		SeedHolding("000660", 12, 48_500).
		SeedOpenOrder("012330", broker.Buy)
	ctx := context.Background()

	require.NoError(t, g.Login(ctx))

	p, err := g.PreviousClose(ctx, "005930")
	require.NoError(t, err)
	assert.Equal(t, int64(98_760), int64(p))
	_, err = g.PreviousClose(ctx, "999999")
	assert.Error(t, err)

	assert.Equal(t, "Samsung Electronics", g.MasterName("005930"))
	assert.Empty(t, g.MasterName("999999"))

	holdings, err := g.Holdings(ctx, "8112345611")
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, int64(12), holdings[0].Quantity)

	orders, err := g.OutstandingOrders(ctx, "8112345611")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, broker.Buy, orders[0].Side)
}

func TestSubmitWithoutAutoFillStaysOpen(t *testing.T) {
	t.Parallel()

	g := New().SetInstrument("005930", "Samsung Electronics", 98_760)
	ctx := context.Background()

	oid, err := g.SubmitOrder(ctx, broker.OrderRequest{Code: "005930", Side: broker.Buy, Quantity: 9, Price: 103_700})
	require.NoError(t, err)
	require.NotEmpty(t, oid)

	orders, _ := g.OutstandingOrders(ctx, "")
	require.Len(t, orders, 1)
	assert.Equal(t, oid, orders[0].OrderID)
	assert.Empty(t, g.events)

	require.NoError(t, g.CancelOrder(ctx, "", "005930", oid))
	orders, _ = g.OutstandingOrders(ctx, "")
	assert.Empty(t, orders)

	err = g.CancelOrder(ctx, "", "005930", oid)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAutoFillBuyThenSell(t *testing.T) {
	t.Parallel()

	g := New().
		SetInstrument("005930", "Samsung Electronics", 98_760).
		SetMark("005930", 106_000).
		AutoFill(100)
	ctx := context.Background()

	oid, err := g.SubmitOrder(ctx, broker.OrderRequest{Code: "005930", Side: broker.Buy, Quantity: 9, Price: 103_700})
	require.NoError(t, err)

	ack := (<-g.Events()).(broker.OrderEvent)
	assert.Equal(t, broker.Accepted, ack.Status)
	assert.Equal(t, oid, ack.OrderID)

	fill := (<-g.Events()).(broker.OrderEvent)
	assert.Equal(t, broker.Filled, fill.Status)
	assert.Equal(t, int64(103_800), int64(fill.FillPrice), "buy fills at limit plus slip")
	assert.Equal(t, int64(9), fill.FillQuantity)

	holdings, _ := g.Holdings(ctx, "")
	require.Len(t, holdings, 1)
	assert.Equal(t, int64(9), holdings[0].Quantity)

	_, err = g.SubmitOrder(ctx, broker.OrderRequest{Code: "005930", Side: broker.Sell, Quantity: 9})
	require.NoError(t, err)
	<-g.Events() // ack
	fill = (<-g.Events()).(broker.OrderEvent)
	assert.Equal(t, int64(106_000), int64(fill.FillPrice), "market sell fills at the mark")

	holdings, _ = g.Holdings(ctx, "")
	assert.Empty(t, holdings)
}

func TestEndSessionClosesFeed(t *testing.T) {
	t.Parallel()

	g := New()
	g.Emit(broker.MessageEvent{Text: "hello"})
	require.NoError(t, g.Close())
	require.NoError(t, g.Close(), "closing twice is safe")

	ev, ok := <-g.Events()
	require.True(t, ok)
	assert.Equal(t, broker.MessageEvent{Text: "hello"}, ev)
	_, ok = <-g.Events()
	assert.False(t, ok)

	_, err := g.SubmitOrder(context.Background(), broker.OrderRequest{Code: "005930", Side: broker.Buy, Quantity: 1})
	assert.ErrorIs(t, err, ErrSessionOver)
}
