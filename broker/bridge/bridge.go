// Package bridge implements broker.Gateway over a websocket connection
// to the trading-terminal bridge process. The bridge speaks one JSON
// protocol on a single socket: request/response frames correlated by
// ID, interleaved with unsolicited event frames (screening signals,
// order acks/fills, balance notices, server messages).
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/internal/id"
	"github.com/rustyeddy/autotrader/market"
)

var (
	ErrClosed  = errors.New("bridge connection closed")
	ErrTimeout = errors.New("bridge request timed out")
)

const (
	dialTimeout    = 10 * time.Second
	requestTimeout = 30 * time.Second
	nameTimeout    = 2 * time.Second
)

// Client is a broker.Gateway backed by the terminal bridge.
type Client struct {
	conn *websocket.Conn
	log  zerolog.Logger

	writeMu sync.Mutex // gorilla allows one concurrent writer

	mu      sync.Mutex
	pending map[string]chan frame
	names   map[market.Code]string
	closed  bool

	events chan broker.Event
	done   chan struct{}
}

// Dial connects to the bridge and starts the read loop. The returned
// client is ready for Login.
func Dial(ctx context.Context, url string, log zerolog.Logger) (*Client, error) {
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial bridge %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		log:     log.With().Str("component", "bridge").Logger(),
		pending: make(map[string]chan frame),
		names:   make(map[market.Code]string),
		events:  make(chan broker.Event, 256),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	c.log.Info().Str("url", url).Msg("connected")
	return c, nil
}

func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		for rid, ch := range c.pending {
			close(ch)
			delete(c.pending, rid)
		}
		c.mu.Unlock()
		close(c.events)
		close(c.done)
	}()

	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Error().Err(err).Msg("read failed, session over")
			}
			return
		}

		switch {
		case f.ID != "":
			c.mu.Lock()
			ch, ok := c.pending[f.ID]
			if ok {
				delete(c.pending, f.ID)
			}
			c.mu.Unlock()
			if ok {
				ch <- f
			} else {
				c.log.Debug().Str("id", f.ID).Msg("reply for unknown request")
			}
		case f.Event != "":
			if ev, ok := f.toEvent(); ok {
				c.events <- ev
			} else {
				c.log.Debug().Str("event", f.Event).Msg("unknown event frame")
			}
		default:
			c.log.Debug().Msg("frame without id or event")
		}
	}
}

// request sends one frame and waits for the correlated reply.
func (c *Client) request(ctx context.Context, f frame) (frame, error) {
	f.ID = id.New()
	ch := make(chan frame, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return frame{}, ErrClosed
	}
	c.pending[f.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(f)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, f.ID)
		c.mu.Unlock()
		return frame{}, fmt.Errorf("%s: write: %w", f.Op, err)
	}

	timer := time.NewTimer(requestTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, f.ID)
		c.mu.Unlock()
		return frame{}, ctx.Err()
	case <-timer.C:
		c.mu.Lock()
		delete(c.pending, f.ID)
		c.mu.Unlock()
		return frame{}, fmt.Errorf("%s: %w", f.Op, ErrTimeout)
	case reply, ok := <-ch:
		if !ok {
			return frame{}, ErrClosed
		}
		if !reply.OK {
			return frame{}, fmt.Errorf("%s: bridge: %s", f.Op, reply.Error)
		}
		return reply, nil
	}
}

func (c *Client) Login(ctx context.Context) error {
	_, err := c.request(ctx, frame{Op: opLogin})
	return err
}

func (c *Client) OutstandingOrders(ctx context.Context, account string) ([]broker.OpenOrder, error) {
	reply, err := c.request(ctx, frame{Op: opOpenOrders, Account: account})
	if err != nil {
		return nil, err
	}
	out := make([]broker.OpenOrder, 0, len(reply.Orders))
	for _, o := range reply.Orders {
		out = append(out, broker.OpenOrder{Code: market.Code(o.Code), OrderID: o.OrderID, Side: broker.Side(o.Side)})
	}
	return out, nil
}

func (c *Client) Holdings(ctx context.Context, account string) ([]broker.Holding, error) {
	reply, err := c.request(ctx, frame{Op: opHoldings, Account: account})
	if err != nil {
		return nil, err
	}
	out := make([]broker.Holding, 0, len(reply.Holdings))
	for _, h := range reply.Holdings {
		out = append(out, broker.Holding{Code: market.Code(h.Code), Quantity: h.Quantity, AvgPrice: market.Price(h.AvgPrice)})
	}
	return out, nil
}

func (c *Client) PreviousClose(ctx context.Context, code market.Code) (market.Price, error) {
	reply, err := c.request(ctx, frame{Op: opPrevClose, Code: string(code)})
	if err != nil {
		return 0, err
	}
	return market.Price(reply.Price), nil
}

// MasterName resolves the instrument's display name through the bridge
// and caches it. Log-line decoration only, so failures degrade to "".
func (c *Client) MasterName(code market.Code) string {
	c.mu.Lock()
	name, ok := c.names[code]
	c.mu.Unlock()
	if ok {
		return name
	}

	ctx, cancel := context.WithTimeout(context.Background(), nameTimeout)
	defer cancel()
	reply, err := c.request(ctx, frame{Op: opMasterName, Code: string(code)})
	if err != nil {
		return ""
	}

	c.mu.Lock()
	c.names[code] = reply.Name
	c.mu.Unlock()
	return reply.Name
}

func (c *Client) SubmitOrder(ctx context.Context, req broker.OrderRequest) (string, error) {
	reply, err := c.request(ctx, frame{
		Op:       opSubmit,
		Account:  req.Account,
		Code:     string(req.Code),
		Side:     string(req.Side),
		Quantity: req.Quantity,
		Price:    int64(req.Price),
	})
	if err != nil {
		return "", err
	}
	return reply.OrderID, nil
}

func (c *Client) CancelOrder(ctx context.Context, account string, code market.Code, orderID string) error {
	_, err := c.request(ctx, frame{Op: opCancel, Account: account, Code: string(code), OrderID: orderID})
	return err
}

func (c *Client) Events() <-chan broker.Event { return c.events }

// Close sends a close frame and tears down the connection. The event
// channel closes once the read loop exits.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := c.conn.Close()
	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	return err
}
